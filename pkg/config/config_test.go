package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(path, []byte(`
listen_addr: ":9090"
secret_key: from-file
authorized_emails: "alice@org, bob@org"
approval_base_url: https://sign.example.org/approve
quickbooks:
  company_id: "12345"
`), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv("SECRET_KEY", "from-env")
	t.Setenv("AUTHORIZED_EMAILS", "")
	t.Setenv("DATABASE_URL", "")

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.SecretKey != "from-env" {
		t.Fatalf("expected env to override secret, got %q", c.SecretKey)
	}
	if c.ListenAddr != ":9090" {
		t.Fatalf("expected listen addr from file, got %q", c.ListenAddr)
	}
	if c.QuickBooks.CompanyID != "12345" {
		t.Fatalf("expected company id from file, got %q", c.QuickBooks.CompanyID)
	}
	if c.QuickBooks.Currency != "CAD" {
		t.Fatalf("expected currency default, got %q", c.QuickBooks.Currency)
	}
	want := []string{"alice@org", "bob@org"}
	if got := c.AllowedSigners(); !reflect.DeepEqual(got, want) {
		t.Fatalf("allow list: got %v want %v", got, want)
	}
}

func TestLoadMissingFileIsEnvOnly(t *testing.T) {
	t.Setenv("SECRET_KEY", "env-secret")
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if c.SecretKey != "env-secret" {
		t.Fatalf("expected env secret, got %q", c.SecretKey)
	}
	if c.ListenAddr != ":8080" {
		t.Fatalf("expected default listen addr, got %q", c.ListenAddr)
	}
}

func TestAllowedSignersEmpty(t *testing.T) {
	c := &Config{AuthorizedEmails: " , "}
	if got := c.AllowedSigners(); len(got) != 0 {
		t.Fatalf("expected empty allow list, got %v", got)
	}
}
