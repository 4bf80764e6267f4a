// Package config loads the process-wide configuration shared by both
// services: a YAML file for the stable settings, with environment variables
// overriding the sensitive ones so secrets stay out of the file.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr string `yaml:"listen_addr"`

	// DatabaseURL is the signature-ledger DSN. Empty selects the in-memory
	// store, which only makes sense for local development.
	DatabaseURL string `yaml:"database_url"`

	// SecretKey signs approval links. Rotating it invalidates every link
	// issued before the rotation.
	SecretKey string `yaml:"secret_key"`

	// AuthorizedEmails is the comma-separated allow-list of signer
	// identities.
	AuthorizedEmails string `yaml:"authorized_emails"`

	DiscordWebhookURL string `yaml:"discord_webhook_url"`

	// ApprovalBaseURL is the public URL of the approval endpoint, used when
	// building links for notifications.
	ApprovalBaseURL string `yaml:"approval_base_url"`

	// FormWebhookSecret authenticates form-submission events delivered to
	// the submission service.
	FormWebhookSecret string `yaml:"form_webhook_secret"`

	QuickBooks QuickBooksConfig `yaml:"quickbooks"`
}

type QuickBooksConfig struct {
	BaseURL     string `yaml:"base_url"`
	CompanyID   string `yaml:"company_id"`
	AccessToken string `yaml:"access_token"`
	Currency    string `yaml:"currency"`
}

// Load reads the YAML file at path and applies environment overrides. A
// missing file is not an error when every required value arrives via the
// environment.
func Load(path string) (*Config, error) {
	var c Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("config unmarshal: %w", err)
		}
	case os.IsNotExist(err):
		// env-only deployment
	default:
		return nil, fmt.Errorf("config load: %w", err)
	}
	applyEnvOverrides(&c)
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.QuickBooks.BaseURL == "" {
		c.QuickBooks.BaseURL = "https://quickbooks.api.intuit.com/v3/company"
	}
	if c.QuickBooks.Currency == "" {
		c.QuickBooks.Currency = "CAD"
	}
	return &c, nil
}

func applyEnvOverrides(c *Config) {
	if v := os.Getenv("SECRET_KEY"); v != "" {
		c.SecretKey = v
	}
	if v := os.Getenv("AUTHORIZED_EMAILS"); v != "" {
		c.AuthorizedEmails = v
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		c.DiscordWebhookURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("FORM_WEBHOOK_SECRET"); v != "" {
		c.FormWebhookSecret = v
	}
	if v := os.Getenv("APPROVAL_BASE_URL"); v != "" {
		c.ApprovalBaseURL = v
	}
	if v := os.Getenv("QUICKBOOKS_ACCESS_TOKEN"); v != "" {
		c.QuickBooks.AccessToken = v
	}
	if v := os.Getenv("QUICKBOOKS_COMPANY_ID"); v != "" {
		c.QuickBooks.CompanyID = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
}

// AllowedSigners parses the comma-separated allow-list into its identities,
// dropping surrounding whitespace and empty entries.
func (c *Config) AllowedSigners() []string {
	var out []string
	for _, e := range strings.Split(c.AuthorizedEmails, ",") {
		e = strings.TrimSpace(e)
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}
