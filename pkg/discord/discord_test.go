package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPostSendsContent(t *testing.T) {
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(204)
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.Post(context.Background(), Message{
		Content: "Reimbursement request #000123 has been signed by alice@org.",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.Content == "" || got.Content != "Reimbursement request #000123 has been signed by alice@org." {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestPostErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer srv.Close()

	if err := New(srv.URL).Post(context.Background(), Message{Content: "x"}); err == nil {
		t.Fatal("expected error on 500")
	}
}
