package forms

import (
	"strings"
	"testing"
)

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"event_id":"evt_1"}`)
	sig := SignBody("secret", body)

	if !VerifySignature("secret", body, sig) {
		t.Fatal("expected signature to verify")
	}
	if !VerifySignature("secret", body, strings.TrimPrefix(sig, "sha256=")) {
		t.Fatal("expected bare hex signature to verify")
	}
	if VerifySignature("secret", []byte(`{"event_id":"evt_2"}`), sig) {
		t.Fatal("expected mismatch on different body")
	}
	if VerifySignature("other", body, sig) {
		t.Fatal("expected mismatch on different secret")
	}
	if VerifySignature("secret", body, "") || VerifySignature("", body, sig) {
		t.Fatal("empty signature or secret must fail")
	}
	if VerifySignature("secret", body, "sha256=zzzz") {
		t.Fatal("non-hex signature must fail")
	}
}
