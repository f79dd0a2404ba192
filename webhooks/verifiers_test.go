package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestHeaderTokenVerifier(t *testing.T) {
	verifier := HeaderTokenVerifier{Header: "X-Webhook-Token", Token: "nacho"}

	delivery := Delivery{Headers: map[string]string{"x-webhook-token": " nacho "}}
	if err := verifier.Verify(context.Background(), delivery); err != nil {
		t.Fatalf("expected case-insensitive header match: %v", err)
	}

	bad := Delivery{Headers: map[string]string{"X-Webhook-Token": "other"}}
	if err := verifier.Verify(context.Background(), bad); err == nil {
		t.Fatalf("expected token mismatch")
	}

	missing := Delivery{}
	if err := verifier.Verify(context.Background(), missing); err == nil {
		t.Fatalf("expected missing header rejection")
	}
}

func TestHeaderHMACVerifier_HexSignature(t *testing.T) {
	body := []byte(`[{"objectId": "T1"}]`)
	mac := hmac.New(sha256.New, []byte("shhh"))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	verifier := HeaderHMACVerifier{Header: "X-Signature", Prefix: "sha256=", Secret: "shhh"}
	delivery := Delivery{
		Headers: map[string]string{"X-Signature": "sha256=" + signature},
		Body:    body,
	}
	if err := verifier.Verify(context.Background(), delivery); err != nil {
		t.Fatalf("expected valid signature: %v", err)
	}

	tampered := Delivery{
		Headers: delivery.Headers,
		Body:    []byte(`[{"objectId": "T2"}]`),
	}
	if err := verifier.Verify(context.Background(), tampered); err == nil {
		t.Fatalf("expected tampered body rejection")
	}
}
