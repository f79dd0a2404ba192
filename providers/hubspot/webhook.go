package hubspot

import (
	"strings"

	"github.com/goliatone/go-responder/webhooks"
)

// WebhookTemplate bundles the inbound verification setup for this provider.
type WebhookTemplate struct {
	ProviderID string
	Verifier   webhooks.Verifier
}

// NewWebhookTemplate verifies deliveries against a shared token header.
// With no token configured deliveries pass unverified; the loop guard and
// write-inert defaults bound the damage of a forged body.
func NewWebhookTemplate(verifyToken string) WebhookTemplate {
	token := strings.TrimSpace(verifyToken)
	if token == "" {
		return WebhookTemplate{
			ProviderID: ProviderID,
			Verifier:   webhooks.NoopVerifier{},
		}
	}
	return WebhookTemplate{
		ProviderID: ProviderID,
		Verifier: webhooks.HeaderTokenVerifier{
			Header: "X-HubSpot-Verification-Token",
			Token:  token,
		},
	}
}

// NewSignatureWebhookTemplate verifies an HMAC-SHA256 body signature with
// the app secret, for portals configured to sign deliveries.
func NewSignatureWebhookTemplate(appSecret string) WebhookTemplate {
	return WebhookTemplate{
		ProviderID: ProviderID,
		Verifier: webhooks.HeaderHMACVerifier{
			Header:   "X-HubSpot-Signature-V3",
			Secret:   strings.TrimSpace(appSecret),
			Encoding: "base64",
		},
	}
}
