package policy

import (
	"context"
	"strings"

	"github.com/goliatone/go-responder/core"
)

// Templates renders outbound copy. CTAURL, when set, is appended to the
// replies that invite a next step.
type Templates struct {
	CTAURL string
}

// Welcome is the internal note left on newly created threads. ok is false
// when rendering is disabled; the current copy is always available.
func (t Templates) Welcome() (string, bool) {
	text := "Thanks for reaching out! A teammate will follow up shortly." +
		" In the meantime this thread is being watched by our auto-responder."
	return text, true
}

// UnsubscribeAck is the internal note recording an honored opt-out.
func (t Templates) UnsubscribeAck() string {
	return "Contact asked to unsubscribe. No automated reply was sent; please remove them from outreach lists."
}

// Render selects the reply template for an intent.
func (t Templates) Render(intent string) (subject string, text string) {
	switch intent {
	case core.IntentPricing:
		return "Pricing details",
			t.withCTA("Thanks for asking about pricing! Our plans scale with usage and team size.")
	case core.IntentDemo:
		return "Let's set up a demo",
			t.withCTA("Happy to show you around! Pick a slot that works for you.")
	case core.IntentSupport:
		return "We're on it",
			"Sorry you're running into trouble. A support engineer will pick this up shortly; any error output you can share speeds things up."
	default:
		return "Thanks for your message",
			t.withCTA("Thanks for getting in touch! We'll get back to you shortly.")
	}
}

func (t Templates) withCTA(text string) string {
	cta := strings.TrimSpace(t.CTAURL)
	if cta == "" {
		return text
	}
	return text + " " + cta
}

// KeywordPolicy implements core.ReplyPolicy: bounce filter first, then
// keyword classification, then template rendering.
type KeywordPolicy struct {
	Templates Templates
}

func NewKeywordPolicy(ctaURL string) *KeywordPolicy {
	return &KeywordPolicy{Templates: Templates{CTAURL: strings.TrimSpace(ctaURL)}}
}

var _ core.ReplyPolicy = (*KeywordPolicy)(nil)

func (p *KeywordPolicy) WelcomeComment(context.Context) (string, bool) {
	if p == nil {
		return "", false
	}
	return p.Templates.Welcome()
}

// Decide suppresses bounces before classification runs, then renders the
// reply for the classified intent. Empty content is not answerable.
func (p *KeywordPolicy) Decide(_ context.Context, msg core.ThreadMessage) (core.ReplyDecision, bool, error) {
	if p == nil {
		return core.ReplyDecision{}, false, nil
	}
	if IsBounce(msg) {
		return core.ReplyDecision{}, false, nil
	}

	content := strings.TrimSpace(msg.Text)
	if content == "" {
		content = strings.TrimSpace(msg.Subject)
	}
	if content == "" {
		return core.ReplyDecision{}, false, nil
	}

	intent := ClassifyIntent(content)
	subject, text := p.Templates.Render(intent)
	if intent == core.IntentUnsubscribe {
		// The dispatcher turns this into an internal acknowledgment; the
		// ack text rides along so no send content exists for opt-outs.
		return core.ReplyDecision{Intent: intent, Text: p.Templates.UnsubscribeAck()}, true, nil
	}
	return core.ReplyDecision{Intent: intent, Subject: subject, Text: text}, true, nil
}
