package policy

import (
	"strings"

	"github.com/goliatone/go-responder/core"
)

// Automated delivery-failure traffic must never be answered; replying to a
// mailer daemon opens a feedback loop between two automata.
var bounceSubjectMarkers = []string{
	"mail delivery failed",
	"delivery status notification",
	"undeliverable",
	"undelivered mail",
	"returned mail",
	"failure notice",
	"delivery failure",
	"auto-reply",
	"automatic reply",
	"out of office",
}

var bounceSenderMarkers = []string{
	"mailer-daemon",
	"postmaster",
	"mail delivery subsystem",
	"no-reply",
	"noreply",
	"do-not-reply",
}

// IsBounce reports whether a message looks like a bounce, NDR, or
// auto-responder rather than a genuine customer reply.
func IsBounce(msg core.ThreadMessage) bool {
	subject := strings.ToLower(msg.Subject)
	for _, marker := range bounceSubjectMarkers {
		if strings.Contains(subject, marker) {
			return true
		}
	}
	for _, sender := range msg.Senders {
		name := strings.ToLower(sender.Name)
		address := strings.ToLower(sender.DeliveryIdentifier.Value)
		for _, marker := range bounceSenderMarkers {
			if strings.Contains(name, marker) || strings.Contains(address, marker) {
				return true
			}
		}
	}
	return false
}
