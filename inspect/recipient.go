package inspect

import (
	"context"
	"regexp"
	"strings"

	"github.com/goliatone/go-responder/core"
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// resolveRecipientEmail finds the address a reply should target, trying in
// order: structured sender delivery identifiers, well-known nested payload
// fields, a pattern scan of the raw payload, and finally an actor lookup.
func (i *Inspector) resolveRecipientEmail(ctx context.Context, candidate core.ThreadMessage) string {
	for _, sender := range candidate.Senders {
		if sender.DeliveryIdentifier.IsEmail() {
			if email := strings.TrimSpace(sender.DeliveryIdentifier.Value); email != "" {
				return email
			}
		}
	}

	if email := nestedString(candidate.Raw, "from", "email"); email != "" {
		return email
	}
	if email := nestedString(candidate.Raw, "origin", "from", "email"); email != "" {
		return email
	}

	if email := scanForEmail(candidate.Raw); email != "" {
		return email
	}

	return i.lookupSenderEmail(ctx, candidate)
}

// lookupSenderEmail resolves sender actors through the API and uses the
// first address found, scanning the actor's raw payload as a last resort.
func (i *Inspector) lookupSenderEmail(ctx context.Context, candidate core.ThreadMessage) string {
	if i == nil || i.Client == nil {
		return ""
	}
	for _, sender := range candidate.Senders {
		actorID := strings.TrimSpace(sender.ActorID)
		if actorID == "" {
			continue
		}
		actor, found, err := i.Client.GetActor(ctx, actorID)
		if err != nil || !found {
			continue
		}
		if email := strings.TrimSpace(actor.Email); email != "" {
			return email
		}
		if email := scanForEmail(actor.Raw); email != "" {
			return email
		}
	}
	return ""
}

// deriveSendContext assembles the addressing a reply needs. The candidate's
// own channel wins; gaps fall back to any other message on the thread. The
// sender actor comes from configuration when set, otherwise from the most
// recent outgoing message.
func (i *Inspector) deriveSendContext(candidate core.ThreadMessage, messages []core.ThreadMessage) core.SendContext {
	sendCtx := core.SendContext{
		ChannelID:        strings.TrimSpace(candidate.ChannelID),
		ChannelAccountID: strings.TrimSpace(candidate.ChannelAccountID),
	}
	for _, msg := range messages {
		if sendCtx.ChannelID != "" && sendCtx.ChannelAccountID != "" {
			break
		}
		if sendCtx.ChannelID == "" {
			sendCtx.ChannelID = strings.TrimSpace(msg.ChannelID)
		}
		if sendCtx.ChannelAccountID == "" {
			sendCtx.ChannelAccountID = strings.TrimSpace(msg.ChannelAccountID)
		}
	}

	if i != nil && i.SenderActorID != "" {
		sendCtx.SenderActorID = i.SenderActorID
		return sendCtx
	}
	for _, msg := range messages {
		if !msg.IsOutgoing() {
			continue
		}
		for _, sender := range msg.Senders {
			if actorID := strings.TrimSpace(sender.ActorID); actorID != "" {
				sendCtx.SenderActorID = actorID
				return sendCtx
			}
		}
	}
	return sendCtx
}

func nestedString(raw map[string]any, path ...string) string {
	current := any(raw)
	for _, key := range path {
		object, ok := current.(map[string]any)
		if !ok {
			return ""
		}
		current = object[key]
	}
	value, ok := current.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

// scanForEmail walks the raw payload depth-first and returns the first
// value that looks like an address.
func scanForEmail(value any) string {
	switch typed := value.(type) {
	case string:
		return emailPattern.FindString(typed)
	case map[string]any:
		for _, nested := range typed {
			if email := scanForEmail(nested); email != "" {
				return email
			}
		}
	case []any:
		for _, nested := range typed {
			if email := scanForEmail(nested); email != "" {
				return email
			}
		}
	}
	return ""
}
