package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-responder/core"
)

// Dispatcher implements core.ActionDispatcher. In review mode outbound
// sends are drafted as internal comments instead of delivered; comments
// themselves are internal-only and always allowed.
type Dispatcher struct {
	Conversations core.ConversationClient
	Contacts      core.ContactClient
	ReviewMode    bool
}

func NewDispatcher(conversations core.ConversationClient, contacts core.ContactClient, reviewMode bool) *Dispatcher {
	return &Dispatcher{
		Conversations: conversations,
		Contacts:      contacts,
		ReviewMode:    reviewMode,
	}
}

var _ core.ActionDispatcher = (*Dispatcher)(nil)

func (d *Dispatcher) PostComment(ctx context.Context, threadID string, text string) core.ActionOutcome {
	outcome := core.ActionOutcome{Kind: core.ActionKindComment}
	if d == nil || d.Conversations == nil {
		outcome.Status = core.ActionStatusFailed
		outcome.Err = fmt.Errorf("dispatch: conversation client is required")
		return outcome
	}
	if strings.TrimSpace(text) == "" {
		outcome.Status = core.ActionStatusDeclined
		outcome.Detail = "empty comment text"
		return outcome
	}
	if err := d.Conversations.PostComment(ctx, threadID, text); err != nil {
		outcome.Status = core.ActionStatusFailed
		outcome.Err = err
		return outcome
	}
	outcome.Status = core.ActionStatusSent
	return outcome
}

// SendReply delivers a decided reply. Unsubscribe intents never send; they
// leave an internal acknowledgment instead. Missing send preconditions
// decline the send and surface what is missing as an internal comment so a
// human can fix the configuration.
func (d *Dispatcher) SendReply(ctx context.Context, threadID string, decision core.ReplyDecision, inspection core.ThreadInspection) core.ActionOutcome {
	outcome := core.ActionOutcome{Kind: core.ActionKindMessage}
	if d == nil || d.Conversations == nil {
		outcome.Status = core.ActionStatusFailed
		outcome.Err = fmt.Errorf("dispatch: conversation client is required")
		return outcome
	}

	if decision.Intent == core.IntentUnsubscribe {
		ack := d.PostComment(ctx, threadID, decision.Text)
		ack.Detail = "unsubscribe acknowledged without send"
		return ack
	}

	recipient := strings.TrimSpace(inspection.RecipientEmail)
	missing := inspection.SendContext.Missing()
	if recipient == "" {
		missing = append([]string{"recipient_email"}, missing...)
	}
	if len(missing) > 0 {
		note := "Auto-reply declined; missing send preconditions: " + strings.Join(missing, ", ")
		_ = d.Conversations.PostComment(ctx, threadID, note)
		outcome.Status = core.ActionStatusDeclined
		outcome.Detail = "missing " + strings.Join(missing, ", ")
		return outcome
	}

	if d.ReviewMode {
		draft := "Draft reply (review mode, not sent)"
		if subject := strings.TrimSpace(decision.Subject); subject != "" {
			draft += "\nSubject: " + subject
		}
		draft += "\n\n" + decision.Text
		if err := d.Conversations.PostComment(ctx, threadID, draft); err != nil {
			outcome.Status = core.ActionStatusFailed
			outcome.Err = err
			return outcome
		}
		outcome.Status = core.ActionStatusDraft
		outcome.Detail = "drafted for review"
		return outcome
	}

	receipt, err := d.Conversations.SendMessage(ctx, threadID, core.OutboundMessage{
		Text:             decision.Text,
		Subject:          decision.Subject,
		RecipientEmail:   recipient,
		SenderActorID:    inspection.SendContext.SenderActorID,
		ChannelID:        inspection.SendContext.ChannelID,
		ChannelAccountID: inspection.SendContext.ChannelAccountID,
	})
	if err != nil {
		outcome.Status = core.ActionStatusFailed
		outcome.Err = err
		return outcome
	}
	outcome.Status = core.ActionStatusSent
	if receipt.Status != "" {
		outcome.Detail = "delivery status " + receipt.Status
	}
	return outcome
}

func (d *Dispatcher) TagContact(ctx context.Context, email string, intent string) core.ActionOutcome {
	outcome := core.ActionOutcome{Kind: core.ActionKindContactTag}
	if d == nil || d.Contacts == nil {
		outcome.Status = core.ActionStatusDeclined
		outcome.Detail = "contact client not configured"
		return outcome
	}
	email = strings.TrimSpace(email)
	if email == "" {
		outcome.Status = core.ActionStatusDeclined
		outcome.Detail = "no contact email"
		return outcome
	}
	contactID, err := d.Contacts.UpsertContactByEmail(ctx, email, map[string]string{
		"auto_responder_intent": strings.TrimSpace(intent),
	})
	if err != nil {
		outcome.Status = core.ActionStatusFailed
		outcome.Err = err
		return outcome
	}
	outcome.Status = core.ActionStatusSent
	outcome.Detail = "contact " + contactID
	return outcome
}
