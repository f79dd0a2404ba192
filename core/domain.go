package core

import (
	"strings"
	"time"
)

const (
	SubscriptionConversationCreation   = "conversation.creation"
	SubscriptionConversationNewMessage = "conversation.newmessage"
)

// Event is one normalized notification unit. Constructed per webhook
// notification, never persisted, discarded after handling.
type Event struct {
	SubscriptionType string
	ObjectID         string
	EventID          string
	// OccurredAt is opaque; it participates only in event ID synthesis.
	OccurredAt string
}

// Actionable reports whether the event's subscription type is one the
// responder reacts to. Every other type is accepted and ignored.
func (e Event) Actionable() bool {
	switch strings.ToLower(strings.TrimSpace(e.SubscriptionType)) {
	case SubscriptionConversationCreation, SubscriptionConversationNewMessage:
		return true
	default:
		return false
	}
}

// SynthesizeEventID builds the fallback identifier used when the source
// omits an event ID. Two same-typed events for the same thread in the same
// instant collide; that approximation is accepted.
func SynthesizeEventID(subscriptionType string, objectID string, occurredAt string) string {
	return strings.ToLower(strings.TrimSpace(subscriptionType)) +
		":" + strings.TrimSpace(objectID) +
		":" + strings.TrimSpace(occurredAt)
}

const (
	EntryTypeMessage = "MESSAGE"
	EntryTypeComment = "COMMENT"

	DirectionIncoming = "INCOMING"
	DirectionOutgoing = "OUTGOING"
)

// DeliveryIdentifier is a structured address attached to a message sender,
// e.g. {Type: "HS_EMAIL_ADDRESS", Value: "ada@example.com"}.
type DeliveryIdentifier struct {
	Type  string
	Value string
}

func (d DeliveryIdentifier) IsEmail() bool {
	t := strings.ToUpper(strings.TrimSpace(d.Type))
	return t == "HS_EMAIL_ADDRESS" || t == "EMAIL"
}

type MessageSender struct {
	ActorID            string
	Name               string
	DeliveryIdentifier DeliveryIdentifier
}

// ThreadMessage is the normalized read-only view of one entry on a
// conversation thread. Raw keeps the decoded source payload for the
// recipient-resolution fallback scan; it is never mutated locally.
type ThreadMessage struct {
	ID               string
	Type             string
	Direction        string
	SenderAppID      string
	Senders          []MessageSender
	ChannelID        string
	ChannelAccountID string
	Subject          string
	Text             string
	CreatedAt        time.Time
	Raw              map[string]any
}

func (m ThreadMessage) IsMessage() bool {
	return strings.EqualFold(strings.TrimSpace(m.Type), EntryTypeMessage)
}

func (m ThreadMessage) IsComment() bool {
	return strings.EqualFold(strings.TrimSpace(m.Type), EntryTypeComment)
}

func (m ThreadMessage) IsOutgoing() bool {
	return strings.EqualFold(strings.TrimSpace(m.Direction), DirectionOutgoing)
}

// Actor is a conversations API participant resolved by ID.
type Actor struct {
	ID    string
	Type  string
	Name  string
	Email string
	Raw   map[string]any
}

const (
	ClassificationNone           = "none"
	ClassificationSelfAuthored   = "self_authored"
	ClassificationOutgoing       = "outgoing"
	ClassificationGenuineInbound = "genuine_inbound"
)

// SendContext carries the addressing the send API requires beyond the
// recipient: all three must be resolved or the send is declined.
type SendContext struct {
	SenderActorID    string
	ChannelID        string
	ChannelAccountID string
}

// Missing lists the unresolved send preconditions by name.
func (c SendContext) Missing() []string {
	missing := []string{}
	if strings.TrimSpace(c.SenderActorID) == "" {
		missing = append(missing, "sender_actor_id")
	}
	if strings.TrimSpace(c.ChannelID) == "" {
		missing = append(missing, "channel_id")
	}
	if strings.TrimSpace(c.ChannelAccountID) == "" {
		missing = append(missing, "channel_account_id")
	}
	return missing
}

// ThreadInspection is the outcome of reading a thread's recent messages:
// how the latest relevant entry classifies, and, for a genuine inbound
// candidate, everything a reply would need.
type ThreadInspection struct {
	Classification string
	Candidate      ThreadMessage
	RecipientEmail string
	SendContext    SendContext
}

// ReplyDecision is produced fresh per inbound message and never persisted.
type ReplyDecision struct {
	Intent  string
	Subject string
	Text    string
}

// OutboundMessage is the payload handed to the send API.
type OutboundMessage struct {
	Text             string
	Subject          string
	RecipientEmail   string
	SenderActorID    string
	ChannelID        string
	ChannelAccountID string
}

// SendReceipt reports the source platform's (possibly asynchronous)
// delivery status for an accepted send.
type SendReceipt struct {
	MessageID string
	Status    string
}

const (
	ActionKindComment    = "comment"
	ActionKindMessage    = "message"
	ActionKindContactTag = "contact_tag"
)

const (
	ActionStatusSent     = "sent"
	ActionStatusDraft    = "draft"
	ActionStatusDeclined = "declined"
	ActionStatusFailed   = "failed"
)

// ActionEntry is one dispatched (or declined) write-back, recorded for
// operators through an ActionRecorder.
type ActionEntry struct {
	ThreadID   string
	Kind       string
	Intent     string
	Status     string
	Detail     string
	OccurredAt time.Time
}
