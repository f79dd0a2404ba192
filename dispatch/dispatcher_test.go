package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-responder/core"
)

type stubConversationClient struct {
	comments   []string
	sent       []core.OutboundMessage
	commentErr error
	sendErr    error
}

func (c *stubConversationClient) ListThreadMessages(context.Context, string, int) ([]core.ThreadMessage, error) {
	return nil, nil
}

func (c *stubConversationClient) PostComment(_ context.Context, _ string, text string) error {
	if c.commentErr != nil {
		return c.commentErr
	}
	c.comments = append(c.comments, text)
	return nil
}

func (c *stubConversationClient) SendMessage(_ context.Context, _ string, msg core.OutboundMessage) (core.SendReceipt, error) {
	if c.sendErr != nil {
		return core.SendReceipt{}, c.sendErr
	}
	c.sent = append(c.sent, msg)
	return core.SendReceipt{MessageID: "M-1", Status: "SENT"}, nil
}

func (c *stubConversationClient) GetActor(context.Context, string) (core.Actor, bool, error) {
	return core.Actor{}, false, nil
}

type stubContactClient struct {
	calls map[string]map[string]string
	err   error
}

func (c *stubContactClient) UpsertContactByEmail(_ context.Context, email string, properties map[string]string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	if c.calls == nil {
		c.calls = map[string]map[string]string{}
	}
	c.calls[email] = properties
	return "C-1", nil
}

func completeInspection() core.ThreadInspection {
	return core.ThreadInspection{
		Classification: core.ClassificationGenuineInbound,
		RecipientEmail: "ada@example.com",
		SendContext: core.SendContext{
			SenderActorID:    "A-1",
			ChannelID:        "1000",
			ChannelAccountID: "2000",
		},
	}
}

func TestDispatcher_SendReplyDeliversWhenComplete(t *testing.T) {
	client := &stubConversationClient{}
	dispatcher := NewDispatcher(client, nil, false)

	outcome := dispatcher.SendReply(context.Background(), "T1",
		core.ReplyDecision{Intent: core.IntentPricing, Subject: "Pricing", Text: "details"},
		completeInspection(),
	)
	if outcome.Status != core.ActionStatusSent {
		t.Fatalf("expected sent, got %s (%v)", outcome.Status, outcome.Err)
	}
	if len(client.sent) != 1 {
		t.Fatalf("expected one send, got %d", len(client.sent))
	}
	sent := client.sent[0]
	if sent.RecipientEmail != "ada@example.com" || sent.ChannelID != "1000" || sent.ChannelAccountID != "2000" || sent.SenderActorID != "A-1" {
		t.Fatalf("send carried incomplete addressing: %+v", sent)
	}
}

func TestDispatcher_UnsubscribeAcksWithoutSending(t *testing.T) {
	client := &stubConversationClient{}
	dispatcher := NewDispatcher(client, nil, false)

	outcome := dispatcher.SendReply(context.Background(), "T1",
		core.ReplyDecision{Intent: core.IntentUnsubscribe, Text: "Contact asked to unsubscribe."},
		completeInspection(),
	)
	if outcome.Kind != core.ActionKindComment {
		t.Fatalf("expected internal comment outcome, got %s", outcome.Kind)
	}
	if len(client.sent) != 0 {
		t.Fatalf("unsubscribe must never send, got %d sends", len(client.sent))
	}
	if len(client.comments) != 1 {
		t.Fatalf("expected acknowledgment comment, got %d", len(client.comments))
	}
}

func TestDispatcher_DeclinesWithoutRecipient(t *testing.T) {
	client := &stubConversationClient{}
	dispatcher := NewDispatcher(client, nil, false)

	inspection := completeInspection()
	inspection.RecipientEmail = ""

	outcome := dispatcher.SendReply(context.Background(), "T1",
		core.ReplyDecision{Intent: core.IntentGeneral, Text: "hi"},
		inspection,
	)
	if outcome.Status != core.ActionStatusDeclined {
		t.Fatalf("expected declined, got %s", outcome.Status)
	}
	if len(client.sent) != 0 {
		t.Fatalf("declined send must not call the send API")
	}
	if len(client.comments) != 1 || !strings.Contains(client.comments[0], "recipient_email") {
		t.Fatalf("expected internal comment naming the missing precondition, got %v", client.comments)
	}
}

func TestDispatcher_DeclinesWithPartialSendContext(t *testing.T) {
	client := &stubConversationClient{}
	dispatcher := NewDispatcher(client, nil, false)

	inspection := completeInspection()
	inspection.SendContext.ChannelAccountID = ""

	outcome := dispatcher.SendReply(context.Background(), "T1",
		core.ReplyDecision{Intent: core.IntentGeneral, Text: "hi"},
		inspection,
	)
	if outcome.Status != core.ActionStatusDeclined {
		t.Fatalf("expected declined, got %s", outcome.Status)
	}
	if !strings.Contains(outcome.Detail, "channel_account_id") {
		t.Fatalf("expected missing field named in detail, got %q", outcome.Detail)
	}
}

func TestDispatcher_ReviewModeDraftsInsteadOfSending(t *testing.T) {
	client := &stubConversationClient{}
	dispatcher := NewDispatcher(client, nil, true)

	outcome := dispatcher.SendReply(context.Background(), "T1",
		core.ReplyDecision{Intent: core.IntentDemo, Subject: "Demo", Text: "pick a slot"},
		completeInspection(),
	)
	if outcome.Status != core.ActionStatusDraft {
		t.Fatalf("expected draft, got %s", outcome.Status)
	}
	if len(client.sent) != 0 {
		t.Fatalf("review mode must not send")
	}
	if len(client.comments) != 1 || !strings.Contains(client.comments[0], "Draft reply") {
		t.Fatalf("expected draft comment, got %v", client.comments)
	}
}

func TestDispatcher_SendFailureIsExplicit(t *testing.T) {
	client := &stubConversationClient{sendErr: errors.New("upstream status 500")}
	dispatcher := NewDispatcher(client, nil, false)

	outcome := dispatcher.SendReply(context.Background(), "T1",
		core.ReplyDecision{Intent: core.IntentGeneral, Text: "hi"},
		completeInspection(),
	)
	if outcome.Status != core.ActionStatusFailed || outcome.Err == nil {
		t.Fatalf("expected explicit failure outcome, got %+v", outcome)
	}
}

func TestDispatcher_TagContact(t *testing.T) {
	contacts := &stubContactClient{}
	dispatcher := NewDispatcher(&stubConversationClient{}, contacts, false)

	outcome := dispatcher.TagContact(context.Background(), "ada@example.com", core.IntentPricing)
	if outcome.Status != core.ActionStatusSent {
		t.Fatalf("expected sent, got %s", outcome.Status)
	}
	if contacts.calls["ada@example.com"]["auto_responder_intent"] != core.IntentPricing {
		t.Fatalf("expected intent property recorded, got %v", contacts.calls)
	}

	// Without a contact client tagging is declined, never an error.
	bare := NewDispatcher(&stubConversationClient{}, nil, false)
	if outcome := bare.TagContact(context.Background(), "ada@example.com", core.IntentPricing); outcome.Status != core.ActionStatusDeclined {
		t.Fatalf("expected declined without contact client, got %s", outcome.Status)
	}
}

func TestDispatcher_PostCommentDeclinesEmptyText(t *testing.T) {
	dispatcher := NewDispatcher(&stubConversationClient{}, nil, false)
	if outcome := dispatcher.PostComment(context.Background(), "T1", "   "); outcome.Status != core.ActionStatusDeclined {
		t.Fatalf("expected declined for empty text, got %s", outcome.Status)
	}
}
