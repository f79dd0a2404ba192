package hubspot

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-responder/core"
	"github.com/goliatone/go-responder/providers/devkit"
	"github.com/goliatone/go-responder/transport"
)

func newScriptedClient(scripts ...devkit.TransportScript) (*Client, *devkit.FakeTransportAdapter) {
	fake := devkit.NewFakeTransportAdapter(transport.KindREST, scripts...)
	client := New(Config{AccessToken: "token-1"}, fake)
	return client, fake
}

func TestClient_ListThreadMessagesNewestFirst(t *testing.T) {
	client, fake := newScriptedClient(devkit.TransportScript{
		Response: core.TransportResponse{
			StatusCode: http.StatusOK,
			Body: []byte(`{"results": [
				{"id": 101, "type": "MESSAGE", "direction": "INCOMING", "text": "older", "createdAt": "2026-03-10T11:00:00Z"},
				{"id": 102, "type": "MESSAGE", "direction": "INCOMING", "text": "newer", "createdAt": "2026-03-10T12:00:00Z",
				 "senders": [{"actorId": "V-1", "deliveryIdentifier": {"type": "HS_EMAIL_ADDRESS", "value": "ada@example.com"}}],
				 "channelId": 1000, "channelAccountId": 2000}
			]}`),
		},
	})

	messages, err := client.ListThreadMessages(context.Background(), "T1", 25)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Text != "newer" {
		t.Fatalf("expected newest first, got %q", messages[0].Text)
	}
	if messages[0].ID != "102" || messages[0].ChannelID != "1000" {
		t.Fatalf("expected numeric fields decoded digit-exact, got %+v", messages[0])
	}
	if messages[0].Senders[0].DeliveryIdentifier.Value != "ada@example.com" {
		t.Fatalf("expected sender identifier decoded, got %+v", messages[0].Senders)
	}

	requests := fake.Requests()
	if len(requests) != 1 {
		t.Fatalf("expected single API call, got %d", len(requests))
	}
	if requests[0].Headers["Authorization"] != "Bearer token-1" {
		t.Fatalf("expected bearer auth, got %q", requests[0].Headers["Authorization"])
	}
	if requests[0].Query["limit"] != "25" {
		t.Fatalf("expected limit query, got %v", requests[0].Query)
	}
}

func TestClient_SendMessagePayload(t *testing.T) {
	client, fake := newScriptedClient(devkit.TransportScript{
		Response: core.TransportResponse{
			StatusCode: http.StatusOK,
			Body:       []byte(`{"id": "M-1", "status": {"statusType": "SENT"}}`),
		},
	})

	receipt, err := client.SendMessage(context.Background(), "T1", core.OutboundMessage{
		Text:             "reply text",
		Subject:          "Re: pricing",
		RecipientEmail:   "ada@example.com",
		SenderActorID:    "A-1",
		ChannelID:        "1000",
		ChannelAccountID: "2000",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if receipt.MessageID != "M-1" || receipt.Status != "SENT" {
		t.Fatalf("unexpected receipt %+v", receipt)
	}

	var payload map[string]any
	if err := json.Unmarshal(fake.Requests()[0].Body, &payload); err != nil {
		t.Fatalf("decode request payload: %v", err)
	}
	if payload["type"] != "MESSAGE" || payload["senderActorId"] != "A-1" {
		t.Fatalf("unexpected payload %v", payload)
	}
	recipients := payload["recipients"].([]any)
	recipient := recipients[0].(map[string]any)
	identifiers := recipient["deliveryIdentifiers"].([]any)
	identifier := identifiers[0].(map[string]any)
	if identifier["value"] != "ada@example.com" {
		t.Fatalf("expected recipient email in payload, got %v", identifier)
	}
}

func TestClient_NonSuccessStatusIsStructuredError(t *testing.T) {
	client, _ := newScriptedClient(devkit.TransportScript{
		Response: core.TransportResponse{
			StatusCode: http.StatusBadGateway,
			Body:       []byte(`{"message": "upstream busted"}`),
		},
	})

	err := client.PostComment(context.Background(), "T1", "note")
	if err == nil {
		t.Fatalf("expected upstream error")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected structured error, got %T", err)
	}
	if richErr.TextCode != core.ResponderErrorUpstreamFailed {
		t.Fatalf("expected upstream text code, got %s", richErr.TextCode)
	}
	if !strings.Contains(richErr.Message, "502") {
		t.Fatalf("expected status in message, got %q", richErr.Message)
	}
}

func TestClient_MissingTokenFailsAtFirstCall(t *testing.T) {
	fake := devkit.NewFakeTransportAdapter(transport.KindREST)
	client := New(Config{}, fake)

	_, err := client.ListThreadMessages(context.Background(), "T1", 5)
	if err == nil {
		t.Fatalf("expected configuration error")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr.TextCode != core.ResponderErrorNotConfigured {
		t.Fatalf("expected not-configured text code, got %v", err)
	}
	if len(fake.Requests()) != 0 {
		t.Fatalf("missing token must not reach the wire")
	}
}

func TestClient_GetActorNotFound(t *testing.T) {
	client, _ := newScriptedClient(devkit.TransportScript{
		Response: core.TransportResponse{StatusCode: http.StatusNotFound},
	})

	_, found, err := client.GetActor(context.Background(), "V-404")
	if err != nil {
		t.Fatalf("get actor: %v", err)
	}
	if found {
		t.Fatalf("expected not found")
	}
}

func TestClient_UpsertContactHandlesConflict(t *testing.T) {
	client, fake := newScriptedClient(
		devkit.TransportScript{
			Response: core.TransportResponse{
				StatusCode: http.StatusConflict,
				Body:       []byte(`{"message": "Contact already exists. Existing ID: 5501"}`),
			},
		},
		devkit.TransportScript{
			Response: core.TransportResponse{
				StatusCode: http.StatusOK,
				Body:       []byte(`{"id": "5501"}`),
			},
		},
	)

	contactID, err := client.UpsertContactByEmail(context.Background(), "ada@example.com", map[string]string{
		"auto_responder_intent": "pricing",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if contactID != "5501" {
		t.Fatalf("expected existing contact id, got %q", contactID)
	}

	requests := fake.Requests()
	if len(requests) != 2 {
		t.Fatalf("expected create then patch, got %d calls", len(requests))
	}
	if requests[1].Method != http.MethodPatch || !strings.Contains(requests[1].URL, "/contacts/5501") {
		t.Fatalf("expected patch to existing contact, got %s %s", requests[1].Method, requests[1].URL)
	}
}
