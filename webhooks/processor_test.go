package webhooks

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/goliatone/go-responder/core"
)

type stubVerifier struct {
	err error
}

func (v stubVerifier) Verify(context.Context, Delivery) error {
	return v.err
}

type stubEventHandler struct {
	events []core.Event
	calls  int
}

func (h *stubEventHandler) HandleEvents(_ context.Context, events []core.Event) core.DeliveryStats {
	h.calls++
	h.events = append(h.events, events...)
	return core.DeliveryStats{Received: len(events)}
}

func TestProcessor_AcceptVerifiesBeforeAck(t *testing.T) {
	handler := &stubEventHandler{}
	processor := NewProcessor(stubVerifier{}, handler)

	receipt, err := processor.Accept(context.Background(), Delivery{
		Headers: map[string]string{"X-Webhook-Token": "secret"},
		Body:    []byte(`[{"objectId": "T1"}]`),
	})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if !receipt.Accepted || receipt.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 acceptance, got %+v", receipt)
	}
	if handler.calls != 0 {
		t.Fatalf("accept must not process events")
	}
}

func TestProcessor_AcceptRejectsFailedVerification(t *testing.T) {
	handler := &stubEventHandler{}
	processor := NewProcessor(stubVerifier{err: errors.New("token mismatch")}, handler)

	receipt, err := processor.Accept(context.Background(), Delivery{})
	if err == nil {
		t.Fatalf("expected verification error")
	}
	if receipt.Accepted {
		t.Fatalf("rejected delivery must not be accepted")
	}
	if receipt.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", receipt.StatusCode)
	}
	if handler.calls != 0 {
		t.Fatalf("rejected delivery must not reach the handler")
	}
}

func TestProcessor_ProcessHandlesNormalizedEvents(t *testing.T) {
	handler := &stubEventHandler{}
	processor := NewProcessor(nil, handler)

	stats, err := processor.Process(context.Background(), Delivery{
		Body: []byte(`[
			{"subscriptionType": "conversation.creation", "objectId": "T1", "eventId": "E1"},
			{"subscriptionType": "conversation.newMessage", "objectId": "T2", "eventId": "E2"}
		]`),
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if stats.Received != 2 {
		t.Fatalf("expected 2 received, got %d", stats.Received)
	}
	if handler.calls != 1 {
		t.Fatalf("expected single handler invocation per delivery, got %d", handler.calls)
	}
	if handler.events[1].ObjectID != "T2" {
		t.Fatalf("expected events delivered in payload order")
	}
}

func TestProcessor_ProcessSurfacesParseFailures(t *testing.T) {
	handler := &stubEventHandler{}
	processor := NewProcessor(nil, handler)

	stats, err := processor.Process(context.Background(), Delivery{Body: []byte(`not json`)})
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if stats.Received != 0 {
		t.Fatalf("unparseable body must yield zero events")
	}
	if handler.calls != 0 {
		t.Fatalf("unparseable body must not reach the handler")
	}
}
