package webhooks

import (
	"testing"
)

func TestNormalizeEvents_ArrayPayload(t *testing.T) {
	body := []byte(`[
		{"subscriptionType": "conversation.creation", "objectId": 8907654321, "eventId": "evt-1", "occurredAt": 1767000000000},
		{"subscriptionType": "conversation.newMessage", "objectId": "8907654322", "eventId": 42, "occurredAt": "2026-03-10T12:00:00Z"}
	]`)

	events, err := NormalizeEvents(body)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].ObjectID != "8907654321" {
		t.Fatalf("expected numeric object id kept digit-exact, got %q", events[0].ObjectID)
	}
	if events[0].SubscriptionType != "conversation.creation" {
		t.Fatalf("unexpected subscription type %q", events[0].SubscriptionType)
	}
	if events[0].OccurredAt != "2025-12-29T09:20:00Z" {
		t.Fatalf("expected epoch millis normalized to RFC 3339, got %q", events[0].OccurredAt)
	}
	if events[1].SubscriptionType != "conversation.newmessage" {
		t.Fatalf("expected lowercased subscription type, got %q", events[1].SubscriptionType)
	}
	if events[1].EventID != "42" {
		t.Fatalf("expected numeric event id as string, got %q", events[1].EventID)
	}
	if events[1].OccurredAt != "2026-03-10T12:00:00Z" {
		t.Fatalf("expected textual timestamp passed through, got %q", events[1].OccurredAt)
	}
}

func TestNormalizeEvents_SingleObjectPayload(t *testing.T) {
	events, err := NormalizeEvents([]byte(`{"subscriptionType": "conversation.creation", "objectId": "T1"}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].EventID != "" {
		t.Fatalf("expected missing event id left empty, got %q", events[0].EventID)
	}
}

func TestNormalizeEvents_SkipsNonObjectEntries(t *testing.T) {
	events, err := NormalizeEvents([]byte(`[{"objectId": "T1"}, "noise", 17, null]`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected non-object entries skipped, got %d events", len(events))
	}
}

func TestNormalizeEvents_UnknownFieldsIgnored(t *testing.T) {
	body := []byte(`{"subscriptionType": "conversation.newMessage", "objectId": "T2", "attemptNumber": 3, "portalId": 99}`)
	events, err := NormalizeEvents(body)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if events[0].ObjectID != "T2" {
		t.Fatalf("unexpected object id %q", events[0].ObjectID)
	}
}

func TestNormalizeEvents_RejectsUnparseableBodies(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"whitespace":   "   ",
		"truncated":    `[{"objectId": "T1"`,
		"bare scalar":  `"hello"`,
		"bare boolean": `true`,
	}
	for name, body := range cases {
		events, err := NormalizeEvents([]byte(body))
		if err == nil {
			t.Fatalf("%s: expected parse error", name)
		}
		if len(events) != 0 {
			t.Fatalf("%s: expected zero events, got %d", name, len(events))
		}
	}
}
