package webhooks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-responder/core"
)

// Delivery is one inbound webhook request, already read off the wire.
type Delivery struct {
	Headers  map[string]string
	Query    map[string]string
	Body     []byte
	Metadata map[string]any
}

// NormalizeEvents parses a delivery body into events. The payload may be a
// single event object or an array of them; unknown fields are ignored and
// array entries that are not objects are skipped. An unparseable body yields
// zero events and an error.
func NormalizeEvents(body []byte) ([]core.Event, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("webhooks: delivery body is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var parsed any
	if err := decoder.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("webhooks: parse delivery body: %w", err)
	}

	switch payload := parsed.(type) {
	case map[string]any:
		return []core.Event{normalizeEvent(payload)}, nil
	case []any:
		events := make([]core.Event, 0, len(payload))
		for _, entry := range payload {
			object, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			events = append(events, normalizeEvent(object))
		}
		return events, nil
	}
	return nil, fmt.Errorf("webhooks: delivery body must be an event object or array")
}

func normalizeEvent(entry map[string]any) core.Event {
	return core.Event{
		SubscriptionType: strings.ToLower(stringField(entry, "subscriptionType", "subscription_type", "type")),
		ObjectID:         scalarField(entry, "objectId", "object_id", "threadId"),
		EventID:          scalarField(entry, "eventId", "event_id", "id"),
		OccurredAt:       timestampField(entry, "occurredAt", "occurred_at", "timestamp"),
	}
}

func stringField(entry map[string]any, keys ...string) string {
	for _, key := range keys {
		if value, ok := entry[key].(string); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// scalarField tolerates identifiers arriving as JSON strings or numbers;
// numbers are kept digit-exact via json.Number.
func scalarField(entry map[string]any, keys ...string) string {
	for _, key := range keys {
		switch value := entry[key].(type) {
		case string:
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		case json.Number:
			if trimmed := strings.TrimSpace(value.String()); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// timestampField normalizes epoch-millisecond numbers and passes through
// anything already textual, RFC 3339 or otherwise.
func timestampField(entry map[string]any, keys ...string) string {
	for _, key := range keys {
		switch value := entry[key].(type) {
		case string:
			trimmed := strings.TrimSpace(value)
			if trimmed == "" {
				continue
			}
			if millis, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
				return formatEpochMillis(millis)
			}
			return trimmed
		case json.Number:
			if millis, err := value.Int64(); err == nil {
				return formatEpochMillis(millis)
			}
			return strings.TrimSpace(value.String())
		}
	}
	return ""
}

func formatEpochMillis(millis int64) string {
	if millis <= 0 {
		return ""
	}
	return time.UnixMilli(millis).UTC().Format(time.RFC3339)
}
