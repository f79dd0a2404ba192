package webhooks

import (
	"context"
	"fmt"
	"net/http"

	"github.com/goliatone/go-responder/core"
)

// EventHandler consumes one delivery's normalized events.
type EventHandler interface {
	HandleEvents(ctx context.Context, events []core.Event) core.DeliveryStats
}

// Receipt is the synchronous outcome of accepting a delivery. It carries
// the status the HTTP layer should answer with before processing starts.
type Receipt struct {
	Accepted   bool
	StatusCode int
	Metadata   map[string]any
}

type Processor struct {
	Verifier Verifier
	Handler  EventHandler
}

func NewProcessor(verifier Verifier, handler EventHandler) *Processor {
	return &Processor{
		Verifier: verifier,
		Handler:  handler,
	}
}

// Accept runs on the request path. It verifies the delivery and nothing
// else: payload inspection, dedup and handling all happen after the 200.
func (p *Processor) Accept(ctx context.Context, delivery Delivery) (Receipt, error) {
	if p == nil {
		return Receipt{StatusCode: http.StatusServiceUnavailable}, fmt.Errorf("webhooks: processor is not configured")
	}
	if p.Verifier != nil {
		if err := p.Verifier.Verify(ctx, delivery); err != nil {
			return Receipt{
				Accepted:   false,
				StatusCode: http.StatusUnauthorized,
				Metadata:   map[string]any{"rejected": true},
			}, err
		}
	}
	return Receipt{Accepted: true, StatusCode: http.StatusOK}, nil
}

// Process runs after the delivery has been acknowledged. Parse failures
// surface as an error for logging but there is no response left to affect.
func (p *Processor) Process(ctx context.Context, delivery Delivery) (core.DeliveryStats, error) {
	if p == nil || p.Handler == nil {
		return core.DeliveryStats{}, fmt.Errorf("webhooks: processor requires an event handler")
	}
	events, err := NormalizeEvents(delivery.Body)
	if err != nil {
		return core.DeliveryStats{}, err
	}
	return p.Handler.HandleEvents(ctx, events), nil
}
