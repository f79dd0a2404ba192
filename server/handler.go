package server

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-responder/core"
	"github.com/goliatone/go-responder/webhooks"
)

const maxWebhookBodyBytes = 1 << 20

// WebhookHandler is the HTTP boundary for provider deliveries. It acks with
// a 200 as soon as the delivery is verified and read; normalization and
// event handling run after the response so provider retry timers never see
// our processing latency.
type WebhookHandler struct {
	processor *webhooks.Processor
	logger    core.Logger

	// process is swappable so tests can intercept the post-ack work.
	process func(ctx context.Context, delivery webhooks.Delivery)
}

func NewWebhookHandler(processor *webhooks.Processor, logger core.Logger) *WebhookHandler {
	handler := &WebhookHandler{
		processor: processor,
		logger:    logger,
	}
	handler.process = handler.processDelivery
	return handler
}

func (h *WebhookHandler) HandleDelivery(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		// The endpoint contract is an unconditional 200 once the request
		// reaches us; a truncated body is logged and dropped.
		h.logError(ctx, "webhook body read failed", err)
		c.Status(http.StatusOK)
		return
	}

	delivery := webhooks.Delivery{
		Headers: flattenRequestHeaders(c.Request.Header),
		Query:   flattenQuery(c),
		Body:    body,
	}

	receipt, err := h.processor.Accept(ctx, delivery)
	if err != nil || !receipt.Accepted {
		status := receipt.StatusCode
		if status == 0 {
			status = http.StatusUnauthorized
		}
		h.logError(ctx, "webhook delivery rejected", err)
		c.JSON(status, gin.H{"error": "delivery rejected"})
		return
	}

	c.Status(http.StatusOK)

	go h.process(context.WithoutCancel(ctx), delivery)
}

func (h *WebhookHandler) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// processDelivery runs after the ack with no deadline of its own: each
// event's ID is claimed on entry, so cancelling a half-processed delivery
// would turn the provider's redelivery into suppressed duplicates. Only the
// outbound client's timeouts bound the work.
func (h *WebhookHandler) processDelivery(ctx context.Context, delivery webhooks.Delivery) {
	stats, err := h.processor.Process(ctx, delivery)
	if err != nil {
		// The delivery was already acked; a malformed payload is logged
		// and dropped rather than surfaced to the provider.
		h.logError(ctx, "webhook delivery processing failed", err)
		return
	}
	if h.logger != nil {
		h.logger.Info("webhook delivery processed",
			"received", stats.Received,
			"suppressed", stats.Suppressed,
			"failed", stats.Failed,
		)
	}
}

func (h *WebhookHandler) logError(ctx context.Context, message string, err error) {
	if h == nil || h.logger == nil {
		return
	}
	logger := h.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if err != nil {
		logger.Error(message, "error", err)
		return
	}
	logger.Error(message)
}

func flattenRequestHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if len(values) == 0 {
			continue
		}
		out[name] = values[0]
	}
	return out
}

func flattenQuery(c *gin.Context) map[string]string {
	values := c.Request.URL.Query()
	out := make(map[string]string, len(values))
	for name, vals := range values {
		if len(vals) == 0 {
			continue
		}
		out[name] = vals[0]
	}
	return out
}
