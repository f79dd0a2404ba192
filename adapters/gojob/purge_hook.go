package gojob

import (
	"context"

	"github.com/goliatone/go-responder/core"
)

// PurgeLogHook reports guard purge job lifecycle transitions through the
// shared logging stack. Failures are logged and never interrupt the worker.
type PurgeLogHook struct {
	logger core.Logger
}

func NewPurgeLogHook(logger core.Logger) *PurgeLogHook {
	return &PurgeLogHook{logger: logger}
}

func (h *PurgeLogHook) OnStart(_ context.Context, event core.JobWorkerEvent) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Info("guard purge started", "job_id", eventJobID(event), "attempt", event.Attempt)
}

func (h *PurgeLogHook) OnSuccess(_ context.Context, event core.JobWorkerEvent) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Info("guard purge finished",
		"job_id", eventJobID(event),
		"attempt", event.Attempt,
		"duration_ms", event.Duration.Milliseconds(),
	)
}

func (h *PurgeLogHook) OnFailure(_ context.Context, event core.JobWorkerEvent) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Error("guard purge failed",
		"job_id", eventJobID(event),
		"attempt", event.Attempt,
		"error", event.Err,
	)
}

func (h *PurgeLogHook) OnRetry(_ context.Context, event core.JobWorkerEvent) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Info("guard purge retrying",
		"job_id", eventJobID(event),
		"attempt", event.Attempt,
		"delay_ms", event.Delay.Milliseconds(),
	)
}

func eventJobID(event core.JobWorkerEvent) string {
	if event.Message == nil {
		return ""
	}
	return event.Message.JobID
}

var _ core.JobWorkerHook = (*PurgeLogHook)(nil)
