package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// ExpiringKeySet is a set of opaque keys with independent deadlines. A key
// present at time T is absent at any time at or after its deadline; exact
// deletion timing is best-effort but never indefinitely delayed.
type ExpiringKeySet interface {
	// Claim inserts the key if it is not live and reports whether the
	// insert happened. A false return means the key was already present.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Contains reports liveness without mutating the set.
	Contains(ctx context.Context, key string) (bool, error)
	// Remember inserts the key unconditionally, resetting its deadline.
	Remember(ctx context.Context, key string, ttl time.Duration) error
	PurgeExpired(ctx context.Context) (int, error)
}

// ConversationClient is the narrow surface of the conversations API the
// responder consumes. Implementations live under providers.
type ConversationClient interface {
	// ListThreadMessages returns up to limit entries, newest first.
	ListThreadMessages(ctx context.Context, threadID string, limit int) ([]ThreadMessage, error)
	PostComment(ctx context.Context, threadID string, text string) error
	SendMessage(ctx context.Context, threadID string, msg OutboundMessage) (SendReceipt, error)
	GetActor(ctx context.Context, actorID string) (Actor, bool, error)
}

// ContactClient finds or creates a CRM contact by email. Used only by the
// tagging extension, never by the loop-prevention core.
type ContactClient interface {
	UpsertContactByEmail(ctx context.Context, email string, properties map[string]string) (string, error)
}

// ThreadInspector reads recent thread messages and classifies what it finds.
type ThreadInspector interface {
	// SafeToComment is the creation-event self-check: true when the latest
	// thread entry is not something this responder (or any agent) wrote.
	// An empty thread is safe; an API failure is not.
	SafeToComment(ctx context.Context, threadID string) (bool, error)
	// InspectLatest classifies the most recent relevant message and, for a
	// genuine inbound candidate, derives recipient and send context.
	InspectLatest(ctx context.Context, threadID string) (ThreadInspection, error)
}

// ReplyPolicy decides whether and how to reply to a genuine inbound
// message. ok is false when no reply should happen (bounce, empty text).
type ReplyPolicy interface {
	// WelcomeComment renders the internal note left on newly created
	// threads; ok is false when no welcome content is configured.
	WelcomeComment(ctx context.Context) (text string, ok bool)
	Decide(ctx context.Context, msg ThreadMessage) (decision ReplyDecision, ok bool, err error)
}

// ActionOutcome is the explicit result of a dispatch operation; errors are
// carried for logging, never propagated to the webhook boundary.
type ActionOutcome struct {
	Kind   string
	Status string
	Detail string
	Err    error
}

// ActionDispatcher executes decided actions against the external API. Each
// successful call generates a new inbound webhook event from the source
// platform; the loop guard's single-shot gates exist to absorb those.
type ActionDispatcher interface {
	PostComment(ctx context.Context, threadID string, text string) ActionOutcome
	SendReply(ctx context.Context, threadID string, decision ReplyDecision, inspection ThreadInspection) ActionOutcome
	TagContact(ctx context.Context, email string, intent string) ActionOutcome
}

// ActionRecorder receives an audit entry per dispatched action. Recording
// failures are logged and swallowed; the audit trail is advisory and is
// never consulted by the loop guard.
type ActionRecorder interface {
	RecordAction(ctx context.Context, entry ActionEntry) error
}

type NopActionRecorder struct{}

func (NopActionRecorder) RecordAction(context.Context, ActionEntry) error { return nil }

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// TransportRequest is a protocol-neutral outbound call description.
type TransportRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Query   map[string]string
	Body    []byte
	Timeout time.Duration
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

// Job contracts mirror the go-job queue surface so schedulable work (the
// guard purge) stays decoupled from the queue implementation; adapters/gojob
// bridges these to go-job.
type JobExecutionMessage struct {
	JobID          string
	ScriptPath     string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

type JobDelivery interface {
	Message() *JobExecutionMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}

type JobWorkerEvent struct {
	Message   *JobExecutionMessage
	Attempt   int
	Delay     time.Duration
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

type JobWorkerHook interface {
	OnStart(ctx context.Context, event JobWorkerEvent)
	OnSuccess(ctx context.Context, event JobWorkerEvent)
	OnFailure(ctx context.Context, event JobWorkerEvent)
	OnRetry(ctx context.Context, event JobWorkerEvent)
}
