package inspect

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-responder/core"
)

const (
	defaultFetchLimit    = 25
	defaultRetryAttempts = 3
	defaultRetryInitial  = 250 * time.Millisecond
)

// RetryPolicy bounds the history fetch against webhook/API read lag: the
// notification can arrive before the message it announces is readable, so
// both errored reads and successful reads with no candidate yet are
// retried with backoff.
type RetryPolicy struct {
	Attempts int
	Initial  time.Duration
	Max      time.Duration
}

func (p RetryPolicy) attempts() int {
	if p.Attempts > 0 {
		return p.Attempts
	}
	return defaultRetryAttempts
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	initial := p.Initial
	if initial <= 0 {
		initial = defaultRetryInitial
	}
	maximum := p.Max
	if maximum <= 0 {
		maximum = 2 * time.Second
	}
	delay := initial
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maximum {
			return maximum
		}
	}
	if delay > maximum {
		return maximum
	}
	return delay
}

// Inspector implements core.ThreadInspector over a ConversationClient.
type Inspector struct {
	Client core.ConversationClient
	// OwnAppID identifies messages this application sent through the API.
	OwnAppID string
	// SenderActorID, when configured, overrides send-context actor derivation.
	SenderActorID string
	FetchLimit    int
	Retry         RetryPolicy
	Sleep         func(ctx context.Context, d time.Duration) error
}

func NewInspector(client core.ConversationClient, ownAppID string, senderActorID string) *Inspector {
	return &Inspector{
		Client:        client,
		OwnAppID:      strings.TrimSpace(ownAppID),
		SenderActorID: strings.TrimSpace(senderActorID),
		FetchLimit:    defaultFetchLimit,
		Retry:         RetryPolicy{},
		Sleep:         sleepContext,
	}
}

var _ core.ThreadInspector = (*Inspector)(nil)

// SafeToComment reports whether a freshly created thread should receive the
// welcome comment. An empty thread is safe. A latest entry that is a
// comment, outgoing, or self-authored means an agent or this responder got
// there first.
func (i *Inspector) SafeToComment(ctx context.Context, threadID string) (bool, error) {
	messages, err := i.fetchMessages(ctx, threadID)
	if err != nil {
		return false, err
	}
	if len(messages) == 0 {
		return true, nil
	}
	latest := messages[0]
	if latest.IsComment() {
		return false, nil
	}
	if latest.IsOutgoing() {
		return false, nil
	}
	if i.selfAuthored(latest) {
		return false, nil
	}
	return true, nil
}

// InspectLatest classifies the newest non-comment message on the thread and,
// for a genuine inbound candidate, resolves the recipient address and send
// context a reply would need. The read is retried when it fails AND when it
// succeeds without a candidate: the webhook can outrun the message index,
// and a 200 with the announced message missing is the same lag as a 5xx.
func (i *Inspector) InspectLatest(ctx context.Context, threadID string) (core.ThreadInspection, error) {
	if i == nil || i.Client == nil {
		return core.ThreadInspection{}, fmt.Errorf("inspect: conversation client is required")
	}
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return core.ThreadInspection{}, fmt.Errorf("inspect: thread id is required")
	}

	limit := i.FetchLimit
	if limit <= 0 {
		limit = defaultFetchLimit
	}
	sleep := i.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	attempts := i.Retry.attempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		messages, err := i.Client.ListThreadMessages(ctx, threadID, limit)
		lastErr = err
		if err == nil {
			if candidate, found := latestMessage(messages); found {
				return i.classify(ctx, candidate, messages), nil
			}
		}
		if attempt == attempts {
			break
		}
		if err := sleep(ctx, i.Retry.delay(attempt)); err != nil {
			return core.ThreadInspection{}, err
		}
	}
	if lastErr != nil {
		return core.ThreadInspection{}, fmt.Errorf("inspect: list thread %s messages: %w", threadID, lastErr)
	}
	return core.ThreadInspection{Classification: core.ClassificationNone}, nil
}

func (i *Inspector) classify(ctx context.Context, candidate core.ThreadMessage, messages []core.ThreadMessage) core.ThreadInspection {
	if i.selfAuthored(candidate) {
		return core.ThreadInspection{Classification: core.ClassificationSelfAuthored, Candidate: candidate}
	}
	if candidate.IsOutgoing() {
		return core.ThreadInspection{Classification: core.ClassificationOutgoing, Candidate: candidate}
	}
	inspection := core.ThreadInspection{
		Classification: core.ClassificationGenuineInbound,
		Candidate:      candidate,
		SendContext:    i.deriveSendContext(candidate, messages),
	}
	inspection.RecipientEmail = i.resolveRecipientEmail(ctx, candidate)
	return inspection
}

// fetchMessages reads the recent thread history newest-first, retrying with
// backoff while the API answers with an error.
func (i *Inspector) fetchMessages(ctx context.Context, threadID string) ([]core.ThreadMessage, error) {
	if i == nil || i.Client == nil {
		return nil, fmt.Errorf("inspect: conversation client is required")
	}
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return nil, fmt.Errorf("inspect: thread id is required")
	}

	limit := i.FetchLimit
	if limit <= 0 {
		limit = defaultFetchLimit
	}
	sleep := i.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	attempts := i.Retry.attempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		messages, err := i.Client.ListThreadMessages(ctx, threadID, limit)
		if err == nil {
			return messages, nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		if err := sleep(ctx, i.Retry.delay(attempt)); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("inspect: list thread %s messages: %w", threadID, lastErr)
}

func (i *Inspector) selfAuthored(msg core.ThreadMessage) bool {
	if i == nil || i.OwnAppID == "" {
		return false
	}
	return strings.TrimSpace(msg.SenderAppID) == i.OwnAppID
}

// latestMessage returns the newest MESSAGE entry, skipping comments. Agent
// notes interleaved with customer traffic never masquerade as candidates.
func latestMessage(messages []core.ThreadMessage) (core.ThreadMessage, bool) {
	for _, msg := range messages {
		if msg.IsComment() {
			continue
		}
		if msg.IsMessage() {
			return msg, true
		}
	}
	return core.ThreadMessage{}, false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
