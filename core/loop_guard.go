package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// GuardDecision is the loop guard's verdict for one event.
type GuardDecision string

const (
	GuardProceed          GuardDecision = "proceed"
	GuardDuplicateEvent   GuardDecision = "duplicate_event"
	GuardIgnoredType      GuardDecision = "ignored_type"
	GuardMissingThread    GuardDecision = "missing_thread"
	GuardAlreadyCommented GuardDecision = "already_commented"
	GuardAlreadyReplied   GuardDecision = "already_replied"
)

// Suppressed reports whether the decision is a replay/loop suppression, as
// opposed to a plain no-op or a go-ahead.
func (d GuardDecision) Suppressed() bool {
	switch d {
	case GuardDuplicateEvent, GuardAlreadyCommented, GuardAlreadyReplied:
		return true
	default:
		return false
	}
}

type GuardTTLs struct {
	SeenEvents       time.Duration
	CommentedThreads time.Duration
	RepliedThreads   time.Duration
}

func DefaultGuardTTLs() GuardTTLs {
	return GuardTTLs{
		SeenEvents:       5 * time.Minute,
		CommentedThreads: time.Hour,
		RepliedThreads:   12 * time.Hour,
	}
}

func (t GuardTTLs) normalized() GuardTTLs {
	defaults := DefaultGuardTTLs()
	if t.SeenEvents <= 0 {
		t.SeenEvents = defaults.SeenEvents
	}
	if t.CommentedThreads <= 0 {
		t.CommentedThreads = defaults.CommentedThreads
	}
	if t.RepliedThreads <= 0 {
		t.RepliedThreads = defaults.RepliedThreads
	}
	if t.RepliedThreads < time.Hour {
		t.RepliedThreads = time.Hour
	}
	return t
}

// LoopGuard owns the three expiring key sets and every anti-loop decision.
// The sets are deliberately separate instances: keys from different
// purposes may collide in string form and must not share a namespace.
type LoopGuard struct {
	ttls             GuardTTLs
	seenEvents       ExpiringKeySet
	commentedThreads ExpiringKeySet
	repliedThreads   ExpiringKeySet
}

// GuardSets lets tests (or alternative stores) supply the key sets; nil
// members fall back to in-memory sets.
type GuardSets struct {
	SeenEvents       ExpiringKeySet
	CommentedThreads ExpiringKeySet
	RepliedThreads   ExpiringKeySet
}

func NewLoopGuard(ttls GuardTTLs) *LoopGuard {
	return NewLoopGuardWithSets(ttls, GuardSets{})
}

func NewLoopGuardWithSets(ttls GuardTTLs, sets GuardSets) *LoopGuard {
	ttls = ttls.normalized()
	if sets.SeenEvents == nil {
		sets.SeenEvents = NewMemoryKeySet(ttls.SeenEvents)
	}
	if sets.CommentedThreads == nil {
		sets.CommentedThreads = NewMemoryKeySet(ttls.CommentedThreads)
	}
	if sets.RepliedThreads == nil {
		sets.RepliedThreads = NewMemoryKeySet(ttls.RepliedThreads)
	}
	return &LoopGuard{
		ttls:             ttls,
		seenEvents:       sets.SeenEvents,
		commentedThreads: sets.CommentedThreads,
		repliedThreads:   sets.RepliedThreads,
	}
}

// Admit runs the gate sequence for one event: dedup, type, thread presence,
// then the per-purpose single-shot gate. The event ID is claimed before any
// further processing so a delivery retry after a downstream failure never
// re-enters side-effecting logic.
func (g *LoopGuard) Admit(ctx context.Context, event Event) (GuardDecision, error) {
	if g == nil {
		return "", fmt.Errorf("core: loop guard is not configured")
	}
	eventID := strings.TrimSpace(event.EventID)
	if eventID == "" {
		eventID = SynthesizeEventID(event.SubscriptionType, event.ObjectID, event.OccurredAt)
	}
	fresh, err := g.seenEvents.Claim(ctx, eventID, g.ttls.SeenEvents)
	if err != nil {
		return "", err
	}
	if !fresh {
		return GuardDuplicateEvent, nil
	}
	if !event.Actionable() {
		return GuardIgnoredType, nil
	}
	threadID := strings.TrimSpace(event.ObjectID)
	if threadID == "" {
		return GuardMissingThread, nil
	}

	switch strings.ToLower(strings.TrimSpace(event.SubscriptionType)) {
	case SubscriptionConversationCreation:
		claimed, err := g.commentedThreads.Claim(ctx, threadID, g.ttls.CommentedThreads)
		if err != nil {
			return "", err
		}
		if !claimed {
			return GuardAlreadyCommented, nil
		}
	case SubscriptionConversationNewMessage:
		replied, err := g.repliedThreads.Contains(ctx, threadID)
		if err != nil {
			return "", err
		}
		if replied {
			return GuardAlreadyReplied, nil
		}
	}
	return GuardProceed, nil
}

// MarkReplied records the replied-threads gate. It is called once a reply is
// actually decided, not merely attempted, so a thread with no genuine
// inbound candidate stays eligible for a later attempt.
func (g *LoopGuard) MarkReplied(ctx context.Context, threadID string) error {
	if g == nil {
		return fmt.Errorf("core: loop guard is not configured")
	}
	return g.repliedThreads.Remember(ctx, strings.TrimSpace(threadID), g.ttls.RepliedThreads)
}

// KeySetSizer is an optional ExpiringKeySet extension reporting how many
// live keys a set holds. Sets backed by external stores may not implement
// it; status reporting degrades to TTLs only.
type KeySetSizer interface {
	Len(ctx context.Context) (int, error)
}

// GuardSetStatus describes one key set. Keys is -1 when the backing set
// cannot report a count.
type GuardSetStatus struct {
	TTL  time.Duration `json:"ttl"`
	Keys int           `json:"keys"`
}

// GuardStatus is a point-in-time snapshot of the three guard sets.
type GuardStatus struct {
	SeenEvents       GuardSetStatus `json:"seen_events"`
	CommentedThreads GuardSetStatus `json:"commented_threads"`
	RepliedThreads   GuardSetStatus `json:"replied_threads"`
}

// Status reports the configured TTL and live key count for each set.
func (g *LoopGuard) Status(ctx context.Context) (GuardStatus, error) {
	if g == nil {
		return GuardStatus{}, fmt.Errorf("core: loop guard is not configured")
	}
	seen, err := setStatus(ctx, g.seenEvents, g.ttls.SeenEvents)
	if err != nil {
		return GuardStatus{}, err
	}
	commented, err := setStatus(ctx, g.commentedThreads, g.ttls.CommentedThreads)
	if err != nil {
		return GuardStatus{}, err
	}
	replied, err := setStatus(ctx, g.repliedThreads, g.ttls.RepliedThreads)
	if err != nil {
		return GuardStatus{}, err
	}
	return GuardStatus{
		SeenEvents:       seen,
		CommentedThreads: commented,
		RepliedThreads:   replied,
	}, nil
}

func setStatus(ctx context.Context, set ExpiringKeySet, ttl time.Duration) (GuardSetStatus, error) {
	status := GuardSetStatus{TTL: ttl, Keys: -1}
	sizer, ok := set.(KeySetSizer)
	if !ok {
		return status, nil
	}
	keys, err := sizer.Len(ctx)
	if err != nil {
		return status, err
	}
	status.Keys = keys
	return status, nil
}

// PurgeExpired sweeps all three sets and returns the total pruned.
func (g *LoopGuard) PurgeExpired(ctx context.Context) (int, error) {
	if g == nil {
		return 0, fmt.Errorf("core: loop guard is not configured")
	}
	total := 0
	for _, set := range []ExpiringKeySet{g.seenEvents, g.commentedThreads, g.repliedThreads} {
		pruned, err := set.PurgeExpired(ctx)
		if err != nil {
			return total, err
		}
		total += pruned
	}
	return total, nil
}
