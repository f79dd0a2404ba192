package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

const (
	IntentUnsubscribe = "unsubscribe"
	IntentPricing     = "pricing"
	IntentDemo        = "demo"
	IntentSupport     = "support"
	IntentGeneral     = "general"
)

const (
	OutcomeSuppressedDuplicate = "suppressed_duplicate"
	OutcomeIgnoredType         = "ignored_type"
	OutcomeMissingThread       = "missing_thread"
	OutcomeSuppressedCommented = "suppressed_commented"
	OutcomeSuppressedReplied   = "suppressed_replied"
	OutcomeDisabled            = "disabled"
	OutcomeNoCandidate         = "no_candidate"
	OutcomeNoReplyDecided      = "no_reply_decided"
	OutcomeCommented           = "commented"
	OutcomeReplied             = "replied"
	OutcomeDrafted             = "drafted"
	OutcomeDeclined            = "declined"
	OutcomeFailed              = "failed"
)

const JobIDGuardPurge = "responder.guard.purge"

type EventOutcome struct {
	EventID  string
	ThreadID string
	Outcome  string
}

type DeliveryStats struct {
	Received   int
	Suppressed int
	Failed     int
	Outcomes   []EventOutcome
}

// Service orchestrates the per-event handling pipeline: loop guard gate,
// thread inspection, reply policy, action dispatch. It owns the only
// references to the guard's key sets; no other component touches them.
type Service struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorFactory    ErrorFactory
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	guard           *LoopGuard
	inspector       ThreadInspector
	policy          ReplyPolicy
	dispatcher      ActionDispatcher
	conversations   ConversationClient
	contacts        ContactClient
	recorder        ActionRecorder
	jobEnqueuer     JobEnqueuer
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("responder", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("responder"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.recorder == nil {
		builder.recorder = NopActionRecorder{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	guard := builder.guard
	if guard == nil {
		ttls := DefaultGuardTTLs()
		ttls.RepliedThreads = finalConfig.ReplyTTL()
		guard = NewLoopGuard(ttls)
	}

	return &Service{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorFactory:    builder.errorFactory,
		errorMapper:     builder.errorMapper,
		configProvider:  builder.configProvider,
		optionsResolver: builder.optionsResolver,
		guard:           guard,
		inspector:       builder.inspector,
		policy:          builder.policy,
		dispatcher:      builder.dispatcher,
		conversations:   builder.conversations,
		contacts:        builder.contacts,
		recorder:        builder.recorder,
		jobEnqueuer:     builder.jobEnqueuer,
	}, nil
}

func Setup(cfg Config, options ...Option) (*Service, error) {
	return NewService(cfg, options...)
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Guard() *LoopGuard {
	if s == nil {
		return nil
	}
	return s.guard
}

// HandleEvents processes one webhook delivery's events strictly in order,
// each fully finished before the next begins, so dedup-set insertion
// ordering is deterministic. Nothing it does reaches the HTTP response; the
// delivery was acknowledged before this runs.
func (s *Service) HandleEvents(ctx context.Context, events []Event) DeliveryStats {
	stats := DeliveryStats{Received: len(events)}
	if s == nil {
		stats.Failed = len(events)
		return stats
	}
	for _, event := range events {
		outcome := s.HandleEvent(ctx, event)
		stats.Outcomes = append(stats.Outcomes, EventOutcome{
			EventID:  event.EventID,
			ThreadID: event.ObjectID,
			Outcome:  outcome,
		})
		switch outcome {
		case OutcomeSuppressedDuplicate, OutcomeSuppressedCommented, OutcomeSuppressedReplied:
			stats.Suppressed++
		case OutcomeFailed:
			stats.Failed++
		}
	}
	return stats
}

// HandleEvent is the per-event boundary: a total catch-all that logs and
// swallows. No error from here is ever fatal to the process.
func (s *Service) HandleEvent(ctx context.Context, event Event) string {
	if s == nil {
		return OutcomeFailed
	}
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"subscription_type": event.SubscriptionType,
		"thread_id":         event.ObjectID,
		"event_id":          event.EventID,
	}

	outcome, err := s.handleEvent(ctx, event)
	if err != nil {
		err = mapBuildError(s.errorMapper, err)
		outcome = OutcomeFailed
	}
	s.observeEvent(ctx, startedAt, "event", outcome, err, fields)
	return outcome
}

func (s *Service) handleEvent(ctx context.Context, event Event) (string, error) {
	decision, err := s.guard.Admit(ctx, event)
	if err != nil {
		return OutcomeFailed, err
	}
	switch decision {
	case GuardDuplicateEvent:
		return OutcomeSuppressedDuplicate, nil
	case GuardIgnoredType:
		return OutcomeIgnoredType, nil
	case GuardMissingThread:
		return OutcomeMissingThread, nil
	case GuardAlreadyCommented:
		return OutcomeSuppressedCommented, nil
	case GuardAlreadyReplied:
		return OutcomeSuppressedReplied, nil
	}

	threadID := strings.TrimSpace(event.ObjectID)
	switch strings.ToLower(strings.TrimSpace(event.SubscriptionType)) {
	case SubscriptionConversationCreation:
		return s.handleCreation(ctx, threadID)
	case SubscriptionConversationNewMessage:
		return s.handleNewMessage(ctx, threadID)
	}
	return OutcomeIgnoredType, nil
}

func (s *Service) handleCreation(ctx context.Context, threadID string) (string, error) {
	if !s.config.AutoComment {
		return OutcomeDisabled, nil
	}
	if s.inspector == nil || s.dispatcher == nil || s.policy == nil {
		return OutcomeFailed, fmt.Errorf("core: thread inspector, reply policy and action dispatcher are required")
	}

	safe, err := s.inspector.SafeToComment(ctx, threadID)
	if err != nil {
		// Fail-safe: an unreadable thread gets nothing, not a guess.
		s.logError(ctx, "creation self-check failed", map[string]any{
			"thread_id": threadID,
			"error":     err.Error(),
		})
		return OutcomeNoCandidate, nil
	}
	if !safe {
		return OutcomeNoCandidate, nil
	}

	text, ok := s.policy.WelcomeComment(ctx)
	if !ok {
		return OutcomeNoReplyDecided, nil
	}
	result := s.dispatcher.PostComment(ctx, threadID, text)
	s.recordOutcome(ctx, threadID, "", result)
	if result.Err != nil {
		return OutcomeFailed, result.Err
	}
	return OutcomeCommented, nil
}

func (s *Service) handleNewMessage(ctx context.Context, threadID string) (string, error) {
	if !s.config.AutoReply {
		return OutcomeDisabled, nil
	}
	if s.inspector == nil || s.dispatcher == nil || s.policy == nil {
		return OutcomeFailed, fmt.Errorf("core: thread inspector, reply policy and action dispatcher are required")
	}

	inspection, err := s.inspector.InspectLatest(ctx, threadID)
	if err != nil {
		s.logError(ctx, "thread inspection failed", map[string]any{
			"thread_id": threadID,
			"error":     err.Error(),
		})
		return OutcomeNoCandidate, nil
	}
	if inspection.Classification != ClassificationGenuineInbound {
		return OutcomeNoCandidate, nil
	}

	decision, ok, err := s.policy.Decide(ctx, inspection.Candidate)
	if err != nil {
		return OutcomeFailed, err
	}
	if !ok {
		return OutcomeNoReplyDecided, nil
	}

	// The gate records a decided reply, not a delivered one: the thread is
	// spent for this window even when the dispatch below fails.
	if err := s.guard.MarkReplied(ctx, threadID); err != nil {
		return OutcomeFailed, err
	}

	if email := strings.TrimSpace(inspection.RecipientEmail); email != "" {
		tag := s.dispatcher.TagContact(ctx, email, decision.Intent)
		s.recordOutcome(ctx, threadID, decision.Intent, tag)
		if tag.Err != nil {
			s.logError(ctx, "contact tagging failed", map[string]any{
				"thread_id": threadID,
				"intent":    decision.Intent,
				"error":     tag.Err.Error(),
			})
		}
	}

	result := s.dispatcher.SendReply(ctx, threadID, decision, inspection)
	s.recordOutcome(ctx, threadID, decision.Intent, result)
	if result.Err != nil {
		return OutcomeFailed, result.Err
	}
	switch result.Status {
	case ActionStatusDraft:
		return OutcomeDrafted, nil
	case ActionStatusDeclined:
		return OutcomeDeclined, nil
	default:
		return OutcomeReplied, nil
	}
}

func (s *Service) recordOutcome(ctx context.Context, threadID string, intent string, outcome ActionOutcome) {
	if s == nil || s.recorder == nil {
		return
	}
	entry := ActionEntry{
		ThreadID:   threadID,
		Kind:       outcome.Kind,
		Intent:     intent,
		Status:     outcome.Status,
		Detail:     outcome.Detail,
		OccurredAt: time.Now().UTC(),
	}
	if outcome.Err != nil {
		entry.Status = ActionStatusFailed
		entry.Detail = outcome.Err.Error()
	}
	if err := s.recorder.RecordAction(ctx, entry); err != nil {
		s.logError(ctx, "action audit write failed", map[string]any{
			"thread_id": threadID,
			"kind":      outcome.Kind,
			"error":     err.Error(),
		})
	}
}

// RunPurge sweeps expired guard keys; exposed for the scheduled maintenance
// job and the query surface.
func (s *Service) RunPurge(ctx context.Context) (int, error) {
	if s == nil || s.guard == nil {
		return 0, fmt.Errorf("core: service is not configured")
	}
	pruned, err := s.guard.PurgeExpired(ctx)
	if err != nil {
		return pruned, mapBuildError(s.errorMapper, err)
	}
	if pruned > 0 {
		s.logInfo(ctx, "guard purge complete", map[string]any{"pruned": pruned})
	}
	return pruned, nil
}

// SchedulePurge enqueues the guard purge job when a queue is wired; callers
// without one run RunPurge on a ticker instead.
func (s *Service) SchedulePurge(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("core: service is not configured")
	}
	if s.jobEnqueuer == nil {
		return fmt.Errorf("core: job enqueuer is not configured")
	}
	return s.jobEnqueuer.Enqueue(ctx, &JobExecutionMessage{
		JobID:          JobIDGuardPurge,
		IdempotencyKey: JobIDGuardPurge,
	})
}
