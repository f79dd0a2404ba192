package responder

import "github.com/goliatone/go-responder/core"

type Config = core.Config

type ServerConfig = core.ServerConfig

type Option = core.Option

type Service = core.Service

type Event = core.Event
type EventOutcome = core.EventOutcome
type DeliveryStats = core.DeliveryStats
type ThreadMessage = core.ThreadMessage
type ThreadInspection = core.ThreadInspection
type ReplyDecision = core.ReplyDecision
type ActionOutcome = core.ActionOutcome
type ActionEntry = core.ActionEntry

type ConversationClient = core.ConversationClient
type ContactClient = core.ContactClient
type ThreadInspector = core.ThreadInspector
type ReplyPolicy = core.ReplyPolicy
type ActionDispatcher = core.ActionDispatcher
type ActionRecorder = core.ActionRecorder
type ExpiringKeySet = core.ExpiringKeySet
type LoopGuard = core.LoopGuard
type GuardStatus = core.GuardStatus
type GuardSetStatus = core.GuardSetStatus

var (
	WithLogger             = core.WithLogger
	WithLoggerProvider     = core.WithLoggerProvider
	WithMetricsRecorder    = core.WithMetricsRecorder
	WithErrorFactory       = core.WithErrorFactory
	WithErrorMapper        = core.WithErrorMapper
	WithConfigProvider     = core.WithConfigProvider
	WithOptionsResolver    = core.WithOptionsResolver
	WithLoopGuard          = core.WithLoopGuard
	WithThreadInspector    = core.WithThreadInspector
	WithReplyPolicy        = core.WithReplyPolicy
	WithActionDispatcher   = core.WithActionDispatcher
	WithConversationClient = core.WithConversationClient
	WithContactClient      = core.WithContactClient
	WithActionRecorder     = core.WithActionRecorder
	WithJobEnqueuer        = core.WithJobEnqueuer
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}
