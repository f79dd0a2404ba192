package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

type ErrorFactory func(message string, category ...goerrors.Category) *goerrors.Error

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type serviceBuilder struct {
	runtimeConfig   Config
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

type Option func(*serviceBuilder)

func WithLogger(logger Logger) Option {
	return func(b *serviceBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *serviceBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *serviceBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithErrorFactory(factory ErrorFactory) Option {
	return func(b *serviceBuilder) {
		b.errorFactory = factory
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *serviceBuilder) {
		b.errorMapper = mapper
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *serviceBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *serviceBuilder) {
		b.optionsResolver = resolver
	}
}

func WithLoopGuard(guard *LoopGuard) Option {
	return func(b *serviceBuilder) {
		b.guard = guard
	}
}

func WithThreadInspector(inspector ThreadInspector) Option {
	return func(b *serviceBuilder) {
		b.inspector = inspector
	}
}

func WithReplyPolicy(policy ReplyPolicy) Option {
	return func(b *serviceBuilder) {
		b.policy = policy
	}
}

func WithActionDispatcher(dispatcher ActionDispatcher) Option {
	return func(b *serviceBuilder) {
		b.dispatcher = dispatcher
	}
}

func WithConversationClient(client ConversationClient) Option {
	return func(b *serviceBuilder) {
		b.conversations = client
	}
}

func WithContactClient(client ContactClient) Option {
	return func(b *serviceBuilder) {
		b.contacts = client
	}
}

func WithActionRecorder(recorder ActionRecorder) Option {
	return func(b *serviceBuilder) {
		b.recorder = recorder
	}
}

func WithJobEnqueuer(enqueuer JobEnqueuer) Option {
	return func(b *serviceBuilder) {
		b.jobEnqueuer = enqueuer
	}
}

func defaultServiceBuilder(runtime Config) serviceBuilder {
	loggerProvider, logger := glog.Resolve("responder", nil, nil)
	return serviceBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		errorFactory:    goerrors.New,
		errorMapper:     defaultErrorMapper,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
		recorder:        NopActionRecorder{},
	}
}

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	return responderErrorMapper(err)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}
	if includeZero || strings.TrimSpace(cfg.BaseURL) != "" {
		layer["base_url"] = cfg.BaseURL
	}
	if includeZero || strings.TrimSpace(cfg.AccessToken) != "" {
		layer["access_token"] = cfg.AccessToken
	}
	if includeZero || strings.TrimSpace(cfg.OwnAppID) != "" {
		layer["own_app_id"] = cfg.OwnAppID
	}
	if includeZero || cfg.AutoComment {
		layer["auto_comment"] = cfg.AutoComment
	}
	if includeZero || cfg.AutoReply {
		layer["auto_reply"] = cfg.AutoReply
	}
	if includeZero || strings.TrimSpace(cfg.Mode) != "" {
		layer["mode"] = cfg.Mode
	}
	if includeZero || cfg.ReplyTTLHours != 0 {
		layer["reply_ttl_hours"] = cfg.ReplyTTLHours
	}
	if includeZero || strings.TrimSpace(cfg.CTAURL) != "" {
		layer["cta_url"] = cfg.CTAURL
	}
	if includeZero || strings.TrimSpace(cfg.SenderActorID) != "" {
		layer["sender_actor_id"] = cfg.SenderActorID
	}
	server := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Server.ListenAddr) != "" {
		server["listen_addr"] = cfg.Server.ListenAddr
	}
	if includeZero || strings.TrimSpace(cfg.Server.WebhookPath) != "" {
		server["webhook_path"] = cfg.Server.WebhookPath
	}
	if includeZero || strings.TrimSpace(cfg.Server.VerifyToken) != "" {
		server["verify_token"] = cfg.Server.VerifyToken
	}
	if includeZero || len(server) > 0 {
		layer["server"] = server
	}
	return layer
}
