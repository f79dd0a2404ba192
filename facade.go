package responder

import (
	"fmt"

	respondercommand "github.com/goliatone/go-responder/command"
	"github.com/goliatone/go-responder/core"
	responderquery "github.com/goliatone/go-responder/query"
)

// Commands bundles the mutating message handlers for hosts that mount the
// responder on a command bus.
type Commands struct {
	HandleEvents *respondercommand.HandleEventsCommand
	PostComment  *respondercommand.PostCommentCommand
	SendReply    *respondercommand.SendReplyCommand
	TagContact   *respondercommand.TagContactCommand
	PurgeGuard   *respondercommand.PurgeGuardCommand
}

type Queries struct {
	ListActions   *responderquery.ListActionsQuery
	GuardStatus   *responderquery.GuardStatusQuery
	LookupContact *responderquery.LookupContactQuery
}

type Facade struct {
	service  *core.Service
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	dispatcher    core.ActionDispatcher
	actionReader  responderquery.ActionReader
	contactReader responderquery.ContactReader
}

// WithDispatcher supplies the dispatcher behind the action commands. Without
// it those commands are omitted from the facade.
func WithDispatcher(dispatcher core.ActionDispatcher) FacadeOption {
	return func(options *facadeOptions) {
		options.dispatcher = dispatcher
	}
}

func WithActionReader(reader responderquery.ActionReader) FacadeOption {
	return func(options *facadeOptions) {
		options.actionReader = reader
	}
}

func WithContactReader(reader responderquery.ContactReader) FacadeOption {
	return func(options *facadeOptions) {
		options.contactReader = reader
	}
}

func NewFacade(service *core.Service, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("responder: service is required")
	}

	options := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&options)
	}

	facade := &Facade{
		service: service,
		commands: Commands{
			HandleEvents: respondercommand.NewHandleEventsCommand(service),
			PurgeGuard:   respondercommand.NewPurgeGuardCommand(service),
		},
		queries: Queries{
			GuardStatus: responderquery.NewGuardStatusQuery(service.Guard()),
		},
	}
	if options.dispatcher != nil {
		facade.commands.PostComment = respondercommand.NewPostCommentCommand(options.dispatcher)
		facade.commands.SendReply = respondercommand.NewSendReplyCommand(options.dispatcher)
		facade.commands.TagContact = respondercommand.NewTagContactCommand(options.dispatcher)
	}
	if options.actionReader != nil {
		facade.queries.ListActions = responderquery.NewListActionsQuery(options.actionReader)
	}
	if options.contactReader != nil {
		facade.queries.LookupContact = responderquery.NewLookupContactQuery(options.contactReader)
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() *Service {
	if f == nil {
		return nil
	}
	return f.service
}
