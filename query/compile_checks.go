package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-responder/core"
)

var (
	_ gocmd.Querier[ListActionsMessage, []core.ActionEntry] = (*ListActionsQuery)(nil)
	_ gocmd.Querier[GuardStatusMessage, core.GuardStatus]   = (*GuardStatusQuery)(nil)
	_ gocmd.Querier[LookupContactMessage, string]           = (*LookupContactQuery)(nil)

	_ GuardReader = (*core.LoopGuard)(nil)
)
