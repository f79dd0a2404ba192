package sqlstore

import (
	"github.com/goliatone/go-responder/core"
	"github.com/goliatone/go-responder/query"
)

var (
	_ core.ActionRecorder = (*ActionAuditStore)(nil)
	_ query.ActionReader  = (*ActionAuditStore)(nil)
	_ query.ContactReader = (*ContactLinkStore)(nil)
	_ query.ContactReader = (*CachedContactStore)(nil)
	_ ContactResolver     = (*ContactLinkStore)(nil)
	_ ContactResolver     = (*CachedContactStore)(nil)
	_ core.ContactClient  = (*LinkedContactClient)(nil)
)
