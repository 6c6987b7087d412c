package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-localpay/core"
)

var (
	_ gocmd.Querier[ListRequestLogsMessage, []core.RequestLogEntry] = (*ListRequestLogsQuery)(nil)
	_ gocmd.Querier[ElementValueMessage, core.ElementValue]         = (*ElementValueQuery)(nil)
)
