package query

import (
	"context"

	"github.com/goliatone/go-localpay/core"
)

type ListRequestLogsQuery struct {
	reader core.RequestLogReader
}

func NewListRequestLogsQuery(reader core.RequestLogReader) *ListRequestLogsQuery {
	return &ListRequestLogsQuery{reader: reader}
}

func (q *ListRequestLogsQuery) Query(ctx context.Context, msg ListRequestLogsMessage) ([]core.RequestLogEntry, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: request log reader is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return q.reader.List(ctx, msg.Filter)
}

// ElementValueQuery snapshots what a widget would submit right now.
type ElementValueQuery struct{}

func NewElementValueQuery() *ElementValueQuery {
	return &ElementValueQuery{}
}

func (q *ElementValueQuery) Query(_ context.Context, msg ElementValueMessage) (core.ElementValue, error) {
	if err := msg.Validate(); err != nil {
		return core.ElementValue{}, err
	}
	return msg.Element.Value(), nil
}
