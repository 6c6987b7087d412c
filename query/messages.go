package query

import (
	"strings"

	"github.com/goliatone/go-localpay/core"
)

const (
	TypeListRequestLogs = "localpay.query.request_log.list"
	TypeElementValue    = "localpay.query.element.value"
)

type ListRequestLogsMessage struct {
	Filter core.RequestLogFilter
}

func (ListRequestLogsMessage) Type() string { return TypeListRequestLogs }

func (m ListRequestLogsMessage) Validate() error {
	if m.Filter.Limit < 0 {
		return queryValidationError("limit", "limit must be >= 0")
	}
	if strings.TrimSpace(m.Filter.ObjectID) != "" && strings.TrimSpace(m.Filter.ObjectType) == "" {
		return queryValidationError("object_type", "object_type is required when object_id is set")
	}
	return nil
}

type ElementValueMessage struct {
	Element core.ValueSource
}

func (ElementValueMessage) Type() string { return TypeElementValue }

func (m ElementValueMessage) Validate() error {
	if m.Element == nil {
		return queryValidationError("element", "element is required")
	}
	return nil
}
