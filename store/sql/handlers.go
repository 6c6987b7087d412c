package sqlstore

import (
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

func requestLogHandlers() repository.ModelHandlers[*requestLogRecord] {
	return repository.ModelHandlers[*requestLogRecord]{
		NewRecord: func() *requestLogRecord {
			return &requestLogRecord{}
		},
		GetID: func(record *requestLogRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *requestLogRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "log_id"
		},
		GetIdentifierValue: func(record *requestLogRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.LogID)
		},
	}
}

func parseUUID(value string) uuid.UUID {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
