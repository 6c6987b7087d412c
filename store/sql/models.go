package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type requestLogRecord struct {
	bun.BaseModel `bun:"table:localpay_request_logs,alias:lrl"`

	ID           string            `bun:"id,pk"`
	LogID        string            `bun:"log_id,notnull"`
	Method       string            `bun:"method,notnull"`
	Path         string            `bun:"path,notnull"`
	Query        map[string]string `bun:"query,type:jsonb,notnull"`
	RequestBody  string            `bun:"request_body,notnull"`
	ResponseBody string            `bun:"response_body,notnull"`
	StatusCode   int               `bun:"status_code,notnull"`
	DurationMS   int64             `bun:"duration_ms,notnull"`
	Error        string            `bun:"error,notnull"`
	ObjectType   string            `bun:"object_type,notnull"`
	ObjectID     string            `bun:"object_id,notnull"`
	CreatedAt    time.Time         `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
