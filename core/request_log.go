package core

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type RequestLogEntry struct {
	ID           string
	Method       string
	Path         string
	Query        map[string]string
	RequestBody  []byte
	ResponseBody []byte
	StatusCode   int
	DurationMS   int64
	Error        string
	ObjectType   string
	ObjectID     string
	CreatedAt    time.Time
}

type RequestLogFilter struct {
	ObjectType string
	ObjectID   string
	Limit      int
}

func (f RequestLogFilter) matches(entry RequestLogEntry) bool {
	if f.ObjectType != "" && entry.ObjectType != f.ObjectType {
		return false
	}
	if f.ObjectID != "" && entry.ObjectID != f.ObjectID {
		return false
	}
	return true
}

var objectTypeByCollection = map[string]string{
	"payment_intents": "payment_intent",
	"setup_intents":   "setup_intent",
	"payment_methods": "payment_method",
	"sources":         "source",
	"tokens":          "token",
}

func newRequestLogEntry(method string, path string, query map[string]string, body []byte) RequestLogEntry {
	entry := RequestLogEntry{
		ID:          "log_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24],
		Method:      strings.ToUpper(method),
		Path:        path,
		Query:       cloneStrings(query),
		RequestBody: append([]byte(nil), body...),
		CreatedAt:   time.Now().UTC(),
	}
	entry.ObjectType, entry.ObjectID = objectFromPath(entry.Method, path)
	return entry
}

// complete fills response data; on a successful POST the returned resource
// identifies the object better than the path does.
func (e *RequestLogEntry) complete(statusCode int, body []byte, object Object, err error, startedAt time.Time) {
	e.StatusCode = statusCode
	e.ResponseBody = append([]byte(nil), body...)
	e.DurationMS = time.Since(startedAt).Milliseconds()
	if err != nil {
		e.Error = err.Error()
	}
	if e.Method == "POST" && (statusCode == 200 || statusCode == 201) && object != nil {
		if id := object.ID(); id != "" {
			e.ObjectID = id
		}
		if kind := object.Kind(); kind != "" {
			e.ObjectType = kind
		}
	}
}

func objectFromPath(method string, path string) (string, string) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] != "v1" {
		return "", ""
	}
	objectType, ok := objectTypeByCollection[parts[1]]
	if !ok {
		objectType = strings.TrimSuffix(parts[1], "s")
	}
	switch {
	case len(parts) >= 3:
		return objectType, parts[2]
	case method == "POST":
		return objectType, ""
	default:
		return "", ""
	}
}

// MemoryRequestLog keeps the most recent entries in a fixed-size ring.
type MemoryRequestLog struct {
	mu       sync.Mutex
	capacity int
	entries  []RequestLogEntry
	next     int
	full     bool
}

func NewMemoryRequestLog(capacity int) *MemoryRequestLog {
	if capacity <= 0 {
		capacity = DefaultRequestLogSize
	}
	return &MemoryRequestLog{
		capacity: capacity,
		entries:  make([]RequestLogEntry, capacity),
	}
}

func (l *MemoryRequestLog) Record(_ context.Context, entry RequestLogEntry) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[l.next] = entry
	l.next = (l.next + 1) % l.capacity
	if l.next == 0 {
		l.full = true
	}
	return nil
}

// List returns matching entries newest first.
func (l *MemoryRequestLog) List(_ context.Context, filter RequestLogFilter) ([]RequestLogEntry, error) {
	if l == nil {
		return nil, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	size := l.next
	if l.full {
		size = l.capacity
	}
	out := make([]RequestLogEntry, 0, size)
	for i := 0; i < size; i++ {
		index := (l.next - 1 - i + l.capacity) % l.capacity
		entry := l.entries[index]
		if !filter.matches(entry) {
			continue
		}
		out = append(out, entry)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (l *MemoryRequestLog) Clear() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make([]RequestLogEntry, l.capacity)
	l.next = 0
	l.full = false
}

func cloneStrings(input map[string]string) map[string]string {
	if len(input) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}

var (
	_ RequestLogSink   = (*MemoryRequestLog)(nil)
	_ RequestLogReader = (*MemoryRequestLog)(nil)
)
