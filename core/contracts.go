package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type TransportRequest struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Query                map[string]string
	Body                 []byte
	Metadata             map[string]any
	Timeout              time.Duration
	MaxResponseBodyBytes int64
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

// TransportAdapter performs exactly one HTTP exchange. Implementations must not
// retry: confirm calls are not idempotent.
type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

type TransportResolver interface {
	Build(kind string, config map[string]any) (TransportAdapter, error)
}

// Challenge is the text shown to the user when the backend asks for an
// out-of-band authentication step.
type Challenge struct {
	Prompt       string
	ConfirmLabel string
	CancelLabel  string
}

// ChallengePresenter blocks until the user accepts (true) or rejects (false)
// the challenge. An error is returned only when ctx is done before a decision.
type ChallengePresenter interface {
	Present(ctx context.Context, challenge Challenge) (bool, error)
}

type ChallengePresenterFunc func(ctx context.Context, challenge Challenge) (bool, error)

func (f ChallengePresenterFunc) Present(ctx context.Context, challenge Challenge) (bool, error) {
	return f(ctx, challenge)
}

type CardValue struct {
	Number   string `json:"number"`
	ExpMonth string `json:"exp_month"`
	ExpYear  string `json:"exp_year"`
	CVC      string `json:"cvc"`
}

// ElementValue is the normalized snapshot a card element exposes after every
// keystroke.
type ElementValue struct {
	Card       CardValue `json:"card"`
	PostalCode string    `json:"postal_code"`
}

// ValueSource is anything that can hand the engine a card element snapshot;
// mounted widgets implement it.
type ValueSource interface {
	Value() ElementValue
}

type StaticValue ElementValue

func (v StaticValue) Value() ElementValue {
	return ElementValue(v)
}

type RequestLogSink interface {
	Record(ctx context.Context, entry RequestLogEntry) error
}

type RequestLogReader interface {
	List(ctx context.Context, filter RequestLogFilter) ([]RequestLogEntry, error)
}
