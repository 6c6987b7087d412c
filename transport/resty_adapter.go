package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-localpay/core"
)

const KindResty = "resty"

// RestyAdapter sends requests through a shared resty client. It never
// retries: confirm calls are not idempotent.
type RestyAdapter struct {
	Client               *resty.Client
	DefaultHeaders       map[string]string
	MaxResponseBodyBytes int64
}

func NewRestyAdapter(client *resty.Client) *RestyAdapter {
	if client == nil {
		client = resty.New().SetTimeout(defaultClientTimeout)
	}
	client.SetRetryCount(0)
	return &RestyAdapter{
		Client:               client,
		DefaultHeaders:       map[string]string{},
		MaxResponseBodyBytes: defaultResponseBodyLimit,
	}
}

func (*RestyAdapter) Kind() string {
	return KindResty
}

func (a *RestyAdapter) Do(ctx context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	if a == nil || a.Client == nil {
		return core.TransportResponse{}, transportError(
			"transport: resty adapter requires a client",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			map[string]any{"adapter": KindResty},
		)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	prepared, err := prepare(KindResty, req, a.DefaultHeaders, a.MaxResponseBodyBytes)
	if err != nil {
		return core.TransportResponse{}, err
	}
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	startedAt := time.Now()
	request := a.Client.R().
		SetContext(ctx).
		SetHeaders(prepared.headers)
	if len(req.Body) > 0 {
		request.SetBody(req.Body)
	}
	response, err := request.Execute(prepared.method, prepared.url)
	if err != nil {
		return core.TransportResponse{}, transportWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: execute http request",
			http.StatusBadGateway,
			map[string]any{"adapter": KindResty, "method": prepared.method, "url": prepared.url},
		)
	}

	body := response.Body()
	if int64(len(body)) > prepared.limit {
		return core.TransportResponse{}, bodyLimitError(KindResty, response.StatusCode(), prepared.limit)
	}
	return core.TransportResponse{
		StatusCode: response.StatusCode(),
		Headers:    flattenHeaders(response.Header()),
		Body:       append([]byte(nil), body...),
		Metadata: map[string]any{
			"duration_ms": time.Since(startedAt).Milliseconds(),
			"kind":        KindResty,
		},
	}, nil
}

var _ core.TransportAdapter = (*RestyAdapter)(nil)
