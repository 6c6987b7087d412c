package transport

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-localpay/core"
)

const (
	defaultClientTimeout           = 30 * time.Second
	defaultResponseBodyLimit int64 = 1 << 20
)

// preparedRequest is a TransportRequest checked and merged with adapter
// defaults, ready for either HTTP client.
type preparedRequest struct {
	method  string
	url     string
	headers map[string]string
	limit   int64
}

func prepare(kind string, req core.TransportRequest, defaults map[string]string, adapterLimit int64) (preparedRequest, error) {
	method := strings.TrimSpace(strings.ToUpper(req.Method))
	if method == "" {
		method = http.MethodPost
	}
	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		return preparedRequest{}, transportError(
			"transport: request url is required",
			goerrors.CategoryBadInput,
			http.StatusBadRequest,
			map[string]any{"adapter": kind},
		)
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return preparedRequest{}, transportWrapError(
			err,
			goerrors.CategoryBadInput,
			"transport: invalid request url",
			http.StatusBadRequest,
			map[string]any{"adapter": kind, "url": rawURL},
		)
	}
	query := parsed.Query()
	for key, value := range req.Query {
		if key = strings.TrimSpace(key); key != "" {
			query.Set(key, strings.TrimSpace(value))
		}
	}
	parsed.RawQuery = query.Encode()

	headers := map[string]string{}
	for _, source := range []map[string]string{defaults, req.Headers} {
		for key, value := range source {
			if key = strings.TrimSpace(key); key != "" {
				headers[http.CanonicalHeaderKey(key)] = strings.TrimSpace(value)
			}
		}
	}

	return preparedRequest{
		method:  method,
		url:     parsed.String(),
		headers: headers,
		limit:   resolveResponseBodyLimit(req.MaxResponseBodyBytes, adapterLimit),
	}, nil
}

func bodyLimitError(kind string, statusCode int, limit int64) error {
	return transportError(
		"transport: response body exceeds limit",
		goerrors.CategoryExternal,
		http.StatusBadGateway,
		map[string]any{
			"adapter":          kind,
			"status_code":      statusCode,
			"response_limit_b": limit,
		},
	)
}

func flattenHeaders(headers http.Header) map[string]string {
	if len(headers) == 0 {
		return map[string]string{}
	}
	flat := make(map[string]string, len(headers))
	for key, values := range headers {
		flat[key] = strings.Join(values, ",")
	}
	return flat
}

func resolveResponseBodyLimit(requestLimit int64, adapterLimit int64) int64 {
	if requestLimit > 0 {
		return requestLimit
	}
	if adapterLimit > 0 {
		return adapterLimit
	}
	return defaultResponseBodyLimit
}
