package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type encoding int

const (
	encodingJSON encoding = iota
	encodingForm
)

type apiCall struct {
	path     string
	query    map[string]string
	encoding encoding
	form     url.Values
	payload  map[string]any
}

// call performs exactly one POST and normalizes the outcome. A call succeeds
// only on HTTP 200 with a decoded body that carries no "error" field; every
// other outcome is returned as an error whose public shape is identical,
// whether it came from the network, the decoder or the backend.
func (c *Client) call(ctx context.Context, in apiCall) (Object, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	body, contentType, err := encodeCall(in)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "core: encode request body").
			WithCode(http.StatusBadRequest).
			WithTextCode(ErrorBadInput)
	}

	entry := newRequestLogEntry(http.MethodPost, in.path, in.query, body)
	startedAt := time.Now()

	response, err := c.transport.Do(ctx, TransportRequest{
		Method: http.MethodPost,
		URL:    c.url(in.path),
		Headers: map[string]string{
			"Content-Type": contentType,
			"Accept":       "application/json",
		},
		Query:                in.query,
		Body:                 body,
		Timeout:              c.timeout(),
		MaxResponseBodyBytes: c.config.Transport.MaxResponseBodyBytes,
	})
	if err != nil {
		failure := transportFailure(err, in.path)
		entry.complete(0, nil, nil, err, startedAt)
		c.recordRequest(ctx, entry)
		return nil, failure
	}

	decoded := Object{}
	if decodeErr := json.Unmarshal(response.Body, &decoded); decodeErr != nil {
		failure := transportFailure(decodeErr, in.path)
		entry.complete(response.StatusCode, response.Body, nil, decodeErr, startedAt)
		c.recordRequest(ctx, entry)
		return nil, failure
	}
	if decoded == nil {
		decoded = Object{}
	}

	if raw := decoded["error"]; raw != nil || response.StatusCode != http.StatusOK {
		apiErr := apiErrorFromBody(raw)
		if apiErr == nil {
			apiErr = &APIError{
				Message: fmt.Sprintf("request failed with status %d", response.StatusCode),
				Type:    APIErrorTypeAPI,
			}
		}
		failure := backendFailure(apiErr, response.StatusCode, in.path)
		entry.complete(response.StatusCode, response.Body, nil, apiErr, startedAt)
		c.recordRequest(ctx, entry)
		return nil, failure
	}

	entry.complete(response.StatusCode, response.Body, decoded, nil, startedAt)
	c.recordRequest(ctx, entry)
	return decoded, nil
}

func encodeCall(in apiCall) ([]byte, string, error) {
	switch in.encoding {
	case encodingForm:
		return []byte(in.form.Encode()), "application/x-www-form-urlencoded", nil
	default:
		payload := in.payload
		if payload == nil {
			payload = map[string]any{}
		}
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, "", err
		}
		return body, "application/json", nil
	}
}

func transportFailure(cause error, path string) error {
	return goerrors.Wrap(cause, goerrors.CategoryExternal, cause.Error()).
		WithCode(http.StatusBadGateway).
		WithTextCode(ErrorExternalFailure).
		WithMetadata(map[string]any{
			"path": path,
			"api_error": &APIError{
				Message: cause.Error(),
				Type:    APIErrorTypeConnection,
			},
		})
}

func backendFailure(apiErr *APIError, statusCode int, path string) error {
	code := statusCode
	if code == 0 || code == http.StatusOK {
		code = http.StatusBadGateway
	}
	return goerrors.New(apiErr.Message, goerrors.CategoryExternal).
		WithCode(code).
		WithTextCode(ErrorExternalFailure).
		WithMetadata(map[string]any{
			"path":        path,
			"status_code": statusCode,
			"api_error":   apiErr,
		})
}

// recordRequest never fails the call it describes.
func (c *Client) recordRequest(ctx context.Context, entry RequestLogEntry) {
	for _, sink := range c.requestLogs {
		if sink == nil {
			continue
		}
		if err := sink.Record(ctx, entry); err != nil {
			c.logWithLevel(ctx, "warn", "request log sink failed", map[string]any{
				"error":  err.Error(),
				"log_id": entry.ID,
				"path":   entry.Path,
			})
		}
	}
}
