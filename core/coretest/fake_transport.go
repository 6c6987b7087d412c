package coretest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/goliatone/go-localpay/core"
)

type TransportScript struct {
	Response core.TransportResponse
	Err      error
}

// JSON scripts a response with the given status and a JSON encoded body.
func JSON(status int, body any) TransportScript {
	encoded, err := json.Marshal(body)
	if err != nil {
		panic(fmt.Sprintf("coretest: encode scripted body: %v", err))
	}
	return TransportScript{Response: core.TransportResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       encoded,
	}}
}

func Raw(status int, body string) TransportScript {
	return TransportScript{Response: core.TransportResponse{StatusCode: status, Body: []byte(body)}}
}

func Fail(err error) TransportScript {
	return TransportScript{Err: err}
}

// FakeTransport replays scripts in order and records every request. Calls past
// the end of the script fail, so tests notice unexpected extra round trips.
type FakeTransport struct {
	mu       sync.Mutex
	scripts  []TransportScript
	requests []core.TransportRequest
}

func NewFakeTransport(scripts ...TransportScript) *FakeTransport {
	return &FakeTransport{scripts: append([]TransportScript(nil), scripts...)}
}

func (*FakeTransport) Kind() string {
	return "fake"
}

func (t *FakeTransport) Do(_ context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	if t == nil {
		return core.TransportResponse{}, fmt.Errorf("coretest: fake transport is nil")
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.requests = append(t.requests, cloneTransportRequest(req))
	index := len(t.requests) - 1
	if index >= len(t.scripts) {
		return core.TransportResponse{}, fmt.Errorf("coretest: unexpected request %d to %s", index+1, req.URL)
	}
	script := t.scripts[index]
	return cloneTransportResponse(script.Response), script.Err
}

func (t *FakeTransport) Requests() []core.TransportRequest {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]core.TransportRequest, 0, len(t.requests))
	for _, item := range t.requests {
		out = append(out, cloneTransportRequest(item))
	}
	return out
}

// Path returns the URL path of the n-th recorded request.
func (t *FakeTransport) Path(n int) string {
	requests := t.Requests()
	if n < 0 || n >= len(requests) {
		return ""
	}
	parsed, err := url.Parse(requests[n].URL)
	if err != nil {
		return ""
	}
	return parsed.Path
}

// JSONBody decodes the n-th recorded request body.
func (t *FakeTransport) JSONBody(n int) map[string]any {
	requests := t.Requests()
	if n < 0 || n >= len(requests) {
		return nil
	}
	out := map[string]any{}
	if err := json.Unmarshal(requests[n].Body, &out); err != nil {
		return nil
	}
	return out
}

// FormBody decodes the n-th recorded request body as url-encoded form data.
func (t *FakeTransport) FormBody(n int) url.Values {
	requests := t.Requests()
	if n < 0 || n >= len(requests) {
		return nil
	}
	values, err := url.ParseQuery(strings.TrimSpace(string(requests[n].Body)))
	if err != nil {
		return nil
	}
	return values
}

func cloneTransportRequest(in core.TransportRequest) core.TransportRequest {
	out := core.TransportRequest{
		Method:               in.Method,
		URL:                  in.URL,
		Headers:              map[string]string{},
		Query:                map[string]string{},
		Body:                 append([]byte(nil), in.Body...),
		Metadata:             map[string]any{},
		Timeout:              in.Timeout,
		MaxResponseBodyBytes: in.MaxResponseBodyBytes,
	}
	for key, value := range in.Headers {
		out.Headers[key] = value
	}
	for key, value := range in.Query {
		out.Query[key] = value
	}
	for key, value := range in.Metadata {
		out.Metadata[key] = value
	}
	return out
}

func cloneTransportResponse(in core.TransportResponse) core.TransportResponse {
	out := core.TransportResponse{
		StatusCode: in.StatusCode,
		Headers:    map[string]string{},
		Body:       append([]byte(nil), in.Body...),
		Metadata:   map[string]any{},
	}
	for key, value := range in.Headers {
		out.Headers[key] = value
	}
	for key, value := range in.Metadata {
		out.Metadata[key] = value
	}
	return out
}

var _ core.TransportAdapter = (*FakeTransport)(nil)
