package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-localpay/core"
)

type staticAdapter struct {
	kind string
}

func (a staticAdapter) Kind() string { return a.kind }

func (a staticAdapter) Do(context.Context, core.TransportRequest) (core.TransportResponse, error) {
	return core.TransportResponse{StatusCode: 200}, nil
}

func TestRegistry_RegisterGetAndListDeterministic(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(staticAdapter{kind: "resty"}); err != nil {
		t.Fatalf("register resty adapter: %v", err)
	}
	if err := registry.Register(staticAdapter{kind: "REST"}); err != nil {
		t.Fatalf("register rest adapter: %v", err)
	}
	if _, ok := registry.Get("rest"); !ok {
		t.Fatalf("expected rest adapter to be registered")
	}

	listed := registry.List()
	if len(listed) != 2 || listed[0].Kind() != "REST" || listed[1].Kind() != "resty" {
		t.Fatalf("expected deterministic sorted order, got %#v", listed)
	}
	if err := registry.Register(staticAdapter{kind: "rest"}); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestRegistry_BuildPrefersRegisteredAdapter(t *testing.T) {
	registry := NewDefaultRegistry()
	fixed := staticAdapter{kind: KindREST}
	if err := registry.Register(fixed); err != nil {
		t.Fatalf("register: %v", err)
	}
	built, err := registry.Build("rest", nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if built != core.TransportAdapter(fixed) {
		t.Fatalf("expected registered instance, got %#v", built)
	}
	if _, err := registry.Build("graphql", nil); err == nil {
		t.Fatalf("expected unknown kind error")
	}
	if _, err := registry.Build(" ", nil); err == nil {
		t.Fatalf("expected empty kind error")
	}
}

func TestDefaultRegistry_FactoriesApplyConfig(t *testing.T) {
	registry := NewDefaultRegistry()

	built, err := registry.Build("rest", map[string]any{"timeout_ms": 1500, "max_response_body_bytes": int64(2048)})
	if err != nil {
		t.Fatalf("build rest: %v", err)
	}
	rest, ok := built.(*RESTAdapter)
	if !ok {
		t.Fatalf("expected rest adapter, got %T", built)
	}
	if rest.Client.(*http.Client).Timeout != 1500*time.Millisecond || rest.MaxResponseBodyBytes != 2048 {
		t.Fatalf("config not applied: %#v", rest)
	}

	built, err = registry.Build("resty", map[string]any{"timeout_ms": "250"})
	if err != nil {
		t.Fatalf("build resty: %v", err)
	}
	restyAdapter, ok := built.(*RestyAdapter)
	if !ok {
		t.Fatalf("expected resty adapter, got %T", built)
	}
	if restyAdapter.MaxResponseBodyBytes != defaultResponseBodyLimit {
		t.Fatalf("expected default body limit, got %d", restyAdapter.MaxResponseBodyBytes)
	}

	if _, err := registry.Build("rest", map[string]any{"timeout_ms": "soon"}); err == nil {
		t.Fatalf("expected bad timeout error")
	}
	if _, err := registry.Build("rest", map[string]any{"timeout_ms": []string{"1"}}); err == nil {
		t.Fatalf("expected unsupported type error")
	}
}

func adaptersFor(server *httptest.Server) []core.TransportAdapter {
	return []core.TransportAdapter{
		NewRESTAdapter(server.Client()),
		NewRestyAdapter(resty.NewWithClient(server.Client())),
	}
}

func TestAdapters_SendMethodHeadersQueryAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST method, got %s", r.Method)
		}
		if got := r.URL.Query().Get("success"); got != "true" {
			t.Errorf("expected query value, got %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("expected json content type, got %q", got)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read request body: %v", err)
		}
		if string(body) != `{"key":"pk_test_123"}` {
			t.Errorf("unexpected request body %q", body)
		}
		w.Header().Set("Request-Id", "req_1")
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"message":"declined"}}`))
	}))
	defer server.Close()

	for _, adapter := range adaptersFor(server) {
		t.Run(adapter.Kind(), func(t *testing.T) {
			result, err := adapter.Do(context.Background(), core.TransportRequest{
				Method:  http.MethodPost,
				URL:     server.URL + "/v1/payment_intents/pi_1/_authenticate",
				Query:   map[string]string{"success": "true"},
				Headers: map[string]string{"content-type": "application/json"},
				Body:    []byte(`{"key":"pk_test_123"}`),
				Timeout: 5 * time.Second,
			})
			if err != nil {
				t.Fatalf("do: %v", err)
			}
			if result.StatusCode != http.StatusPaymentRequired {
				t.Fatalf("non-200 must still be a response, got %d", result.StatusCode)
			}
			if string(result.Body) != `{"error":{"message":"declined"}}` {
				t.Fatalf("unexpected body %q", result.Body)
			}
			if result.Headers["Request-Id"] != "req_1" {
				t.Fatalf("expected response header, got %#v", result.Headers)
			}
			if result.Metadata["kind"] != adapter.Kind() {
				t.Fatalf("expected kind metadata")
			}
		})
	}
}

func TestAdapters_ResponseLimitReturnsRichError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("12345"))
	}))
	defer server.Close()

	for _, adapter := range adaptersFor(server) {
		t.Run(adapter.Kind(), func(t *testing.T) {
			_, err := adapter.Do(context.Background(), core.TransportRequest{URL: server.URL, MaxResponseBodyBytes: 4})
			var rich *goerrors.Error
			if !goerrors.As(err, &rich) {
				t.Fatalf("expected go-errors envelope, got %T (%v)", err, err)
			}
			if rich.Category != goerrors.CategoryExternal || rich.TextCode != core.ErrorExternalFailure {
				t.Fatalf("unexpected envelope %s/%s", rich.Category, rich.TextCode)
			}
			if rich.Code != http.StatusBadGateway {
				t.Fatalf("expected %d code, got %d", http.StatusBadGateway, rich.Code)
			}
			if rich.Metadata["response_limit_b"] != int64(4) {
				t.Fatalf("expected limit metadata, got %#v", rich.Metadata)
			}
		})
	}
}

func TestAdapters_RequestWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if len(body) != 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"pi_1"}`))
	}))
	defer server.Close()

	for _, adapter := range adaptersFor(server) {
		t.Run(adapter.Kind(), func(t *testing.T) {
			result, err := adapter.Do(context.Background(), core.TransportRequest{URL: server.URL})
			if err != nil {
				t.Fatalf("do: %v", err)
			}
			if result.StatusCode != http.StatusOK || string(result.Body) != `{"id":"pi_1"}` {
				t.Fatalf("unexpected response %d %q", result.StatusCode, result.Body)
			}
		})
	}
}

func TestAdapters_NetworkFailureIsExternal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	adapters := adaptersFor(server)
	server.Close()

	for _, adapter := range adapters {
		t.Run(adapter.Kind(), func(t *testing.T) {
			_, err := adapter.Do(context.Background(), core.TransportRequest{URL: url})
			var rich *goerrors.Error
			if !goerrors.As(err, &rich) || rich.Category != goerrors.CategoryExternal {
				t.Fatalf("expected external failure, got %v", err)
			}
		})
	}
}

func TestAdapters_MissingURLAndNilClient(t *testing.T) {
	for _, adapter := range []core.TransportAdapter{NewRESTAdapter(nil), NewRestyAdapter(nil)} {
		_, err := adapter.Do(context.Background(), core.TransportRequest{})
		var rich *goerrors.Error
		if !goerrors.As(err, &rich) || rich.Category != goerrors.CategoryBadInput || rich.TextCode != core.ErrorBadInput {
			t.Fatalf("%s: expected bad input for missing url, got %v", adapter.Kind(), err)
		}
	}

	var rest *RESTAdapter
	_, err := rest.Do(context.Background(), core.TransportRequest{URL: "http://localhost"})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.Category != goerrors.CategoryInternal || rich.TextCode != core.ErrorInternal {
		t.Fatalf("expected internal error for nil adapter, got %v", err)
	}
}

func TestNewAdapters_Defaults(t *testing.T) {
	adapter := NewRESTAdapter(nil)
	httpClient, ok := adapter.Client.(*http.Client)
	if !ok || httpClient.Timeout != defaultClientTimeout {
		t.Fatalf("expected default http client with timeout %s", defaultClientTimeout)
	}
	if adapter.MaxResponseBodyBytes != defaultResponseBodyLimit {
		t.Fatalf("expected default response body limit, got %d", adapter.MaxResponseBodyBytes)
	}
	if NewRestyAdapter(nil).Client.RetryCount != 0 {
		t.Fatalf("resty adapter must not retry")
	}
}
