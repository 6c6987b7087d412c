package localpay_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	localpay "github.com/goliatone/go-localpay"
	"github.com/goliatone/go-localpay/challenge"
	"github.com/goliatone/go-localpay/core"
	"github.com/goliatone/go-localpay/dom"
	"github.com/goliatone/go-localpay/elements"
	"golang.org/x/net/html"
)

type recordedRequest struct {
	Path  string
	Query url.Values
	Body  string
}

type mockBackend struct {
	mu        sync.Mutex
	requests  []recordedRequest
	responses map[string][]string
}

func newMockBackend(t *testing.T, responses map[string][]string) (*mockBackend, *httptest.Server) {
	t.Helper()
	backend := &mockBackend{responses: responses}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		backend.mu.Lock()
		backend.requests = append(backend.requests, recordedRequest{Path: r.URL.Path, Query: r.URL.Query(), Body: string(body)})
		queue := backend.responses[r.URL.Path]
		var payload string
		if len(queue) > 0 {
			payload, backend.responses[r.URL.Path] = queue[0], queue[1:]
		}
		backend.mu.Unlock()
		if payload == "" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"message":"not found","type":"invalid_request_error"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(server.Close)
	return backend, server
}

func (b *mockBackend) Requests() []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedRequest(nil), b.requests...)
}

func TestNewClient_UsesDefaultTransportRegistry(t *testing.T) {
	backend, server := newMockBackend(t, map[string][]string{
		"/v1/tokens": {`{"id":"tok_1","object":"token"}`},
	})

	client, err := localpay.NewClient(localpay.Config{
		PublishableKey: "pk_test_123",
		BaseURL:        server.URL,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	result := client.CreateToken(context.Background(), core.StaticValue{
		Card: core.CardValue{Number: "4242424242424242", ExpMonth: "05", ExpYear: "2030", CVC: "123"},
	}, localpay.TokenData{Name: "Jane Doe"})
	if result.Error != nil {
		t.Fatalf("create token: %v", result.Error)
	}
	if result.Token.ID() != "tok_1" {
		t.Fatalf("unexpected token %#v", result.Token)
	}

	requests := backend.Requests()
	if len(requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(requests))
	}
	form, err := url.ParseQuery(requests[0].Body)
	if err != nil {
		t.Fatalf("parse form: %v", err)
	}
	if form.Get("card[number]") != "4242424242424242" || form.Get("card[name]") != "Jane Doe" {
		t.Fatalf("unexpected form %v", form)
	}
	if form.Get("key") != "pk_test_123" {
		t.Fatalf("expected publishable key, got %q", form.Get("key"))
	}
}

func TestNewClient_RestyTransportKind(t *testing.T) {
	_, server := newMockBackend(t, map[string][]string{
		"/v1/sources": {`{"id":"src_1","object":"source","type":"sepa_debit"}`},
	})

	cfg := localpay.Config{PublishableKey: "pk_test_123", BaseURL: server.URL}
	cfg.Transport.Kind = "resty"
	client, err := localpay.NewClient(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	result := client.CreateSource(context.Background(), localpay.SourceParams{"type": "sepa_debit"})
	if result.Error != nil {
		t.Fatalf("create source: %v", result.Error)
	}
	if result.Source.ID() != "src_1" {
		t.Fatalf("unexpected source %#v", result.Source)
	}
}

func TestNewSession_EndToEndCardSetupWithChallenge(t *testing.T) {
	backend, server := newMockBackend(t, map[string][]string{
		"/v1/setup_intents/seti_1/confirm": {
			`{"id":"seti_1","object":"setup_intent","status":"requires_action"}`,
			`{"id":"seti_1","object":"setup_intent","status":"succeeded","payment_method":"pm_1"}`,
		},
	})

	doc, err := dom.Parse(strings.NewReader(`<html><body><form><div id="card-element"></div></form></body></html>`))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	session, err := localpay.NewSession(localpay.Config{
		PublishableKey: "pk_test_123",
		BaseURL:        server.URL,
	}, doc)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	var prompts []string
	session.Presenter.OnShow = func(dialog *html.Node) {
		prompts = append(prompts, doc.TextContent(dialog))
		button, err := challenge.Button(doc, challenge.ActionConfirm)
		if err != nil || button == nil {
			t.Errorf("expected confirm button: %v", err)
			return
		}
		doc.Click(button)
	}

	card, err := session.Elements.Create(elements.ElementTypeCard)
	if err != nil {
		t.Fatalf("create card: %v", err)
	}
	if err := card.Mount("#card-element"); err != nil {
		t.Fatalf("mount card: %v", err)
	}
	doc.Type(card.Input(elements.FieldNumber), "4242424242424242")
	doc.Type(doc.Focused(), "053012")
	doc.Type(doc.Focused(), "3")
	doc.Type(card.Input(elements.FieldPostalCode), "75001")

	result := session.Client.ConfirmCardSetup(context.Background(), "seti_1_secret_abc", localpay.SetupData{
		PaymentMethod: card,
	})
	if result.Error != nil {
		t.Fatalf("confirm card setup: %v", result.Error)
	}
	if result.SetupIntent.Status() != core.IntentStatusSucceeded {
		t.Fatalf("expected succeeded setup intent, got %#v", result.SetupIntent)
	}
	if len(prompts) != 1 || !strings.Contains(prompts[0], "3D Secure") {
		t.Fatalf("expected one challenge prompt, got %#v", prompts)
	}
	if dialog, _ := doc.QuerySelector(".localpay-challenge"); dialog != nil {
		t.Fatalf("expected challenge dialog to be removed")
	}

	requests := backend.Requests()
	if len(requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(requests))
	}
	var first map[string]any
	if err := json.Unmarshal([]byte(requests[0].Body), &first); err != nil {
		t.Fatalf("decode first body: %v", err)
	}
	methodData, _ := first["payment_method_data"].(map[string]any)
	cardData, _ := methodData["card"].(map[string]any)
	if cardData["number"] != "4242424242424242" || cardData["exp_month"] != "05" || cardData["exp_year"] != "2030" || cardData["cvc"] != "123" {
		t.Fatalf("unexpected card payload %#v", cardData)
	}
	billing, _ := methodData["billing_details"].(map[string]any)
	address, _ := billing["address"].(map[string]any)
	if address["postal_code"] != "75001" {
		t.Fatalf("expected element postal code in billing address, got %#v", billing)
	}

	var second map[string]any
	if err := json.Unmarshal([]byte(requests[1].Body), &second); err != nil {
		t.Fatalf("decode second body: %v", err)
	}
	if _, ok := second["payment_method_data"]; ok {
		t.Fatalf("expected second confirm without payment method data")
	}

	logged, err := session.Client.RequestLog().List(context.Background(), core.RequestLogFilter{ObjectID: "seti_1"})
	if err != nil {
		t.Fatalf("list request log: %v", err)
	}
	if len(logged) != 2 {
		t.Fatalf("expected 2 logged requests, got %d", len(logged))
	}
}

func TestNewSession_OptionPresenterWins(t *testing.T) {
	backend, server := newMockBackend(t, map[string][]string{
		"/v1/payment_intents/pi_7/_authenticate": {`{"id":"pi_7","object":"payment_intent","status":"requires_payment_method"}`},
	})

	session, err := localpay.NewSession(localpay.Config{
		PublishableKey: "pk_test_123",
		BaseURL:        server.URL,
	}, nil, localpay.WithChallengePresenter(challenge.Reject))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if session.Document == nil || session.Elements.Document() != session.Document {
		t.Fatalf("expected session to own a fresh document")
	}

	result := session.Client.ConfirmCardPayment(context.Background(), "pi_7_secret_xyz")
	if result.Error != nil {
		t.Fatalf("confirm card payment: %v", result.Error)
	}
	if result.PaymentIntent.Status() != core.IntentStatusRequiresPaymentMethod {
		t.Fatalf("unexpected payment intent %#v", result.PaymentIntent)
	}
	requests := backend.Requests()
	if len(requests) != 1 || requests[0].Query.Get("success") != "false" {
		t.Fatalf("expected one rejected authenticate call, got %#v", requests)
	}
}

func TestNewSession_InvalidConfig(t *testing.T) {
	if _, err := localpay.NewSession(localpay.Config{PublishableKey: "sk_live_nope"}, nil); err == nil {
		t.Fatalf("expected invalid publishable key error")
	}
}
