package core_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-localpay/core"
	"github.com/goliatone/go-localpay/core/coretest"
)

func TestConfigValidate(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.PublishableKey = "pk_test_123"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	bad := cfg
	bad.PublishableKey = "sk_test_123"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected secret key to be rejected")
	}

	bad = cfg
	bad.BaseURL = ""
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected missing origin to be rejected")
	}

	bad = cfg
	bad.Transport.Kind = "graphql"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected unknown transport kind to be rejected")
	}
}

func TestBaseURLFromScript(t *testing.T) {
	got, err := core.BaseURLFromScript("http://localhost:8420/js.stripe.com/v3/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "http://localhost:8420" {
		t.Fatalf("expected origin, got %q", got)
	}
	if _, err := core.BaseURLFromScript("/js.stripe.com/v3/"); err == nil {
		t.Fatalf("expected relative script url to fail")
	}
}

func TestNewClient_ScriptURLWins(t *testing.T) {
	client, err := core.NewClient(core.Config{
		PublishableKey: "pk_test_123",
		BaseURL:        "http://ignored.test",
		ScriptURL:      "https://payments.test:9000/js.stripe.com/v3/",
	}, core.WithTransport(coretest.NewFakeTransport()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.BaseURL() != "https://payments.test:9000" {
		t.Fatalf("unexpected base url %q", client.BaseURL())
	}
}

func TestNewClient_DefaultsApply(t *testing.T) {
	client, err := core.NewClient(core.Config{PublishableKey: "pk_test_123"}, core.WithTransport(coretest.NewFakeTransport()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	cfg := client.Config()
	if client.BaseURL() != core.DefaultBaseURL {
		t.Fatalf("expected default base url, got %q", client.BaseURL())
	}
	if cfg.PaymentUserAgent != core.DefaultPaymentUserAgent || cfg.ServiceName != "localpay" {
		t.Fatalf("defaults not applied: %#v", cfg)
	}
	if client.RequestLog() == nil {
		t.Fatalf("expected request log enabled by default")
	}
}

func TestNewClient_RejectsBadKey(t *testing.T) {
	_, err := core.NewClient(core.Config{PublishableKey: "sk_live_123"}, core.WithTransport(coretest.NewFakeTransport()))
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewClient_RequiresTransport(t *testing.T) {
	if _, err := core.NewClient(core.Config{PublishableKey: "pk_test_123"}); err == nil {
		t.Fatalf("expected missing transport error")
	}
}

func TestNewClient_TOMLLayerUnderRuntime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "localpay.toml")
	content := `
publishable_key = "pk_test_from_file"
base_url = "http://file.test:8420"

[request_log]
disabled = true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	provider := core.NewCfgxConfigProvider(core.TOMLConfigLoader{Path: path, Required: true})
	client, err := core.NewClient(core.Config{PublishableKey: "pk_test_runtime"},
		core.WithConfigProvider(provider),
		core.WithTransport(coretest.NewFakeTransport()),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	cfg := client.Config()
	if cfg.PublishableKey != "pk_test_runtime" {
		t.Fatalf("expected runtime key to win, got %q", cfg.PublishableKey)
	}
	if client.BaseURL() != "http://file.test:8420" {
		t.Fatalf("expected base url from file, got %q", client.BaseURL())
	}
	if client.RequestLog() != nil {
		t.Fatalf("expected request log disabled from file")
	}
}

func TestTOMLConfigLoader_MissingOptionalFile(t *testing.T) {
	values, err := core.TOMLConfigLoader{Path: filepath.Join(t.TempDir(), "absent.toml")}.LoadRaw(context.Background())
	if err != nil {
		t.Fatalf("expected optional file to be skipped, got %v", err)
	}
	if len(values) != 0 {
		t.Fatalf("expected no values, got %#v", values)
	}
}
