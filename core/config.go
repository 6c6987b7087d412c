package core

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultBaseURL          = "http://localhost:8420"
	DefaultPaymentUserAgent = "localpay-go/v3"
	DefaultTransportKind    = "rest"
	DefaultRequestLogSize   = 1000
)

type TransportConfig struct {
	Kind                 string `koanf:"kind" mapstructure:"kind" validate:"omitempty,oneof=rest resty"`
	TimeoutMS            int    `koanf:"timeout_ms" mapstructure:"timeout_ms" validate:"gte=0"`
	MaxResponseBodyBytes int64  `koanf:"max_response_body_bytes" mapstructure:"max_response_body_bytes" validate:"gte=0"`
}

type RequestLogConfig struct {
	Disabled bool `koanf:"disabled" mapstructure:"disabled"`
	Capacity int  `koanf:"capacity" mapstructure:"capacity" validate:"gte=0"`
}

type Config struct {
	ServiceName      string           `koanf:"service_name" mapstructure:"service_name" validate:"required"`
	BaseURL          string           `koanf:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	ScriptURL        string           `koanf:"script_url" mapstructure:"script_url" validate:"omitempty,url"`
	PublishableKey   string           `koanf:"publishable_key" mapstructure:"publishable_key" validate:"required"`
	PaymentUserAgent string           `koanf:"payment_user_agent" mapstructure:"payment_user_agent"`
	Transport        TransportConfig  `koanf:"transport" mapstructure:"transport"`
	RequestLog       RequestLogConfig `koanf:"request_log" mapstructure:"request_log"`
}

var configValidator = validator.New()

func DefaultConfig() Config {
	return Config{
		ServiceName:      "localpay",
		BaseURL:          DefaultBaseURL,
		PaymentUserAgent: DefaultPaymentUserAgent,
		Transport: TransportConfig{
			Kind: DefaultTransportKind,
		},
		RequestLog: RequestLogConfig{
			Capacity: DefaultRequestLogSize,
		},
	}
}

func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("core: invalid config: %w", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(c.PublishableKey), "pk_") {
		return fmt.Errorf("core: publishable_key must be a pk_ key")
	}
	if strings.TrimSpace(c.BaseURL) == "" && strings.TrimSpace(c.ScriptURL) == "" {
		return fmt.Errorf("core: base_url or script_url is required")
	}
	return nil
}

// ResolvedBaseURL returns the backend origin. An explicit script_url wins,
// matching how the browser script locates the API it was served from.
func (c Config) ResolvedBaseURL() (string, error) {
	if script := strings.TrimSpace(c.ScriptURL); script != "" {
		return BaseURLFromScript(script)
	}
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		return "", fmt.Errorf("core: base_url is required")
	}
	return base, nil
}

// BaseURLFromScript reduces the URL a script was loaded from to its origin,
// so http://localhost:8420/js.stripe.com/v3/ yields http://localhost:8420.
func BaseURLFromScript(scriptURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(scriptURL))
	if err != nil {
		return "", fmt.Errorf("core: invalid script_url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("core: invalid script_url %q", scriptURL)
	}
	return parsed.Scheme + "://" + parsed.Host, nil
}
