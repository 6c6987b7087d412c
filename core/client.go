package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Client is one SDK session bound to a publishable key and a backend origin.
// Nothing here is process global, so independent clients never interfere.
type Client struct {
	config          Config
	baseURL         string
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorMapper     ErrorMapper
	transport       TransportAdapter
	presenter       ChallengePresenter
	requestLogs     []RequestLogSink
	memoryLog       *MemoryRequestLog
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	builder := defaultClientBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("localpay", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("localpay"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	baseURL, err := finalConfig.ResolvedBaseURL()
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	transport := builder.transport
	if transport == nil && builder.transportResolver != nil {
		transport, err = builder.transportResolver.Build(finalConfig.Transport.Kind, map[string]any{
			"timeout_ms":              finalConfig.Transport.TimeoutMS,
			"max_response_body_bytes": finalConfig.Transport.MaxResponseBodyBytes,
		})
		if err != nil {
			return nil, mapBuildError(builder.errorMapper, err)
		}
	}
	if transport == nil {
		return nil, mapBuildError(builder.errorMapper, fmt.Errorf("core: transport adapter is required"))
	}

	client := &Client{
		config:          finalConfig,
		baseURL:         baseURL,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorMapper:     builder.errorMapper,
		transport:       transport,
		presenter:       builder.presenter,
		requestLogs:     append([]RequestLogSink(nil), builder.requestLogs...),
	}
	if !finalConfig.RequestLog.Disabled {
		client.memoryLog = NewMemoryRequestLog(finalConfig.RequestLog.Capacity)
		client.requestLogs = append(client.requestLogs, client.memoryLog)
	}
	return client, nil
}

func (c *Client) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.config
}

func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL
}

// RequestLog returns the in-memory request log, or nil when disabled.
func (c *Client) RequestLog() *MemoryRequestLog {
	if c == nil {
		return nil
	}
	return c.memoryLog
}

func (c *Client) Logger() Logger {
	if c == nil || c.logger == nil {
		return glog.Nop()
	}
	return c.logger
}

// SetChallengePresenter swaps the presenter, e.g. once a page document exists.
func (c *Client) SetChallengePresenter(presenter ChallengePresenter) {
	if c == nil {
		return
	}
	c.presenter = presenter
}

func (c *Client) timeout() time.Duration {
	if c.config.Transport.TimeoutMS <= 0 {
		return 0
	}
	return time.Duration(c.config.Transport.TimeoutMS) * time.Millisecond
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func internalError(message string, cause any) *goerrors.Error {
	return newLocalpayError(
		fmt.Sprintf("%s: %v", message, cause),
		goerrors.CategoryInternal,
		ErrorInternal,
	)
}
