package gologger

import (
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// Component tags logger with a component field when it supports fields, so
// widget and engine lines can share one sink.
func Component(logger glog.Logger, component string) glog.Logger {
	logger = glog.Ensure(logger)
	component = strings.TrimSpace(component)
	if component == "" {
		return logger
	}
	if fields, ok := logger.(glog.FieldsLogger); ok {
		return fields.WithFields(map[string]any{"component": component})
	}
	return logger
}

// Named resolves a logger for "localpay.<component>" from provider, falling
// back to logger.
func Named(provider glog.LoggerProvider, logger glog.Logger, component string) glog.Logger {
	name := "localpay"
	if component = strings.TrimSpace(component); component != "" {
		name += "." + component
	}
	resolvedProvider, resolved := Resolve(name, provider, logger)
	if resolvedProvider != nil {
		if named := resolvedProvider.GetLogger(name); named != nil {
			return named
		}
	}
	return glog.Ensure(resolved)
}
