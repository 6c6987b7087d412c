package localpay

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	localpaycommand "github.com/goliatone/go-localpay/command"
	"github.com/goliatone/go-localpay/core"
	"github.com/goliatone/go-localpay/transport"
)

// TransportPack groups prebuilt adapters a host wants preferred over the
// registry factories, e.g. a rest adapter over an instrumented http.Client.
type TransportPack struct {
	Name     string
	Adapters []core.TransportAdapter
}

type CommandBundleFactory func(service localpaycommand.ConfirmationService) (any, error)

type ExtensionHooks struct {
	mu sync.RWMutex

	transportPacks map[string]TransportPack
	requestLogs    map[string]core.RequestLogSink
	bundles        map[string]CommandBundleFactory
}

func NewExtensionHooks() *ExtensionHooks {
	return &ExtensionHooks{
		transportPacks: map[string]TransportPack{},
		requestLogs:    map[string]core.RequestLogSink{},
		bundles:        map[string]CommandBundleFactory{},
	}
}

func (h *ExtensionHooks) RegisterTransportPack(pack TransportPack) error {
	if h == nil {
		return fmt.Errorf("localpay: extension hooks are nil")
	}
	name := strings.TrimSpace(pack.Name)
	if name == "" {
		return fmt.Errorf("localpay: transport pack name is required")
	}
	if len(pack.Adapters) == 0 {
		return fmt.Errorf("localpay: transport pack %q has no adapters", name)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.transportPacks[name]; exists {
		return fmt.Errorf("localpay: transport pack %q already registered", name)
	}
	h.transportPacks[name] = TransportPack{
		Name:     name,
		Adapters: append([]core.TransportAdapter(nil), pack.Adapters...),
	}
	return nil
}

func (h *ExtensionHooks) RegisterRequestLogSink(name string, sink core.RequestLogSink) error {
	if h == nil {
		return fmt.Errorf("localpay: extension hooks are nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("localpay: request log sink name is required")
	}
	if sink == nil {
		return fmt.Errorf("localpay: request log sink %q is nil", name)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.requestLogs[name]; exists {
		return fmt.Errorf("localpay: request log sink %q already registered", name)
	}
	h.requestLogs[name] = sink
	return nil
}

func (h *ExtensionHooks) RegisterCommandBundle(name string, factory CommandBundleFactory) error {
	if h == nil {
		return fmt.Errorf("localpay: extension hooks are nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("localpay: command bundle name is required")
	}
	if factory == nil {
		return fmt.Errorf("localpay: command bundle %q factory is required", name)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.bundles[name]; exists {
		return fmt.Errorf("localpay: command bundle %q already registered", name)
	}
	h.bundles[name] = factory
	return nil
}

// ApplyTransportPacks registers every pack adapter in name order.
func (h *ExtensionHooks) ApplyTransportPacks(registry *transport.Registry) error {
	if h == nil {
		return nil
	}
	if registry == nil {
		return fmt.Errorf("localpay: transport registry is required")
	}
	for _, pack := range h.TransportPacks() {
		for _, adapter := range pack.Adapters {
			if adapter == nil {
				return fmt.Errorf("localpay: transport pack %q contains nil adapter", pack.Name)
			}
			if err := registry.Register(adapter); err != nil {
				return err
			}
		}
	}
	return nil
}

// Options turns the hooks into client options: a registry holding the pack
// adapters plus one WithRequestLog per sink.
func (h *ExtensionHooks) Options() ([]Option, error) {
	if h == nil {
		return nil, nil
	}
	registry := transport.NewDefaultRegistry()
	if err := h.ApplyTransportPacks(registry); err != nil {
		return nil, err
	}
	out := []Option{core.WithTransportResolver(registry)}

	h.mu.RLock()
	names := make([]string, 0, len(h.requestLogs))
	for name := range h.requestLogs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, core.WithRequestLog(h.requestLogs[name]))
	}
	h.mu.RUnlock()
	return out, nil
}

func (h *ExtensionHooks) BuildCommandBundles(service localpaycommand.ConfirmationService) (map[string]any, error) {
	if h == nil {
		return map[string]any{}, nil
	}
	if service == nil {
		return nil, fmt.Errorf("localpay: confirmation service is required")
	}

	h.mu.RLock()
	names := make([]string, 0, len(h.bundles))
	factories := make(map[string]CommandBundleFactory, len(h.bundles))
	for name, factory := range h.bundles {
		names = append(names, name)
		factories[name] = factory
	}
	h.mu.RUnlock()
	sort.Strings(names)

	result := make(map[string]any, len(names))
	for _, name := range names {
		bundle, err := factories[name](service)
		if err != nil {
			return nil, err
		}
		result[name] = bundle
	}
	return result, nil
}

func (h *ExtensionHooks) TransportPacks() []TransportPack {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.transportPacks))
	for name := range h.transportPacks {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]TransportPack, 0, len(names))
	for _, name := range names {
		pack := h.transportPacks[name]
		out = append(out, TransportPack{
			Name:     pack.Name,
			Adapters: append([]core.TransportAdapter(nil), pack.Adapters...),
		})
	}
	return out
}

func (h *ExtensionHooks) BundleNames() []string {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.bundles))
	for name := range h.bundles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
