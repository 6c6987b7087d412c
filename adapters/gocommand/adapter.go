package gocommand

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
)

// Bus attaches localpay handlers to a go-command registry and to the process
// wide dispatcher. Each message type is attached at most once; Close detaches
// everything the bus attached.
type Bus struct {
	mu       sync.Mutex
	registry *command.Registry
	handlers map[string]commanddispatcher.Subscription
}

func NewBus(registry *command.Registry) *Bus {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &Bus{
		registry: registry,
		handlers: map[string]commanddispatcher.Subscription{},
	}
}

// AddCommand subscribes cmd for dispatch and records it in the registry.
func AddCommand[T any](bus *Bus, cmd command.Commander[T], runnerOpts ...runner.Option) error {
	if cmd == nil {
		return fmt.Errorf("gocommand: command is required")
	}
	var msg T
	return bus.attach(command.GetMessageType(msg), cmd, func() commanddispatcher.Subscription {
		return commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
	})
}

// AddQuery subscribes qry for dispatcher queries and records it in the registry.
func AddQuery[T any, R any](bus *Bus, qry command.Querier[T, R], runnerOpts ...runner.Option) error {
	if qry == nil {
		return fmt.Errorf("gocommand: query is required")
	}
	var msg T
	return bus.attach(command.GetMessageType(msg), qry, func() commanddispatcher.Subscription {
		return commanddispatcher.SubscribeQuery(qry, runnerOpts...)
	})
}

func (b *Bus) attach(messageType string, handler any, subscribe func() commanddispatcher.Subscription) error {
	if b == nil || b.registry == nil {
		return fmt.Errorf("gocommand: bus is not configured")
	}
	messageType = strings.TrimSpace(messageType)
	if messageType == "" {
		return fmt.Errorf("gocommand: message type is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.handlers[messageType]; exists {
		return fmt.Errorf("gocommand: %s is already attached", messageType)
	}
	subscription := subscribe()
	if err := b.registry.RegisterCommand(handler); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return fmt.Errorf("gocommand: register %s: %w", messageType, err)
	}
	b.handlers[messageType] = subscription
	return nil
}

// MessageTypes lists the attached message types in order.
func (b *Bus) MessageTypes() []string {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.handlers))
	for messageType := range b.handlers {
		out = append(out, messageType)
	}
	sort.Strings(out)
	return out
}

func (b *Bus) Close() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for messageType, subscription := range b.handlers {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		delete(b.handlers, messageType)
	}
}
