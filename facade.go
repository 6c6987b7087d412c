package localpay

import (
	"fmt"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-localpay/adapters/gocommand"
	localpaycommand "github.com/goliatone/go-localpay/command"
	"github.com/goliatone/go-localpay/core"
	localpayquery "github.com/goliatone/go-localpay/query"
)

type Commands struct {
	ConfirmCardSetup      *localpaycommand.ConfirmCardSetupCommand
	ConfirmSepaDebitSetup *localpaycommand.ConfirmSepaDebitSetupCommand
	ConfirmCardPayment    *localpaycommand.ConfirmCardPaymentCommand
	CreateToken           *localpaycommand.CreateTokenCommand
	CreateSource          *localpaycommand.CreateSourceCommand
}

type Queries struct {
	ListRequestLogs *localpayquery.ListRequestLogsQuery
	ElementValue    *localpayquery.ElementValueQuery
}

// Facade exposes the client operations as go-command handlers.
type Facade struct {
	service  localpaycommand.ConfirmationService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	requestLogReader core.RequestLogReader
}

// WithRequestLogReader overrides where ListRequestLogs reads from, e.g. a
// persistent store instead of the client's in-memory log.
func WithRequestLogReader(reader core.RequestLogReader) FacadeOption {
	return func(options *facadeOptions) {
		options.requestLogReader = reader
	}
}

func NewFacade(service localpaycommand.ConfirmationService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("localpay: confirmation service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	reader := cfg.requestLogReader
	if reader == nil {
		reader = resolveRequestLogReader(service)
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		ConfirmCardSetup:      localpaycommand.NewConfirmCardSetupCommand(service),
		ConfirmSepaDebitSetup: localpaycommand.NewConfirmSepaDebitSetupCommand(service),
		ConfirmCardPayment:    localpaycommand.NewConfirmCardPaymentCommand(service),
		CreateToken:           localpaycommand.NewCreateTokenCommand(service),
		CreateSource:          localpaycommand.NewCreateSourceCommand(service),
	}
	facade.queries = Queries{
		ListRequestLogs: localpayquery.NewListRequestLogsQuery(reader),
		ElementValue:    localpayquery.NewElementValueQuery(),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() localpaycommand.ConfirmationService {
	if f == nil {
		return nil
	}
	return f.service
}

// Subscribe attaches every command and query to a new bus over registry
// (a fresh registry when nil). On failure nothing stays attached; callers
// Close the returned bus when done.
func (f *Facade) Subscribe(registry *gocmd.Registry) (*gocommand.Bus, error) {
	if f == nil {
		return nil, fmt.Errorf("localpay: facade is nil")
	}
	bus := gocommand.NewBus(registry)
	steps := []func() error{
		func() error { return gocommand.AddCommand(bus, f.commands.ConfirmCardSetup) },
		func() error { return gocommand.AddCommand(bus, f.commands.ConfirmSepaDebitSetup) },
		func() error { return gocommand.AddCommand(bus, f.commands.ConfirmCardPayment) },
		func() error { return gocommand.AddCommand(bus, f.commands.CreateToken) },
		func() error { return gocommand.AddCommand(bus, f.commands.CreateSource) },
		func() error { return gocommand.AddQuery(bus, f.queries.ListRequestLogs) },
		func() error { return gocommand.AddQuery(bus, f.queries.ElementValue) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			bus.Close()
			return nil, err
		}
	}
	return bus, nil
}

func resolveRequestLogReader(service localpaycommand.ConfirmationService) core.RequestLogReader {
	if reader, ok := service.(core.RequestLogReader); ok {
		return reader
	}
	provider, ok := service.(interface {
		RequestLog() *core.MemoryRequestLog
	})
	if !ok {
		return nil
	}
	if log := provider.RequestLog(); log != nil {
		return log
	}
	return nil
}
