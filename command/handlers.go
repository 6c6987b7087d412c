package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-localpay/core"
)

// ConfirmationService is the engine surface the commands drive. Payment
// failures come back inside core.Result; only invalid messages and missing
// dependencies are returned as command errors.
type ConfirmationService interface {
	ConfirmCardSetup(ctx context.Context, clientSecret string, data core.SetupData) core.Result
	ConfirmSepaDebitSetup(ctx context.Context, clientSecret string, data core.SepaDebitSetupData) core.Result
	ConfirmCardPayment(ctx context.Context, clientSecret string) core.Result
	CreateToken(ctx context.Context, element core.ValueSource, data core.TokenData) core.Result
	CreateSource(ctx context.Context, params core.SourceParams) core.Result
}

type ConfirmCardSetupCommand struct {
	service ConfirmationService
}

func NewConfirmCardSetupCommand(service ConfirmationService) *ConfirmCardSetupCommand {
	return &ConfirmCardSetupCommand{service: service}
}

func (c *ConfirmCardSetupCommand) Execute(ctx context.Context, msg ConfirmCardSetupMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: confirmation service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	storeResult(ctx, c.service.ConfirmCardSetup(ctx, msg.ClientSecret, msg.Data))
	return nil
}

type ConfirmSepaDebitSetupCommand struct {
	service ConfirmationService
}

func NewConfirmSepaDebitSetupCommand(service ConfirmationService) *ConfirmSepaDebitSetupCommand {
	return &ConfirmSepaDebitSetupCommand{service: service}
}

func (c *ConfirmSepaDebitSetupCommand) Execute(ctx context.Context, msg ConfirmSepaDebitSetupMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: confirmation service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	storeResult(ctx, c.service.ConfirmSepaDebitSetup(ctx, msg.ClientSecret, msg.Data))
	return nil
}

type ConfirmCardPaymentCommand struct {
	service ConfirmationService
}

func NewConfirmCardPaymentCommand(service ConfirmationService) *ConfirmCardPaymentCommand {
	return &ConfirmCardPaymentCommand{service: service}
}

func (c *ConfirmCardPaymentCommand) Execute(ctx context.Context, msg ConfirmCardPaymentMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: confirmation service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	storeResult(ctx, c.service.ConfirmCardPayment(ctx, msg.ClientSecret))
	return nil
}

type CreateTokenCommand struct {
	service ConfirmationService
}

func NewCreateTokenCommand(service ConfirmationService) *CreateTokenCommand {
	return &CreateTokenCommand{service: service}
}

func (c *CreateTokenCommand) Execute(ctx context.Context, msg CreateTokenMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: token service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	storeResult(ctx, c.service.CreateToken(ctx, msg.Element, msg.Data))
	return nil
}

type CreateSourceCommand struct {
	service ConfirmationService
}

func NewCreateSourceCommand(service ConfirmationService) *CreateSourceCommand {
	return &CreateSourceCommand{service: service}
}

func (c *CreateSourceCommand) Execute(ctx context.Context, msg CreateSourceMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: source service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	storeResult(ctx, c.service.CreateSource(ctx, msg.Params))
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
