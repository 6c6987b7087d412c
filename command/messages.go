package command

import (
	"strings"

	"github.com/goliatone/go-localpay/core"
)

const (
	TypeConfirmCardSetup      = "localpay.command.setup_intent.confirm_card"
	TypeConfirmSepaDebitSetup = "localpay.command.setup_intent.confirm_sepa_debit"
	TypeConfirmCardPayment    = "localpay.command.payment_intent.confirm_card"
	TypeCreateToken           = "localpay.command.token.create"
	TypeCreateSource          = "localpay.command.source.create"
)

type ConfirmCardSetupMessage struct {
	ClientSecret string
	Data         core.SetupData
}

func (ConfirmCardSetupMessage) Type() string { return TypeConfirmCardSetup }

func (m ConfirmCardSetupMessage) Validate() error {
	return validateSecret(core.IntentKindSetup, m.ClientSecret)
}

type ConfirmSepaDebitSetupMessage struct {
	ClientSecret string
	Data         core.SepaDebitSetupData
}

func (ConfirmSepaDebitSetupMessage) Type() string { return TypeConfirmSepaDebitSetup }

func (m ConfirmSepaDebitSetupMessage) Validate() error {
	if err := validateSecret(core.IntentKindSetup, m.ClientSecret); err != nil {
		return err
	}
	if strings.TrimSpace(m.Data.IBAN) == "" {
		return commandValidationError("iban", "iban is required")
	}
	return nil
}

type ConfirmCardPaymentMessage struct {
	ClientSecret string
}

func (ConfirmCardPaymentMessage) Type() string { return TypeConfirmCardPayment }

func (m ConfirmCardPaymentMessage) Validate() error {
	return validateSecret(core.IntentKindPayment, m.ClientSecret)
}

type CreateTokenMessage struct {
	Element core.ValueSource
	Data    core.TokenData
}

func (CreateTokenMessage) Type() string { return TypeCreateToken }

func (m CreateTokenMessage) Validate() error {
	if m.Element == nil {
		return commandValidationError("element", "card element is required")
	}
	return nil
}

type CreateSourceMessage struct {
	Params core.SourceParams
}

func (CreateSourceMessage) Type() string { return TypeCreateSource }

func (m CreateSourceMessage) Validate() error {
	kind, _ := m.Params["type"].(string)
	if strings.TrimSpace(kind) == "" {
		return commandValidationError("type", "source type is required")
	}
	return nil
}

func validateSecret(kind core.IntentKind, secret string) error {
	if strings.TrimSpace(secret) == "" {
		return commandValidationError("client_secret", "client secret is required")
	}
	if _, err := core.ParseClientSecret(kind, secret); err != nil {
		return commandFieldError("client_secret", "command: client secret does not match "+string(kind), err)
	}
	return nil
}
