package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-localpay/core"
)

var (
	_ gocmd.Commander[ConfirmCardSetupMessage]      = (*ConfirmCardSetupCommand)(nil)
	_ gocmd.Commander[ConfirmSepaDebitSetupMessage] = (*ConfirmSepaDebitSetupCommand)(nil)
	_ gocmd.Commander[ConfirmCardPaymentMessage]    = (*ConfirmCardPaymentCommand)(nil)
	_ gocmd.Commander[CreateTokenMessage]           = (*CreateTokenCommand)(nil)
	_ gocmd.Commander[CreateSourceMessage]          = (*CreateSourceCommand)(nil)

	_ ConfirmationService = (*core.Client)(nil)
)
