package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	IntentStatusRequiresPaymentMethod = "requires_payment_method"
	IntentStatusRequiresConfirmation  = "requires_confirmation"
	IntentStatusRequiresAction        = "requires_action"
	IntentStatusSucceeded             = "succeeded"
	IntentStatusCanceled              = "canceled"
)

const SetupAuthenticationFailedMessage = "The latest attempt to set up the payment method has failed because authentication failed."

// AuthenticationChallenge is the fixed prompt shown for every simulated
// strong-authentication step.
var AuthenticationChallenge = Challenge{
	Prompt:       "3D Secure\nDo you want to confirm or cancel?",
	ConfirmLabel: "Complete authentication",
	CancelLabel:  "Fail authentication",
}

type Address struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

type BillingDetails struct {
	Name    string   `json:"name,omitempty"`
	Email   string   `json:"email,omitempty"`
	Phone   string   `json:"phone,omitempty"`
	Address *Address `json:"address,omitempty"`
}

// SetupData selects the payment method for a card setup confirmation: either
// a mounted element (PaymentMethod) or an existing payment method id.
type SetupData struct {
	PaymentMethod   ValueSource
	PaymentMethodID string
	BillingDetails  *BillingDetails
}

type SepaDebitSetupData struct {
	IBAN           string
	BillingDetails *BillingDetails
}

// setup confirmation states, kept for logging.
const (
	setupStateConfirming   = "confirming"
	setupStateReconfirming = "reconfirming"
	setupStateCanceling    = "canceling"
)

// ConfirmCardSetup runs the two-phase setup protocol: confirm, then, only if
// the backend asks for it, a challenge followed by either a second confirm or
// a cancel. There are never more than two round trips and no retries.
func (c *Client) ConfirmCardSetup(ctx context.Context, clientSecret string, data SetupData) (result Result) {
	startedAt := time.Now()
	fields := map[string]any{"intent_kind": string(IntentKindSetup)}
	defer func() {
		if recovered := recover(); recovered != nil {
			result = ErrorResult(internalError("core: confirm card setup panicked", recovered))
		}
		c.observeOperation(ctx, startedAt, "confirm_card_setup", result, fields)
	}()

	intentID, err := ParseClientSecret(IntentKindSetup, clientSecret)
	if err != nil {
		return ErrorResult(err)
	}
	fields["intent_id"] = intentID

	payload := c.setupConfirmPayload(clientSecret)
	switch {
	case data.PaymentMethod != nil:
		payload["payment_method_data"] = cardPaymentMethodData(data.PaymentMethod.Value(), data.BillingDetails)
	case strings.TrimSpace(data.PaymentMethodID) != "":
		payload["payment_method"] = strings.TrimSpace(data.PaymentMethodID)
	}

	fields["state"] = setupStateConfirming
	first, err := c.call(ctx, apiCall{path: setupIntentPath(intentID, "confirm"), payload: payload})
	if err != nil {
		return ErrorResult(err)
	}
	fields["intent_status"] = first.Status()

	switch first.Status() {
	case IntentStatusSucceeded:
		return Result{SetupIntent: first}
	case IntentStatusRequiresAction:
		return c.completeSetupChallenge(ctx, intentID, clientSecret, fields)
	default:
		return ErrorResult(newProtocolError(
			fmt.Sprintf("setup_intent has status %s", first.Status()),
			map[string]any{"intent_id": intentID},
		))
	}
}

// HandleCardSetup is the legacy name of ConfirmCardSetup.
func (c *Client) HandleCardSetup(ctx context.Context, clientSecret string, data SetupData) Result {
	return c.ConfirmCardSetup(ctx, clientSecret, data)
}

func (c *Client) completeSetupChallenge(ctx context.Context, intentID string, clientSecret string, fields map[string]any) Result {
	accepted, err := c.presentChallenge(ctx)
	if err != nil {
		return ErrorResult(err)
	}
	fields["challenge"] = challengeOutcome(accepted)

	action := "cancel"
	fields["state"] = setupStateCanceling
	if accepted {
		action = "confirm"
		fields["state"] = setupStateReconfirming
	}
	second, err := c.call(ctx, apiCall{
		path:    setupIntentPath(intentID, action),
		payload: c.setupConfirmPayload(clientSecret),
	})
	if err != nil {
		return ErrorResult(err)
	}
	fields["intent_status"] = second.Status()
	if second.Status() == IntentStatusSucceeded {
		return Result{SetupIntent: second}
	}
	return Result{Error: &APIError{Message: SetupAuthenticationFailedMessage}}
}

// ConfirmSepaDebitSetup has no challenge branch: the single confirm response
// is surfaced as-is.
func (c *Client) ConfirmSepaDebitSetup(ctx context.Context, clientSecret string, data SepaDebitSetupData) (result Result) {
	startedAt := time.Now()
	fields := map[string]any{"intent_kind": string(IntentKindSetup), "payment_method_type": "sepa_debit"}
	defer func() {
		if recovered := recover(); recovered != nil {
			result = ErrorResult(internalError("core: confirm sepa debit setup panicked", recovered))
		}
		c.observeOperation(ctx, startedAt, "confirm_sepa_debit_setup", result, fields)
	}()

	intentID, err := ParseClientSecret(IntentKindSetup, clientSecret)
	if err != nil {
		return ErrorResult(err)
	}
	fields["intent_id"] = intentID

	payload := c.setupConfirmPayload(clientSecret)
	methodData := map[string]any{
		"type":       "sepa_debit",
		"sepa_debit": map[string]any{"iban": strings.ReplaceAll(strings.TrimSpace(data.IBAN), " ", "")},
	}
	if billing := billingDetailsMap(data.BillingDetails); len(billing) > 0 {
		methodData["billing_details"] = billing
	}
	payload["payment_method_data"] = methodData

	intent, err := c.call(ctx, apiCall{path: setupIntentPath(intentID, "confirm"), payload: payload})
	if err != nil {
		return ErrorResult(err)
	}
	fields["intent_status"] = intent.Status()
	return Result{SetupIntent: intent}
}

// ConfirmCardPayment always presents the challenge before touching the
// network and lets the backend resolve the whole authentication in one call.
func (c *Client) ConfirmCardPayment(ctx context.Context, clientSecret string) (result Result) {
	startedAt := time.Now()
	fields := map[string]any{"intent_kind": string(IntentKindPayment)}
	defer func() {
		if recovered := recover(); recovered != nil {
			result = ErrorResult(internalError("core: confirm card payment panicked", recovered))
		}
		c.observeOperation(ctx, startedAt, "confirm_card_payment", result, fields)
	}()

	intentID, err := ParseClientSecret(IntentKindPayment, clientSecret)
	if err != nil {
		return ErrorResult(err)
	}
	fields["intent_id"] = intentID

	accepted, err := c.presentChallenge(ctx)
	if err != nil {
		return ErrorResult(err)
	}
	fields["challenge"] = challengeOutcome(accepted)

	intent, err := c.call(ctx, apiCall{
		path:  "/v1/payment_intents/" + intentID + "/_authenticate",
		query: map[string]string{"success": strconv.FormatBool(accepted)},
		payload: map[string]any{
			"key":           c.config.PublishableKey,
			"client_secret": clientSecret,
		},
	})
	if err != nil {
		return ErrorResult(err)
	}
	fields["intent_status"] = intent.Status()
	return Result{PaymentIntent: intent}
}

// HandleCardPayment is the legacy name of ConfirmCardPayment.
func (c *Client) HandleCardPayment(ctx context.Context, clientSecret string) Result {
	return c.ConfirmCardPayment(ctx, clientSecret)
}

func (c *Client) presentChallenge(ctx context.Context) (bool, error) {
	if c.presenter == nil {
		return false, internalError("core: challenge presenter", "not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return c.presenter.Present(ctx, AuthenticationChallenge)
}

func (c *Client) setupConfirmPayload(clientSecret string) map[string]any {
	return map[string]any{
		"key":            c.config.PublishableKey,
		"use_stripe_sdk": true,
		"client_secret":  clientSecret,
	}
}

func setupIntentPath(intentID string, action string) string {
	return "/v1/setup_intents/" + intentID + "/" + action
}

// cardPaymentMethodData splices the element snapshot into the outgoing
// payment method. The element postal code only fills the billing address when
// the caller did not supply one.
func cardPaymentMethodData(value ElementValue, billing *BillingDetails) map[string]any {
	details := billingDetailsMap(billing)
	address, _ := details["address"].(map[string]any)
	if address == nil {
		address = map[string]any{}
	}
	if postal, _ := address["postal_code"].(string); strings.TrimSpace(postal) == "" && value.PostalCode != "" {
		address["postal_code"] = value.PostalCode
	}
	if len(address) > 0 {
		details["address"] = address
	}

	data := map[string]any{
		"type": "card",
		"card": map[string]any{
			"number":    value.Card.Number,
			"exp_month": value.Card.ExpMonth,
			"exp_year":  value.Card.ExpYear,
			"cvc":       value.Card.CVC,
		},
	}
	if len(details) > 0 {
		data["billing_details"] = details
	}
	return data
}

func billingDetailsMap(billing *BillingDetails) map[string]any {
	out := map[string]any{}
	if billing == nil {
		return out
	}
	for key, value := range map[string]string{
		"name":  billing.Name,
		"email": billing.Email,
		"phone": billing.Phone,
	} {
		if strings.TrimSpace(value) != "" {
			out[key] = value
		}
	}
	if billing.Address != nil {
		address := map[string]any{}
		for key, value := range map[string]string{
			"line1":       billing.Address.Line1,
			"line2":       billing.Address.Line2,
			"city":        billing.Address.City,
			"state":       billing.Address.State,
			"postal_code": billing.Address.PostalCode,
			"country":     billing.Address.Country,
		} {
			if strings.TrimSpace(value) != "" {
				address[key] = value
			}
		}
		if len(address) > 0 {
			out["address"] = address
		}
	}
	return out
}

func challengeOutcome(accepted bool) string {
	if accepted {
		return "accepted"
	}
	return "rejected"
}
