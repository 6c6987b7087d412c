package core

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/go-querystring/query"
)

// TokenData carries optional cardholder fields sent next to the element value.
type TokenData struct {
	Name           string
	AddressLine1   string
	AddressLine2   string
	AddressCity    string
	AddressState   string
	AddressZip     string
	AddressCountry string
	Currency       string
}

type tokenCard struct {
	Number         string `url:"number"`
	ExpMonth       string `url:"exp_month"`
	ExpYear        string `url:"exp_year"`
	CVC            string `url:"cvc"`
	Name           string `url:"name,omitempty"`
	AddressLine1   string `url:"address_line1,omitempty"`
	AddressLine2   string `url:"address_line2,omitempty"`
	AddressCity    string `url:"address_city,omitempty"`
	AddressState   string `url:"address_state,omitempty"`
	AddressZip     string `url:"address_zip,omitempty"`
	AddressCountry string `url:"address_country,omitempty"`
	Currency       string `url:"currency,omitempty"`
}

type tokenForm struct {
	Card             tokenCard `url:"card"`
	Key              string    `url:"key"`
	PaymentUserAgent string    `url:"payment_user_agent"`
}

// SourceParams are caller-supplied source fields, sent as JSON.
type SourceParams map[string]any

// CreateToken posts the element value form-encoded as card[...] fields.
func (c *Client) CreateToken(ctx context.Context, source ValueSource, data TokenData) (result Result) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() {
		if recovered := recover(); recovered != nil {
			result = ErrorResult(internalError("core: create token panicked", recovered))
		}
		c.observeOperation(ctx, startedAt, "create_token", result, fields)
	}()

	if source == nil {
		return ErrorResult(NewUsageError("core: card element is required", goerrors.CategoryBadInput))
	}
	value := source.Value()
	zip := strings.TrimSpace(data.AddressZip)
	if zip == "" {
		zip = value.PostalCode
	}

	form, err := query.Values(tokenForm{
		Card: tokenCard{
			Number:         value.Card.Number,
			ExpMonth:       value.Card.ExpMonth,
			ExpYear:        value.Card.ExpYear,
			CVC:            value.Card.CVC,
			Name:           data.Name,
			AddressLine1:   data.AddressLine1,
			AddressLine2:   data.AddressLine2,
			AddressCity:    data.AddressCity,
			AddressState:   data.AddressState,
			AddressZip:     zip,
			AddressCountry: data.AddressCountry,
			Currency:       data.Currency,
		},
		Key:              c.config.PublishableKey,
		PaymentUserAgent: c.config.PaymentUserAgent,
	})
	if err != nil {
		return ErrorResult(err)
	}

	token, err := c.call(ctx, apiCall{path: "/v1/tokens", encoding: encodingForm, form: form})
	if err != nil {
		return ErrorResult(err)
	}
	fields["token_id"] = token.ID()
	return Result{Token: token}
}

// CreateSource posts caller fields as JSON; key and payment_user_agent always
// come from the client configuration.
func (c *Client) CreateSource(ctx context.Context, params SourceParams) (result Result) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() {
		if recovered := recover(); recovered != nil {
			result = ErrorResult(internalError("core: create source panicked", recovered))
		}
		c.observeOperation(ctx, startedAt, "create_source", result, fields)
	}()

	payload := make(map[string]any, len(params)+2)
	for key, value := range params {
		payload[key] = value
	}
	payload["key"] = c.config.PublishableKey
	payload["payment_user_agent"] = c.config.PaymentUserAgent
	if kind, ok := params["type"].(string); ok {
		fields["source_type"] = kind
	}

	source, err := c.call(ctx, apiCall{path: "/v1/sources", payload: payload})
	if err != nil {
		return ErrorResult(err)
	}
	fields["source_id"] = source.ID()
	return Result{Source: source}
}
