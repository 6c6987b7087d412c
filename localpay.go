// Package localpay is a client-side stand-in for the hosted payments
// browser SDK. It mounts a masked card widget into a headless document,
// talks to a local mock backend and simulates strong customer
// authentication with a confirm/cancel challenge.
package localpay

import (
	"github.com/goliatone/go-localpay/adapters/gologger"
	"github.com/goliatone/go-localpay/challenge"
	"github.com/goliatone/go-localpay/core"
	"github.com/goliatone/go-localpay/dom"
	"github.com/goliatone/go-localpay/elements"
	"github.com/goliatone/go-localpay/transport"
)

type Config = core.Config

type Option = core.Option

type Client = core.Client

type Result = core.Result

type APIError = core.APIError

type Object = core.Object

type SetupData = core.SetupData
type SepaDebitSetupData = core.SepaDebitSetupData
type BillingDetails = core.BillingDetails
type Address = core.Address
type TokenData = core.TokenData
type SourceParams = core.SourceParams

type Challenge = core.Challenge
type ChallengePresenter = core.ChallengePresenter

type RequestLogEntry = core.RequestLogEntry
type RequestLogFilter = core.RequestLogFilter

var (
	WithLogger             = core.WithLogger
	WithLoggerProvider     = core.WithLoggerProvider
	WithMetricsRecorder    = core.WithMetricsRecorder
	WithErrorMapper        = core.WithErrorMapper
	WithConfigProvider     = core.WithConfigProvider
	WithOptionsResolver    = core.WithOptionsResolver
	WithTransport          = core.WithTransport
	WithTransportResolver  = core.WithTransportResolver
	WithChallengePresenter = core.WithChallengePresenter
	WithRequestLog         = core.WithRequestLog
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// NewClient builds a client whose transport comes from the default adapter
// registry unless an option supplies one.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	base := []Option{core.WithTransportResolver(transport.NewDefaultRegistry())}
	return core.NewClient(cfg, append(base, opts...)...)
}

// Session bundles a client with the document its widget and challenge
// dialog live in.
type Session struct {
	Client    *Client
	Elements  *elements.Elements
	Presenter *challenge.ModalPresenter
	Document  *dom.Document
}

// NewSession wires a client, an elements factory and a modal challenge
// presenter around doc. A nil doc gets a fresh empty document. Options that
// set their own presenter win over the modal one.
func NewSession(cfg Config, doc *dom.Document, opts ...Option) (*Session, error) {
	if doc == nil {
		doc = dom.NewDocument()
	}
	presenter := challenge.NewModalPresenter(doc)
	base := []Option{core.WithChallengePresenter(presenter)}

	client, err := NewClient(cfg, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	logger := gologger.Component(client.Logger(), "elements")
	return &Session{
		Client:    client,
		Elements:  elements.New(doc, elements.WithLogger(logger)),
		Presenter: presenter,
		Document:  doc,
	}, nil
}
