package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	localpay "github.com/goliatone/go-localpay"
	"github.com/goliatone/go-localpay/challenge"
	"github.com/goliatone/go-localpay/core"
	"github.com/goliatone/go-localpay/dom"
	"github.com/goliatone/go-localpay/elements"
	localpayquery "github.com/goliatone/go-localpay/query"
	sqlstore "github.com/goliatone/go-localpay/store/sql"
)

const (
	exitOK      = 0
	exitFailed  = 1
	exitUsage   = 2
	defaultPage = `<html><body><form id="payment-form"><div id="card-element"></div></form></body></html>`
)

type globals struct {
	Config         string        `help:"TOML config file layered under the flags." env:"LOCALPAY_CONFIG" type:"path"`
	PublishableKey string        `name:"publishable-key" help:"Publishable key (pk_...)." env:"LOCALPAY_PUBLISHABLE_KEY"`
	BaseURL        string        `name:"base-url" help:"Mock backend origin." env:"LOCALPAY_BASE_URL"`
	ScriptURL      string        `name:"script-url" help:"URL the browser script would be served from; its origin becomes the base URL." env:"LOCALPAY_SCRIPT_URL"`
	Transport      string        `help:"Transport adapter (rest or resty)." env:"LOCALPAY_TRANSPORT"`
	TimeoutMS      int           `name:"timeout-ms" help:"Per-request timeout in milliseconds." env:"LOCALPAY_TIMEOUT_MS"`
	DBDriver       string        `name:"db-driver" help:"Persist the request log (sqlite3 or postgres)." env:"LOCALPAY_DB_DRIVER"`
	DBDSN          string        `name:"db-dsn" help:"Request log database DSN." env:"LOCALPAY_DB_DSN"`
	Accept         bool          `help:"Complete every authentication challenge without prompting." xor:"decision"`
	Reject         bool          `help:"Fail every authentication challenge without prompting." xor:"decision"`
	Timeout        time.Duration `help:"Overall deadline for the operation." default:"2m"`
}

type cardFlags struct {
	Number   string `help:"Card number." required:""`
	ExpMonth string `name:"exp-month" help:"Expiry month (1-12)." required:""`
	ExpYear  string `name:"exp-year" help:"Expiry year (YY or YYYY)." required:""`
	CVC      string `name:"cvc" help:"Card security code." required:""`
	Postal   string `help:"Postal code."`
}

type cli struct {
	Globals globals `embed:""`

	Token     tokenCmd     `cmd:"" help:"Create a card token from typed card details."`
	Setup     setupCmd     `cmd:"" help:"Confirm a card setup intent."`
	SepaSetup sepaSetupCmd `cmd:"" name:"sepa-setup" help:"Confirm a SEPA debit setup intent."`
	Pay       payCmd       `cmd:"" help:"Confirm a card payment intent."`
	Source    sourceCmd    `cmd:"" help:"Create a source."`
	Logs      logsCmd      `cmd:"" help:"List or clear the persisted request log."`
}

type cliRuntime struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	failed bool
}

func run(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	if err := loadEnv(); err != nil {
		fmt.Fprintf(stderr, "localpay: %v\n", err)
		return exitUsage
	}

	var app cli
	exited := false
	exitCode := exitOK
	parser, err := kong.New(&app,
		kong.Name("localpay"),
		kong.Description("Drive the local payments SDK stand-in against a mock backend."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) {
			exited = true
			exitCode = code
		}),
		kong.UsageOnError(),
	)
	if err != nil {
		fmt.Fprintf(stderr, "localpay: %v\n", err)
		return exitUsage
	}
	kctx, err := parser.Parse(args)
	if exited {
		return exitCode
	}
	if err != nil {
		fmt.Fprintf(stderr, "localpay: %v\n", err)
		return exitUsage
	}

	rt := &cliRuntime{stdin: stdin, stdout: stdout, stderr: stderr}
	if err := kctx.Run(&app.Globals, rt); err != nil {
		fmt.Fprintf(stderr, "localpay: %v\n", err)
		return exitFailed
	}
	if rt.failed {
		return exitFailed
	}
	return exitOK
}

// loadEnv reads LOCALPAY_ENV_FILE (default .env) when it exists. Values
// already in the environment win.
func loadEnv() error {
	path := strings.TrimSpace(os.Getenv("LOCALPAY_ENV_FILE"))
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func (g *globals) config() localpay.Config {
	cfg := localpay.Config{
		PublishableKey: strings.TrimSpace(g.PublishableKey),
		BaseURL:        strings.TrimSpace(g.BaseURL),
		ScriptURL:      strings.TrimSpace(g.ScriptURL),
	}
	cfg.Transport.Kind = strings.TrimSpace(g.Transport)
	cfg.Transport.TimeoutMS = g.TimeoutMS
	return cfg
}

func (g *globals) presenter(rt *cliRuntime) core.ChallengePresenter {
	switch {
	case g.Accept:
		return challenge.Accept
	case g.Reject:
		return challenge.Reject
	default:
		return challenge.NewTerminalPresenter(rt.stdin, rt.stderr)
	}
}

// session builds the client around a headless page holding one card mount
// point. The returned func releases the request log database, if any.
func (g *globals) session(ctx context.Context, rt *cliRuntime) (*localpay.Session, func(), error) {
	opts := []localpay.Option{localpay.WithChallengePresenter(g.presenter(rt))}
	if path := strings.TrimSpace(g.Config); path != "" {
		opts = append(opts, localpay.WithConfigProvider(
			core.NewCfgxConfigProvider(core.TOMLConfigLoader{Path: path, Required: true}),
		))
	}

	release := func() {}
	if strings.TrimSpace(g.DBDSN) != "" {
		store, closeStore, err := g.openStore(ctx)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, localpay.WithRequestLog(store))
		release = closeStore
	}

	doc, err := dom.Parse(strings.NewReader(defaultPage))
	if err != nil {
		release()
		return nil, nil, err
	}
	session, err := localpay.NewSession(g.config(), doc, opts...)
	if err != nil {
		release()
		return nil, nil, err
	}
	return session, release, nil
}

func (g *globals) openStore(ctx context.Context) (*sqlstore.RequestLogStore, func(), error) {
	driver := strings.TrimSpace(g.DBDriver)
	if driver == "" {
		driver = "sqlite3"
	}
	client, err := sqlstore.Open(ctx, sqlstore.DatabaseConfig{Driver: driver, DSN: g.DBDSN})
	if err != nil {
		return nil, nil, err
	}
	store, err := sqlstore.NewRequestLogStoreFromPersistence(client)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return store, func() { _ = client.Close() }, nil
}

func (g *globals) context() (context.Context, context.CancelFunc) {
	if g.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), g.Timeout)
}

// typeCard mounts a card widget and types the details field by field, the
// way a shopper would.
func typeCard(session *localpay.Session, flags cardFlags, rt *cliRuntime) (*elements.Card, error) {
	card, err := session.Elements.Create(elements.ElementTypeCard)
	if err != nil {
		return nil, err
	}
	if err := card.Mount("#card-element"); err != nil {
		return nil, err
	}

	complete := false
	card.On(dom.EventChange, func(event elements.ChangeEvent) {
		complete = event.Complete
	})

	doc := session.Document
	year := strings.TrimSpace(flags.ExpYear)
	if len(year) == 4 {
		year = year[2:]
	}
	month := strings.TrimSpace(flags.ExpMonth)
	if len(month) == 1 {
		month = "0" + month
	}
	doc.Type(card.Input(elements.FieldNumber), flags.Number)
	doc.Type(card.Input(elements.FieldExpMonth), month)
	doc.Type(card.Input(elements.FieldExpYear), year)
	doc.Type(card.Input(elements.FieldCVC), flags.CVC)
	if postal := strings.TrimSpace(flags.Postal); postal != "" {
		doc.Type(card.Input(elements.FieldPostalCode), postal)
	}

	if !complete {
		fmt.Fprintln(rt.stderr, "localpay: warning: card details look incomplete")
	}
	return card, nil
}

func (rt *cliRuntime) print(result core.Result) error {
	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(rt.stdout, string(encoded)); err != nil {
		return err
	}
	if result.Failed() {
		rt.failed = true
	}
	return nil
}

type tokenCmd struct {
	cardFlags `embed:""`
	Name      string `help:"Cardholder name."`
}

func (c *tokenCmd) Run(g *globals, rt *cliRuntime) error {
	ctx, cancel := g.context()
	defer cancel()
	session, release, err := g.session(ctx, rt)
	if err != nil {
		return err
	}
	defer release()

	card, err := typeCard(session, c.cardFlags, rt)
	if err != nil {
		return err
	}
	return rt.print(session.Client.CreateToken(ctx, card, core.TokenData{Name: c.Name}))
}

type setupCmd struct {
	ClientSecret  string `arg:"" name:"client-secret" help:"Setup intent client secret (seti_..._secret_...)."`
	PaymentMethod string `name:"payment-method" help:"Existing payment method id; card flags are ignored when set."`
	Number        string `help:"Card number."`
	ExpMonth      string `name:"exp-month" help:"Expiry month."`
	ExpYear       string `name:"exp-year" help:"Expiry year."`
	CVC           string `name:"cvc" help:"Card security code."`
	Postal        string `help:"Postal code."`
	Name          string `help:"Billing name."`
	Email         string `help:"Billing email."`
}

func (c *setupCmd) Run(g *globals, rt *cliRuntime) error {
	ctx, cancel := g.context()
	defer cancel()
	session, release, err := g.session(ctx, rt)
	if err != nil {
		return err
	}
	defer release()

	data := core.SetupData{BillingDetails: billing(c.Name, c.Email)}
	if id := strings.TrimSpace(c.PaymentMethod); id != "" {
		data.PaymentMethodID = id
	} else {
		if strings.TrimSpace(c.Number) == "" {
			return fmt.Errorf("either --payment-method or --number is required")
		}
		card, err := typeCard(session, cardFlags{
			Number: c.Number, ExpMonth: c.ExpMonth, ExpYear: c.ExpYear, CVC: c.CVC, Postal: c.Postal,
		}, rt)
		if err != nil {
			return err
		}
		data.PaymentMethod = card
	}
	return rt.print(session.Client.ConfirmCardSetup(ctx, c.ClientSecret, data))
}

type sepaSetupCmd struct {
	ClientSecret string `arg:"" name:"client-secret" help:"Setup intent client secret."`
	IBAN         string `name:"iban" help:"Account IBAN." required:""`
	Name         string `help:"Account holder name."`
	Email        string `help:"Account holder email."`
}

func (c *sepaSetupCmd) Run(g *globals, rt *cliRuntime) error {
	ctx, cancel := g.context()
	defer cancel()
	session, release, err := g.session(ctx, rt)
	if err != nil {
		return err
	}
	defer release()

	return rt.print(session.Client.ConfirmSepaDebitSetup(ctx, c.ClientSecret, core.SepaDebitSetupData{
		IBAN:           c.IBAN,
		BillingDetails: billing(c.Name, c.Email),
	}))
}

type payCmd struct {
	ClientSecret string `arg:"" name:"client-secret" help:"Payment intent client secret (pi_..._secret_...)."`
}

func (c *payCmd) Run(g *globals, rt *cliRuntime) error {
	ctx, cancel := g.context()
	defer cancel()
	session, release, err := g.session(ctx, rt)
	if err != nil {
		return err
	}
	defer release()

	return rt.print(session.Client.ConfirmCardPayment(ctx, c.ClientSecret))
}

type sourceCmd struct {
	Type  string            `help:"Source type, e.g. sepa_debit." required:""`
	Param map[string]string `short:"p" help:"Extra source field as key=value; repeatable."`
}

func (c *sourceCmd) Run(g *globals, rt *cliRuntime) error {
	ctx, cancel := g.context()
	defer cancel()
	session, release, err := g.session(ctx, rt)
	if err != nil {
		return err
	}
	defer release()

	params := core.SourceParams{"type": c.Type}
	for key, value := range c.Param {
		params[key] = value
	}
	return rt.print(session.Client.CreateSource(ctx, params))
}

type logsCmd struct {
	ObjectType string        `name:"object-type" help:"Only entries for this object type."`
	ObjectID   string        `name:"object-id" help:"Only entries for this object id."`
	Limit      int           `help:"Maximum entries to print." default:"20"`
	Prune      time.Duration `help:"Delete entries older than this before listing."`
	Clear      bool          `help:"Delete every entry instead of listing."`
}

func (c *logsCmd) Run(g *globals, rt *cliRuntime) error {
	if strings.TrimSpace(g.DBDSN) == "" {
		return fmt.Errorf("--db-dsn is required to read the request log")
	}
	ctx, cancel := g.context()
	defer cancel()
	store, release, err := g.openStore(ctx)
	if err != nil {
		return err
	}
	defer release()

	if c.Clear {
		deleted, err := store.Clear(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(rt.stdout, "cleared %d entries\n", deleted)
		return nil
	}
	if c.Prune > 0 {
		deleted, err := store.Prune(ctx, c.Prune)
		if err != nil {
			return err
		}
		fmt.Fprintf(rt.stderr, "pruned %d entries\n", deleted)
	}

	entries, err := localpayquery.NewListRequestLogsQuery(store).Query(ctx, localpayquery.ListRequestLogsMessage{
		Filter: core.RequestLogFilter{ObjectType: c.ObjectType, ObjectID: c.ObjectID, Limit: c.Limit},
	})
	if err != nil {
		return err
	}
	for _, entry := range entries {
		status := fmt.Sprintf("%d", entry.StatusCode)
		if entry.Error != "" {
			status = "error: " + entry.Error
		}
		fmt.Fprintf(rt.stdout, "%s %s %s %s/%s %dms %s\n",
			entry.CreatedAt.Format(time.RFC3339), entry.ID, entry.Method,
			entry.ObjectType, entry.ObjectID, entry.DurationMS, status,
		)
	}
	return nil
}

func billing(name string, email string) *core.BillingDetails {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" && email == "" {
		return nil
	}
	return &core.BillingDetails{Name: name, Email: email}
}
