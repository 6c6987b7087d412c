// Package elements implements the card entry widget: field masking, mount
// lifecycle and change events, plus the factory that owns the single card
// slot of a session.
package elements

import (
	"strings"
	"sync"

	"github.com/goliatone/go-localpay/core"
	"github.com/goliatone/go-localpay/dom"
	glog "github.com/goliatone/go-logger/glog"
)

type Option func(*Elements)

func WithLogger(logger core.Logger) Option {
	return func(e *Elements) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// CardOptions tweaks the constructed inputs.
type CardOptions struct {
	HidePostalCode bool
	Placeholders   map[Field]string
}

// Elements is the per-session widget factory.
type Elements struct {
	mu     sync.Mutex
	doc    *dom.Document
	logger core.Logger
	card   *Card
}

func New(doc *dom.Document, opts ...Option) *Elements {
	if doc == nil {
		doc = dom.NewDocument()
	}
	e := &Elements{doc: doc, logger: glog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *Elements) Document() *dom.Document {
	return e.doc
}

// Create returns a new card widget. Only "card" is supported, and only one
// may exist until it is destroyed; a failed create leaves the existing widget
// untouched.
func (e *Elements) Create(kind string, opts ...CardOptions) (*Card, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind != ElementTypeCard {
		return nil, errUnsupportedType(kind)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.card != nil {
		return nil, errAlreadyCreated(kind)
	}
	var options CardOptions
	if len(opts) > 0 {
		options = opts[0]
	}
	e.card = newCard(e, options)
	e.logger.Debug("card element created")
	return e.card, nil
}

// GetElement returns the live card widget, if any.
func (e *Elements) GetElement(kind string) *Card {
	if strings.ToLower(strings.TrimSpace(kind)) != ElementTypeCard {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.card
}

func (e *Elements) release(card *Card) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.card == card {
		e.card = nil
	}
}
