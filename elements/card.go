package elements

import (
	"sync"

	"github.com/goliatone/go-localpay/core"
	"github.com/goliatone/go-localpay/dom"
	"golang.org/x/net/html"
)

const (
	classContainer = "localpay-card"
	classInput     = "localpay-input"
	classFocused   = "localpay-focused"
)

var inputNames = map[Field]string{
	FieldNumber:     "cardnumber",
	FieldExpMonth:   "exp-month",
	FieldExpYear:    "exp-year",
	FieldCVC:        "cvc",
	FieldPostalCode: "postal",
}

var defaultPlaceholders = map[Field]string{
	FieldNumber:     "1234 1234 1234 1234",
	FieldExpMonth:   "MM",
	FieldExpYear:    "YY",
	FieldCVC:        "CVC",
	FieldPostalCode: "ZIP",
}

type cardState int

const (
	stateUnmounted cardState = iota
	stateMounted
	stateDestroyed
)

// Card is a mountable card entry widget. Its value survives unmount and
// remount; destroy is final.
type Card struct {
	mu        sync.Mutex
	owner     *Elements
	doc       *dom.Document
	options   CardOptions
	model     *CardModel
	state     cardState
	target    *html.Node
	container *html.Node
	inputs    map[Field]*html.Node
	detach    []func()
	handlers  map[string][]ChangeHandler
}

func newCard(owner *Elements, options CardOptions) *Card {
	card := &Card{
		owner:    owner,
		doc:      owner.doc,
		options:  options,
		model:    NewCardModel(),
		handlers: map[string][]ChangeHandler{},
	}
	card.model.OnChange(func(event ChangeEvent) {
		card.mu.Lock()
		handlers := append([]ChangeHandler(nil), card.handlers[dom.EventChange]...)
		card.mu.Unlock()
		for _, handler := range handlers {
			handler(event)
		}
	})
	return card
}

// Mount attaches the widget to target, a *html.Node or a CSS selector.
func (c *Card) Mount(target any) error {
	if c.Destroyed() {
		return errDestroyed()
	}
	node, err := c.resolveTarget(target)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case stateDestroyed:
		return errDestroyed()
	case stateMounted:
		if c.target == node {
			return nil
		}
		return errMountedElsewhere()
	}

	container, inputs := c.build()
	if err := c.doc.AppendChild(node, container); err != nil {
		return errInvalidTarget(err.Error())
	}
	c.container = container
	c.inputs = inputs
	c.target = node
	c.state = stateMounted
	c.bind()
	c.owner.logger.Debug("card element mounted")
	return nil
}

func (c *Card) resolveTarget(target any) (*html.Node, error) {
	switch typed := target.(type) {
	case string:
		node, err := c.doc.QuerySelector(typed)
		if err != nil {
			return nil, errInvalidTarget(err.Error())
		}
		if node == nil {
			return nil, errInvalidTarget("selector " + typed + " matched no element")
		}
		return node, nil
	case *html.Node:
		if typed == nil || typed.Type != html.ElementNode {
			return nil, errInvalidTarget("not an element node")
		}
		if !c.doc.Contains(typed) {
			return nil, errInvalidTarget("node is not attached to the document")
		}
		return typed, nil
	default:
		return nil, errInvalidTarget("expected a selector or element node")
	}
}

func (c *Card) build() (*html.Node, map[Field]*html.Node) {
	container := dom.CreateElement("div", "class", classContainer)
	inputs := make(map[Field]*html.Node, len(Fields))
	for _, field := range Fields {
		if field == FieldPostalCode && c.options.HidePostalCode {
			continue
		}
		placeholder := defaultPlaceholders[field]
		if custom, ok := c.options.Placeholders[field]; ok {
			placeholder = custom
		}
		input := dom.CreateElement("input",
			"type", "text",
			"class", classInput,
			"name", inputNames[field],
			"placeholder", placeholder,
			"value", c.model.Display(field),
		)
		container.AppendChild(input)
		inputs[field] = input
	}
	return container, inputs
}

// bind attaches masking and focus handlers; caller holds c.mu.
func (c *Card) bind() {
	container := c.container
	for field, input := range c.inputs {
		field, input := field, input
		c.detach = append(c.detach,
			c.doc.AddEventListener(input, dom.EventInput, func(event dom.Event) {
				display := c.model.Input(field, c.doc.Value(input))
				c.doc.SetValue(input, display)
				if next, ok := NextField(field, display); ok {
					if nextInput := c.input(next); nextInput != nil {
						c.doc.Focus(nextInput)
					}
				}
			}),
			c.doc.AddEventListener(input, dom.EventFocus, func(dom.Event) {
				c.doc.AddClass(container, classFocused)
			}),
			c.doc.AddEventListener(input, dom.EventBlur, func(dom.Event) {
				c.doc.RemoveClass(container, classFocused)
			}),
		)
	}
}

func (c *Card) input(field Field) *html.Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inputs[field]
}

// Input returns the mounted input node for field, or nil.
func (c *Card) Input(field Field) *html.Node {
	return c.input(field)
}

// Unmount discards the constructed inputs. It is a no-op when not mounted.
func (c *Card) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unmountLocked()
}

func (c *Card) unmountLocked() {
	if c.state != stateMounted {
		return
	}
	for _, detach := range c.detach {
		detach()
	}
	c.detach = nil
	c.doc.Remove(c.container)
	c.container = nil
	c.inputs = nil
	c.target = nil
	c.state = stateUnmounted
}

// Destroy unmounts the widget, makes it unusable and frees the factory slot.
func (c *Card) Destroy() {
	c.mu.Lock()
	if c.state == stateDestroyed {
		c.mu.Unlock()
		return
	}
	c.unmountLocked()
	c.state = stateDestroyed
	c.mu.Unlock()
	c.owner.release(c)
}

// On registers handler for event. Only "change" is ever emitted.
func (c *Card) On(event string, handler ChangeHandler) {
	if handler == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], handler)
}

func (c *Card) Value() core.ElementValue {
	return c.model.Value()
}

func (c *Card) Mounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateMounted
}

func (c *Card) Destroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateDestroyed
}

var _ core.ValueSource = (*Card)(nil)
