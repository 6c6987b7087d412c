// Package challenge provides ChallengePresenter implementations: a modal
// dialog inserted into a dom.Document, a terminal prompt and fixed stubs.
package challenge

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-localpay/core"
	"github.com/goliatone/go-localpay/dom"
	"golang.org/x/net/html"
)

const (
	ActionConfirm = "confirm"
	ActionCancel  = "cancel"

	classBackdrop = "localpay-challenge-backdrop"
	classDialog   = "localpay-challenge"
)

// ModalPresenter shows the challenge as a dialog appended to the document
// body and waits for one of its two buttons to be clicked. The dialog is
// removed once a decision is made or ctx is done.
type ModalPresenter struct {
	Doc *dom.Document
	// OnShow, when set, is called with the dialog root right after it is
	// attached.
	OnShow func(dialog *html.Node)
}

func NewModalPresenter(doc *dom.Document) *ModalPresenter {
	return &ModalPresenter{Doc: doc}
}

func (p *ModalPresenter) Present(ctx context.Context, challenge core.Challenge) (bool, error) {
	if p == nil || p.Doc == nil {
		return false, fmt.Errorf("challenge: modal presenter has no document")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	decision := make(chan bool, 1)
	decide := func(accepted bool) dom.Listener {
		return func(dom.Event) {
			select {
			case decision <- accepted:
			default:
			}
		}
	}

	backdrop, dialog, confirm, cancel := buildDialog(challenge)
	p.Doc.AddEventListener(confirm, dom.EventClick, decide(true))
	p.Doc.AddEventListener(cancel, dom.EventClick, decide(false))
	if err := p.Doc.AppendChild(p.Doc.Body(), backdrop); err != nil {
		return false, fmt.Errorf("challenge: attach dialog: %w", err)
	}
	defer p.Doc.Remove(backdrop)

	if p.OnShow != nil {
		p.OnShow(dialog)
	}

	select {
	case accepted := <-decision:
		return accepted, nil
	case <-ctx.Done():
		return false, fmt.Errorf("challenge: dialog dismissed: %w", ctx.Err())
	}
}

func buildDialog(challenge core.Challenge) (backdrop, dialog, confirm, cancel *html.Node) {
	backdrop = dom.CreateElement("div", "class", classBackdrop)
	dialog = dom.CreateElement("div", "class", classDialog, "role", "dialog", "aria-modal", "true")
	backdrop.AppendChild(dialog)

	for i, line := range strings.Split(challenge.Prompt, "\n") {
		tag := "p"
		if i == 0 {
			tag = "h1"
		}
		node := dom.CreateElement(tag)
		node.AppendChild(dom.CreateText(line))
		dialog.AppendChild(node)
	}

	confirm = dom.CreateElement("button", "type", "button", "data-action", ActionConfirm)
	confirm.AppendChild(dom.CreateText(challenge.ConfirmLabel))
	cancel = dom.CreateElement("button", "type", "button", "data-action", ActionCancel)
	cancel.AppendChild(dom.CreateText(challenge.CancelLabel))
	dialog.AppendChild(confirm)
	dialog.AppendChild(cancel)
	return backdrop, dialog, confirm, cancel
}

// Button finds the confirm or cancel button of an open dialog.
func Button(doc *dom.Document, action string) (*html.Node, error) {
	return doc.QuerySelector(fmt.Sprintf(".%s button[data-action=%q]", classDialog, action))
}

var _ core.ChallengePresenter = (*ModalPresenter)(nil)
