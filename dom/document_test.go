package dom

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func TestDocumentQuerySelector(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<html><body><div id="card-element" class="slot"></div></body></html>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	node, err := doc.QuerySelector("#card-element")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if node == nil || doc.Attr(node, "class") != "slot" {
		t.Fatalf("expected slot div, got %#v", node)
	}

	missing, err := doc.QuerySelector("#nope")
	if err != nil || missing != nil {
		t.Fatalf("expected nil match without error, got %v %v", missing, err)
	}

	if _, err := doc.QuerySelector("div[["); err == nil {
		t.Fatalf("expected invalid selector error")
	}
	if _, err := doc.QuerySelector("  "); err == nil {
		t.Fatalf("expected empty selector error")
	}
}

func TestDocumentAppendRemoveContains(t *testing.T) {
	doc := NewDocument()
	wrapper := CreateElement("div", "class", "wrapper")
	input := CreateElement("input", "name", "cvc")
	if doc.Contains(wrapper) {
		t.Fatalf("detached node must not be contained")
	}
	if err := doc.AppendChild(wrapper, input); err != nil {
		t.Fatalf("append input: %v", err)
	}
	if err := doc.AppendChild(doc.Body(), wrapper); err != nil {
		t.Fatalf("append wrapper: %v", err)
	}
	if !doc.Contains(input) {
		t.Fatalf("expected input attached")
	}
	if err := doc.AppendChild(input, wrapper); err == nil {
		t.Fatalf("expected cycle error")
	}

	clicks := 0
	doc.AddEventListener(input, EventClick, func(Event) { clicks++ })
	doc.Remove(wrapper)
	if doc.Contains(input) {
		t.Fatalf("expected input detached after removal")
	}
	doc.Click(input)
	if clicks != 0 {
		t.Fatalf("listeners must be dropped on removal")
	}
}

func TestDocumentDispatchBubblesInOrder(t *testing.T) {
	doc := NewDocument()
	parent := CreateElement("div")
	button := CreateElement("button")
	_ = doc.AppendChild(doc.Body(), parent)
	_ = doc.AppendChild(parent, button)

	var seen []string
	doc.AddEventListener(button, EventClick, func(Event) { seen = append(seen, "button-1") })
	doc.AddEventListener(button, EventClick, func(Event) { seen = append(seen, "button-2") })
	remove := doc.AddEventListener(parent, EventClick, func(e Event) {
		if e.Target != button {
			t.Fatalf("expected target to be the button")
		}
		seen = append(seen, "parent")
	})

	doc.Click(button)
	if strings.Join(seen, ",") != "button-1,button-2,parent" {
		t.Fatalf("unexpected dispatch order %v", seen)
	}

	remove()
	seen = nil
	doc.Click(button)
	if strings.Join(seen, ",") != "button-1,button-2" {
		t.Fatalf("expected parent listener removed, got %v", seen)
	}
}

func TestDocumentFocusAndType(t *testing.T) {
	doc := NewDocument()
	first := CreateElement("input", "name", "first")
	second := CreateElement("input", "name", "second")
	_ = doc.AppendChild(doc.Body(), first)
	_ = doc.AppendChild(doc.Body(), second)

	var events []string
	track := func(name string, target *html.Node) {
		doc.AddEventListener(target, EventFocus, func(Event) { events = append(events, "focus:"+name) })
		doc.AddEventListener(target, EventBlur, func(Event) { events = append(events, "blur:"+name) })
	}
	track("first", first)
	track("second", second)

	// Move focus to the second input once the first holds two characters.
	doc.AddEventListener(first, EventInput, func(e Event) {
		if len(doc.Value(e.Target)) == 2 {
			doc.Focus(second)
		}
	})

	doc.Type(first, "abcd")
	if doc.Value(first) != "ab" || doc.Value(second) != "cd" {
		t.Fatalf("expected typing to follow focus, got %q %q", doc.Value(first), doc.Value(second))
	}
	if doc.Focused() != second {
		t.Fatalf("expected second input focused")
	}
	if strings.Join(events, ",") != "focus:first,blur:first,focus:second" {
		t.Fatalf("unexpected focus events %v", events)
	}

	doc.Blur(second)
	if doc.Focused() != nil {
		t.Fatalf("expected no focus after blur")
	}
}

func TestDocumentClassesAndRender(t *testing.T) {
	doc := NewDocument()
	div := CreateElement("div", "class", "a")
	_ = doc.AppendChild(doc.Body(), div)
	_ = doc.AppendChild(div, CreateText("hello"))

	doc.AddClass(div, "b")
	doc.AddClass(div, "b")
	if doc.Attr(div, "class") != "a b" {
		t.Fatalf("unexpected classes %q", doc.Attr(div, "class"))
	}
	doc.RemoveClass(div, "a")
	if !doc.HasClass(div, "b") || doc.HasClass(div, "a") {
		t.Fatalf("unexpected classes %q", doc.Attr(div, "class"))
	}
	if doc.TextContent(div) != "hello" {
		t.Fatalf("unexpected text %q", doc.TextContent(div))
	}
	out, err := doc.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, `<div class="b">hello</div>`) {
		t.Fatalf("unexpected render %s", out)
	}
}
