// Package dom is a small page model over golang.org/x/net/html: element
// creation, CSS selector lookup, event listeners, focus and input values.
// It gives widgets and challenge modals a real node tree to bind to outside
// a browser.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	EventInput  = "input"
	EventChange = "change"
	EventClick  = "click"
	EventFocus  = "focus"
	EventBlur   = "blur"
)

type Event struct {
	Type   string
	Target *html.Node
	Data   string
}

type Listener func(Event)

type registration struct {
	id       uint64
	listener Listener
}

// Document owns one node tree. All exported methods are safe for concurrent
// use; listeners run without the document lock held, so they may call back
// into the document.
type Document struct {
	mu        sync.Mutex
	root      *html.Node
	body      *html.Node
	focused   *html.Node
	listeners map[*html.Node]map[string][]registration
	nextID    uint64
}

// NewDocument returns an empty html/head/body document.
func NewDocument() *Document {
	doc, err := Parse(strings.NewReader("<!DOCTYPE html><html><head></head><body></body></html>"))
	if err != nil {
		panic(fmt.Sprintf("dom: parse empty document: %v", err))
	}
	return doc
}

func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse document: %w", err)
	}
	doc := &Document{
		root:      root,
		listeners: map[*html.Node]map[string][]registration{},
	}
	doc.body = findFirst(root, atom.Body)
	if doc.body == nil {
		return nil, fmt.Errorf("dom: document has no body")
	}
	return doc, nil
}

func (d *Document) Body() *html.Node {
	return d.body
}

// QuerySelector returns the first match, or nil when nothing matches. An
// unparsable selector is an error.
func (d *Document) QuerySelector(selector string) (*html.Node, error) {
	sel, err := compile(selector)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return cascadia.Query(d.root, sel), nil
}

func (d *Document) QuerySelectorAll(selector string) ([]*html.Node, error) {
	sel, err := compile(selector)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return cascadia.QueryAll(d.root, sel), nil
}

func compile(selector string) (cascadia.Sel, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return nil, fmt.Errorf("dom: selector is required")
	}
	sel, err := cascadia.Parse(selector)
	if err != nil {
		return nil, fmt.Errorf("dom: invalid selector %q: %w", selector, err)
	}
	return sel, nil
}

// CreateElement builds a detached element. Attributes are given as
// alternating key, value pairs.
func CreateElement(tag string, attrs ...string) *html.Node {
	tag = strings.ToLower(strings.TrimSpace(tag))
	node := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		setAttr(node, attrs[i], attrs[i+1])
	}
	return node
}

func CreateText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// AppendChild moves child under parent, detaching it first if needed.
func (d *Document) AppendChild(parent *html.Node, child *html.Node) error {
	if parent == nil || child == nil {
		return fmt.Errorf("dom: append requires parent and child")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for node := parent; node != nil; node = node.Parent {
		if node == child {
			return fmt.Errorf("dom: cannot append a node to its own subtree")
		}
	}
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	parent.AppendChild(child)
	return nil
}

// Remove detaches node and drops every listener registered on its subtree.
func (d *Document) Remove(node *html.Node) {
	if node == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if node.Parent != nil {
		node.Parent.RemoveChild(node)
	}
	walk(node, func(n *html.Node) {
		delete(d.listeners, n)
		if d.focused == n {
			d.focused = nil
		}
	})
}

// Contains reports whether node is attached to this document.
func (d *Document) Contains(node *html.Node) bool {
	if node == nil {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attached(node)
}

func (d *Document) attached(node *html.Node) bool {
	for current := node; current != nil; current = current.Parent {
		if current == d.root {
			return true
		}
	}
	return false
}

// AddEventListener registers listener and returns a func that removes it.
func (d *Document) AddEventListener(node *html.Node, event string, listener Listener) func() {
	if node == nil || listener == nil {
		return func() {}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	byEvent := d.listeners[node]
	if byEvent == nil {
		byEvent = map[string][]registration{}
		d.listeners[node] = byEvent
	}
	byEvent[event] = append(byEvent[event], registration{id: id, listener: listener})
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		current := d.listeners[node][event]
		for i, reg := range current {
			if reg.id == id {
				d.listeners[node][event] = append(current[:i:i], current[i+1:]...)
				return
			}
		}
	}
}

// Dispatch runs listeners on the target, then bubbles through its ancestors.
func (d *Document) Dispatch(node *html.Node, event Event) {
	if node == nil {
		return
	}
	event.Target = node
	d.mu.Lock()
	var queue []Listener
	for current := node; current != nil; current = current.Parent {
		for _, reg := range d.listeners[current][event.Type] {
			queue = append(queue, reg.listener)
		}
	}
	d.mu.Unlock()
	for _, listener := range queue {
		listener(event)
	}
}

func (d *Document) Click(node *html.Node) {
	d.Dispatch(node, Event{Type: EventClick})
}

// Focus moves focus to node, blurring the previously focused node first.
func (d *Document) Focus(node *html.Node) {
	d.mu.Lock()
	previous := d.focused
	if previous == node {
		d.mu.Unlock()
		return
	}
	d.focused = node
	d.mu.Unlock()

	if previous != nil {
		d.Dispatch(previous, Event{Type: EventBlur})
	}
	if node != nil {
		d.Dispatch(node, Event{Type: EventFocus})
	}
}

func (d *Document) Blur(node *html.Node) {
	d.mu.Lock()
	if d.focused != node || node == nil {
		d.mu.Unlock()
		return
	}
	d.focused = nil
	d.mu.Unlock()
	d.Dispatch(node, Event{Type: EventBlur})
}

func (d *Document) Focused() *html.Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.focused
}

func (d *Document) Value(node *html.Node) string {
	return d.Attr(node, "value")
}

func (d *Document) SetValue(node *html.Node, value string) {
	d.SetAttr(node, "value", value)
}

// Type simulates keystrokes: each rune is appended to the current value and
// followed by an input event, so listeners see every intermediate state.
func (d *Document) Type(node *html.Node, text string) {
	if node == nil {
		return
	}
	d.Focus(node)
	for _, r := range text {
		target := d.Focused()
		if target == nil {
			target = node
		}
		d.SetValue(target, d.Value(target)+string(r))
		d.Dispatch(target, Event{Type: EventInput, Data: string(r)})
	}
}

func (d *Document) Attr(node *html.Node, key string) string {
	if node == nil {
		return ""
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return getAttr(node, key)
}

func (d *Document) SetAttr(node *html.Node, key string, value string) {
	if node == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	setAttr(node, key, value)
}

func (d *Document) HasClass(node *html.Node, class string) bool {
	for _, item := range strings.Fields(d.Attr(node, "class")) {
		if item == class {
			return true
		}
	}
	return false
}

func (d *Document) AddClass(node *html.Node, class string) {
	if node == nil || d.HasClass(node, class) {
		return
	}
	classes := strings.Fields(d.Attr(node, "class"))
	d.SetAttr(node, "class", strings.Join(append(classes, class), " "))
}

func (d *Document) RemoveClass(node *html.Node, class string) {
	if node == nil {
		return
	}
	var kept []string
	for _, item := range strings.Fields(d.Attr(node, "class")) {
		if item != class {
			kept = append(kept, item)
		}
	}
	d.SetAttr(node, "class", strings.Join(kept, " "))
}

// Render serializes the whole document.
func (d *Document) Render() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return "", fmt.Errorf("dom: render: %w", err)
	}
	return buf.String(), nil
}

// TextContent concatenates the text nodes under node.
func (d *Document) TextContent(node *html.Node) string {
	if node == nil {
		return ""
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var b strings.Builder
	walk(node, func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
	})
	return b.String()
}

func getAttr(node *html.Node, key string) string {
	for _, attr := range node.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func setAttr(node *html.Node, key string, value string) {
	for i := range node.Attr {
		if node.Attr[i].Key == key {
			node.Attr[i].Val = value
			return
		}
	}
	node.Attr = append(node.Attr, html.Attribute{Key: key, Val: value})
}

func walk(node *html.Node, fn func(*html.Node)) {
	fn(node)
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		walk(child, fn)
	}
}

func findFirst(node *html.Node, target atom.Atom) *html.Node {
	if node.Type == html.ElementNode && node.DataAtom == target {
		return node
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if found := findFirst(child, target); found != nil {
			return found
		}
	}
	return nil
}
