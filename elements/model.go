package elements

import (
	"sync"

	"github.com/goliatone/go-localpay/core"
)

const ElementTypeCard = "card"

// ChangeEvent is what change handlers receive after every keystroke.
type ChangeEvent struct {
	ElementType string            `json:"elementType"`
	Value       core.ElementValue `json:"value"`
	Empty       bool              `json:"empty"`
	Complete    bool              `json:"complete"`
}

type ChangeHandler func(ChangeEvent)

// CardModel keeps the displayed text of each card field and the aggregate
// value derived from it.
type CardModel struct {
	mu       sync.Mutex
	display  map[Field]string
	value    core.ElementValue
	handlers []ChangeHandler
}

func NewCardModel() *CardModel {
	return &CardModel{display: map[Field]string{}}
}

// Input normalizes raw for field, stores it, recomputes the value and runs
// the change handlers in registration order before returning the display
// text.
func (m *CardModel) Input(field Field, raw string) string {
	display := Normalize(field, raw)

	m.mu.Lock()
	m.display[field] = display
	m.value = m.computeValueLocked()
	event := m.changeEventLocked()
	handlers := append([]ChangeHandler(nil), m.handlers...)
	m.mu.Unlock()

	for _, handler := range handlers {
		handler(event)
	}
	return display
}

func (m *CardModel) Display(field Field) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.display[field]
}

func (m *CardModel) Value() core.ElementValue {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

func (m *CardModel) OnChange(handler ChangeHandler) {
	if handler == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, handler)
}

func (m *CardModel) computeValueLocked() core.ElementValue {
	return core.ElementValue{
		Card: core.CardValue{
			Number:   CardNumberValue(m.display[FieldNumber]),
			ExpMonth: m.display[FieldExpMonth],
			ExpYear:  ExpYearValue(m.display[FieldExpYear]),
			CVC:      m.display[FieldCVC],
		},
		PostalCode: m.display[FieldPostalCode],
	}
}

func (m *CardModel) changeEventLocked() ChangeEvent {
	empty := true
	for _, field := range Fields {
		if m.display[field] != "" {
			empty = false
			break
		}
	}
	card := m.value.Card
	complete := len(card.Number) == cardNumberDigits &&
		len(card.ExpMonth) == expDigits &&
		len(card.ExpYear) == 4 &&
		len(card.CVC) >= cvcAdvanceDigits
	return ChangeEvent{
		ElementType: ElementTypeCard,
		Value:       m.value,
		Empty:       empty,
		Complete:    complete,
	}
}

var _ core.ValueSource = (*CardModel)(nil)
