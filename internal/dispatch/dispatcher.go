// Package dispatch is the typed publish/subscribe channel between the
// dashboard and its chart views.
package dispatch

import (
	"fmt"

	"energydash/internal/models"
)

// Kind identifies an event type.
type Kind int

const (
	CountrySelected Kind = iota
	TypeSelected
)

func (k Kind) String() string {
	switch k {
	case CountrySelected:
		return "CountrySelected"
	case TypeSelected:
		return "TypeSelected"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Event carries the key of the clicked entity.
type Event struct {
	Kind    Kind
	Country string
	Type    models.EnergyType
}

// CountryEvent builds a CountrySelected event.
func CountryEvent(code string) Event {
	return Event{Kind: CountrySelected, Country: code}
}

// TypeEvent builds a TypeSelected event.
func TypeEvent(t models.EnergyType) Event {
	return Event{Kind: TypeSelected, Type: t}
}

// Handler processes published events
type Handler interface {
	HandleEvent(ev Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ev Event)

func (f HandlerFunc) HandleEvent(ev Event) { f(ev) }

// Dispatcher routes events to subscribers.
//
//   - Single-threaded dispatch: Publish runs every handler before returning
//   - Multiple handlers can subscribe to the same kind
//   - Handlers are invoked in registration order
type Dispatcher struct {
	handlers map[Kind][]Handler
}

// New creates an empty dispatcher
func New() *Dispatcher {
	return &Dispatcher{handlers: make(map[Kind][]Handler)}
}

// Subscribe adds h for kind.
func (d *Dispatcher) Subscribe(kind Kind, h Handler) {
	d.handlers[kind] = append(d.handlers[kind], h)
}

// Publish delivers ev to every handler of its kind and returns how many ran.
func (d *Dispatcher) Publish(ev Event) int {
	hs := d.handlers[ev.Kind]
	for _, h := range hs {
		h.HandleEvent(ev)
	}
	return len(hs)
}

// HandlerCount returns the number of handlers registered for kind
func (d *Dispatcher) HandlerCount(kind Kind) int {
	return len(d.handlers[kind])
}
