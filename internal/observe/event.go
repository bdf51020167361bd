package observe

import "fmt"

// Event is one observation delivered by a Source: a source-provided category
// (for console messages the console API type, e.g. "error") and the message text.
type Event struct {
	Category string
	Message  string
}

// Handler receives events for a subscription.
type Handler func(Event)

// Listener is a registered (event name, handler) pair. The pointer is the
// identity used for Unsubscribe.
type Listener struct {
	Name    string
	handler Handler
}

// Source is anything that delivers named events to subscribed handlers and
// announces new subscriptions to OnSubscribe hooks.
type Source interface {
	Subscribe(name string, h Handler) *Listener
	// Unsubscribe removes l and reports whether it was still registered.
	Unsubscribe(l *Listener) bool
	// OnSubscribe registers fn to be called after every new subscription.
	// The returned func removes the hook.
	OnSubscribe(fn func(*Listener)) (cancel func())
}

// Outcome classifies what Handle did with an event.
type Outcome int

const (
	Ignored Outcome = iota
	Suppressed
	Forwarded
)

func (o Outcome) String() string {
	switch o {
	case Ignored:
		return "ignored"
	case Suppressed:
		return "suppressed"
	case Forwarded:
		return "forwarded"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Verdict is the result of Handle. Rule is set only for Suppressed.
type Verdict struct {
	Outcome Outcome
	Rule    string
}
