package observe

import (
	"fmt"

	"github.com/rs/zerolog"
)

// DefaultEvents is the event name the Manager filters when Config.Events is empty.
var DefaultEvents = []string{"console"}

// Config encapsulates all tunables for Manager construction.
type Config struct {
	// Events are the Source event names the filtering listener subscribes to.
	Events []string
	// Sinks maps each tracked category to its failure sink. Categories absent
	// from the map are ignored.
	Sinks map[string]Sink
	// Rules are evaluated in order, first match wins. Nil means DefaultRules(Mode).
	Rules []Rule
	// Mode feeds DefaultRules when Rules is nil. Nil means Online.
	Mode   Mode
	Logger *zerolog.Logger
	// OnVerdict, if set, is called after every Handle with the event and its
	// verdict. It runs on the delivering goroutine and must not block.
	OnVerdict func(Event, Verdict)
}

// Validate reports configuration errors NewWithConfig would otherwise hide.
func (c Config) Validate() error {
	for cat, s := range c.Sinks {
		if s == nil {
			return fmt.Errorf("%w: %q", ErrNoSink, cat)
		}
	}
	return nil
}

// NewWithConfig constructs a Manager observing src.
func NewWithConfig(src Source, cfg Config) (*Manager, error) {
	if src == nil {
		return nil, fmt.Errorf("observe: nil source")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{
		src:   src,
		sinks: make(map[string]Sink, len(cfg.Sinks)),
		log:   zerolog.Nop(),
	}
	events := cfg.Events
	if len(events) == 0 {
		events = DefaultEvents
	}
	// one filter per event name
	seen := make(map[string]bool, len(events))
	for _, name := range events {
		if !seen[name] {
			seen[name] = true
			m.events = append(m.events, name)
		}
	}
	for cat, s := range cfg.Sinks {
		m.sinks[cat] = s
	}
	mode := cfg.Mode
	if mode == nil {
		mode = Online
	}
	if cfg.Rules == nil {
		m.rules = DefaultRules(mode)
	} else {
		m.rules = append([]Rule(nil), cfg.Rules...)
	}
	if cfg.Logger != nil {
		m.log = *cfg.Logger
	}
	m.onVerdict = cfg.OnVerdict
	m.stats.Suppressed = make(map[string]int)
	return m, nil
}

// New is NewWithConfig with the default rules and a single sink for the
// "error" category.
func New(src Source, sink Sink, mode Mode) (*Manager, error) {
	return NewWithConfig(src, Config{Sinks: Track(sink, "error"), Mode: mode})
}
