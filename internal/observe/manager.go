package observe

import (
	"sync"

	"github.com/rs/zerolog"
)

// Manager filters events from a Source for one run at a time and guarantees
// that every subscription made during the run is removed at End.
type Manager struct {
	src    Source
	events []string
	sinks  map[string]Sink
	rules  []Rule
	log    zerolog.Logger

	onVerdict func(Event, Verdict)

	mu       sync.Mutex
	recorded []*Listener
	stopHook func()
	active   bool
	stats    Stats
}

// Stats counts outcomes since the Manager was created.
type Stats struct {
	Ignored    int
	Forwarded  int
	Suppressed map[string]int
	Leaked     int
}

// Begin starts a run: it installs the recording hook on the Source first and
// then subscribes the filtering handler to every configured event, so both the
// filter and anything subscribed later are removed by End.
//
// If a previous run never reached End, its recorded subscriptions are removed
// and a *LeakError is returned; the new run is set up regardless.
func (m *Manager) Begin() error {
	n := 0
	for _, l := range m.reset() {
		if m.src.Unsubscribe(l) {
			n++
		}
	}
	var err error
	if n > 0 {
		m.mu.Lock()
		m.stats.Leaked += n
		m.mu.Unlock()
		leakedTotal.Add(float64(n))
		m.log.Warn().Int("count", n).Msg("subscriptions leaked from previous run")
		err = &LeakError{Count: n}
	}

	stop := m.src.OnSubscribe(m.record)
	m.mu.Lock()
	m.stopHook = stop
	m.active = true
	m.mu.Unlock()

	for _, name := range m.events {
		m.src.Subscribe(name, m.dispatch)
	}
	m.log.Debug().Strs("events", m.events).Msg("observation started")
	return err
}

// End removes every subscription recorded since Begin and returns how many
// were still registered. Calling End without an active run is a no-op.
func (m *Manager) End() int {
	n := 0
	for _, l := range m.reset() {
		if m.src.Unsubscribe(l) {
			n++
		}
	}
	if n > 0 {
		m.log.Debug().Int("removed", n).Msg("observation ended")
	}
	return n
}

// reset detaches the hook and hands back the recorded subscriptions of the
// active run, leaving the Manager idle.
func (m *Manager) reset() []*Listener {
	m.mu.Lock()
	recorded := m.recorded
	stop := m.stopHook
	wasActive := m.active
	m.recorded = nil
	m.stopHook = nil
	m.active = false
	m.mu.Unlock()
	if stop != nil {
		stop()
	}
	if !wasActive {
		return nil
	}
	return recorded
}

func (m *Manager) record(l *Listener) {
	m.mu.Lock()
	m.recorded = append(m.recorded, l)
	m.mu.Unlock()
}

func (m *Manager) dispatch(ev Event) { m.Handle(ev) }

// Handle filters a single event. Untracked categories are ignored; tracked
// events matching a rule are suppressed; anything else goes to the category's
// sink exactly once with the message unchanged.
func (m *Manager) Handle(ev Event) Verdict {
	v := m.handle(ev)
	if m.onVerdict != nil {
		m.onVerdict(ev, v)
	}
	return v
}

func (m *Manager) handle(ev Event) Verdict {
	sink, ok := m.sinks[ev.Category]
	if !ok {
		m.count(Ignored, "")
		return Verdict{Outcome: Ignored}
	}
	for _, r := range m.rules {
		if r.matches(ev.Message) {
			m.count(Suppressed, r.Name)
			m.log.Debug().Str("category", ev.Category).Str("rule", r.Name).Msg("suppressed")
			return Verdict{Outcome: Suppressed, Rule: r.Name}
		}
	}
	m.count(Forwarded, "")
	sink.Report(ev.Category, ev.Message)
	return Verdict{Outcome: Forwarded}
}

func (m *Manager) count(o Outcome, rule string) {
	eventsTotal.WithLabelValues(o.String()).Inc()
	m.mu.Lock()
	defer m.mu.Unlock()
	switch o {
	case Ignored:
		m.stats.Ignored++
	case Forwarded:
		m.stats.Forwarded++
	case Suppressed:
		m.stats.Suppressed[rule]++
		suppressedTotal.WithLabelValues(rule).Inc()
	}
}

// Recorded returns the number of subscriptions the current run will remove at
// End. A non-zero value while no run should be active indicates a leak.
func (m *Manager) Recorded() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.recorded)
}

// Active reports whether Begin has been called without a matching End.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Rules returns the rule names in priority order.
func (m *Manager) Rules() []string {
	out := make([]string, len(m.rules))
	for i, r := range m.rules {
		out[i] = r.Name
	}
	return out
}

// Stats returns a copy of the outcome counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.stats
	out.Suppressed = make(map[string]int, len(m.stats.Suppressed))
	for k, v := range m.stats.Suppressed {
		out.Suppressed[k] = v
	}
	return out
}

// Cleanupper is the part of testing.TB Observe needs.
type Cleanupper interface {
	Cleanup(func())
}

// Observe begins a run and schedules End with tb.Cleanup, so teardown happens
// even when the test fails or calls FailNow.
func (m *Manager) Observe(tb Cleanupper) error {
	err := m.Begin()
	tb.Cleanup(func() { m.End() })
	return err
}
