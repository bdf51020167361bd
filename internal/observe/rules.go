package observe

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/gobwas/glob"
)

// Messages suppressed by DefaultRules.
const (
	GlobalWarning       = "This is a global warning"
	NetworkDisconnected = "net::ERR_INTERNET_DISCONNECTED"
)

// Rule is a named predicate over an event message. Rules are evaluated in
// order and the first match suppresses the event. A nil Match never matches.
type Rule struct {
	Name  string
	Match func(msg string) bool
}

func (r Rule) matches(msg string) bool { return r.Match != nil && r.Match(msg) }

// Contains matches messages containing substr.
func Contains(name, substr string) Rule {
	return Rule{Name: name, Match: func(msg string) bool { return strings.Contains(msg, substr) }}
}

// ContainsWhen matches messages containing substr, but only while mode reports
// the run as offline. A nil mode never matches.
func ContainsWhen(name, substr string, mode Mode) Rule {
	return When(Contains(name, substr), mode)
}

// Glob matches the whole message against a gobwas/glob pattern.
func Glob(name, pattern string) (Rule, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: glob: %w", name, err)
	}
	return Rule{Name: name, Match: g.Match}, nil
}

// Regexp matches messages against a regular expression (unanchored).
func Regexp(name, expr string) (Rule, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: regexp: %w", name, err)
	}
	return Rule{Name: name, Match: re.MatchString}, nil
}

// When restricts r to runs where mode reports offline.
func When(r Rule, mode Mode) Rule {
	inner := r.Match
	return Rule{Name: r.Name, Match: func(msg string) bool {
		return mode != nil && mode.Offline() && inner != nil && inner(msg)
	}}
}

// DefaultRules returns the built-in suppression list in priority order.
func DefaultRules(mode Mode) []Rule {
	return []Rule{
		Contains("global-warning", GlobalWarning),
		ContainsWhen("offline-disconnected", NetworkDisconnected, mode),
	}
}

// Mode reports whether the current run deliberately simulates loss of network
// connectivity.
type Mode interface {
	Offline() bool
}

// ModeFunc adapts a plain func to Mode.
type ModeFunc func() bool

func (f ModeFunc) Offline() bool { return f() }

// Online is a Mode that is never offline.
var Online Mode = ModeFunc(func() bool { return false })

// Switch is a settable Mode.
type Switch struct{ v atomic.Bool }

func NewSwitch(offline bool) *Switch {
	s := &Switch{}
	s.v.Store(offline)
	return s
}

func (s *Switch) Set(offline bool) { s.v.Store(offline) }
func (s *Switch) Offline() bool    { return s.v.Load() }

// EnvMode reads key from the environment on every query; 1, true and yes
// (any case) mean offline.
func EnvMode(key string) Mode {
	return ModeFunc(func() bool {
		switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
		case "1", "true", "yes":
			return true
		}
		return false
	})
}
