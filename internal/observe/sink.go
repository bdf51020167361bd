package observe

import (
	"sync"

	"github.com/rs/zerolog"
)

// Sink receives forwarded events. Callers treat a Report as a failure of the
// current run.
type Sink interface {
	Report(category, message string)
}

// SinkFunc adapts a plain func to Sink.
type SinkFunc func(category, message string)

func (f SinkFunc) Report(category, message string) { f(category, message) }

// Report is one forwarded event as seen by a Recorder.
type Report struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Recorder stores reports in memory.
type Recorder struct {
	mu      sync.Mutex
	reports []Report
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Report(category, message string) {
	r.mu.Lock()
	r.reports = append(r.reports, Report{Category: category, Message: message})
	r.mu.Unlock()
}

func (r *Recorder) Reports() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Report, len(r.reports))
	copy(out, r.reports)
	return out
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports)
}

// Reset drops all stored reports and returns them.
func (r *Recorder) Reset() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.reports
	r.reports = nil
	return out
}

// Reporter is the part of testing.TB a TBSink needs.
type Reporter interface {
	Helper()
	Errorf(format string, args ...any)
}

// TBSink fails the test through Errorf with the original message text.
func TBSink(t Reporter) Sink {
	return SinkFunc(func(category, message string) {
		t.Helper()
		t.Errorf("uncaught %s: %s", category, message)
	})
}

// LogSink logs every report at error level.
func LogSink(l zerolog.Logger) Sink {
	return SinkFunc(func(category, message string) {
		l.Error().Str("category", category).Msg(message)
	})
}

// Multi reports to every non-nil sink in order.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(category, message string) {
		for _, s := range sinks {
			if s != nil {
				s.Report(category, message)
			}
		}
	})
}

// Track maps each category to sink, for use as Config.Sinks.
func Track(sink Sink, categories ...string) map[string]Sink {
	m := make(map[string]Sink, len(categories))
	for _, c := range categories {
		m[c] = sink
	}
	return m
}
