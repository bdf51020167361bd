// Package observe watches a stream of page events during a test run, drops the
// ones known to be benign and reports everything else as a failure.
//
// Files by concern:
//
//   - event.go: Event, Listener, Source and the Verdict returned by Handle.
//   - emitter.go: Emitter, the in-memory synchronous Source.
//   - rules.go: suppression rules, the degraded-network Mode and DefaultRules.
//   - sink.go: failure sinks (Recorder, TBSink, LogSink, Multi).
//   - config.go: Config and NewWithConfig defaults.
//   - manager.go: Begin / Handle / End lifecycle.
//   - errors.go: LeakError and helpers.
//   - metrics.go: prometheus counters.
//
// A Manager owns one run at a time. Begin records every subscription made on
// the Source from that point on, End removes all of them, and a Begin that
// finds leftovers from a run that never reached End reports a LeakError.
package observe
