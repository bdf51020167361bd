package observe

import (
	"errors"
	"fmt"
)

// ErrNoSink is returned when a tracked category maps to a nil Sink.
var ErrNoSink = errors.New("observe: tracked category has no sink")

// LeakError is returned by Begin when subscriptions recorded by a previous run
// were still registered, i.e. End was never called. They have been removed by
// the time the error is returned.
type LeakError struct {
	Count int
}

func (e *LeakError) Error() string {
	return fmt.Sprintf("observe: %d subscription(s) leaked from previous run", e.Count)
}

// IsLeak reports whether err is or wraps a LeakError.
func IsLeak(err error) bool {
	var le *LeakError
	return errors.As(err, &le)
}
