// Package browser feeds Chrome DevTools events into an observe.Source and
// drives a headless tab for end-to-end runs.
package browser

import (
	"context"
	"strings"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	json "github.com/goccy/go-json"

	"pagewatch/internal/observe"
)

// Event names published by Source.
const (
	EventConsole   = "console"
	EventException = "exception"
)

// Source republishes console API calls and uncaught exceptions of a tab.
// Console events carry the console API type as category ("log", "warning",
// "error", ...); exceptions are always category "error".
type Source struct {
	*observe.Emitter
}

func NewSource() *Source { return &Source{Emitter: observe.NewEmitter()} }

// Attach starts forwarding events of the tab bound to ctx. chromedp can only
// drop a ListenTarget callback by cancelling ctx, so Attach is called once per
// tab and per-run subscriptions are kept on the emitter.
func (s *Source) Attach(ctx context.Context) {
	chromedp.ListenTarget(ctx, s.dispatch)
}

func (s *Source) dispatch(ev any) {
	switch e := ev.(type) {
	case *runtime.EventConsoleAPICalled:
		s.Emit(EventConsole, ConsoleEvent(e))
	case *runtime.EventExceptionThrown:
		s.Emit(EventException, ExceptionEvent(e))
	}
}

// ConsoleEvent renders a console API call the way the console prints it:
// arguments joined by a space, strings without quotes.
func ConsoleEvent(e *runtime.EventConsoleAPICalled) observe.Event {
	args := make([]string, 0, len(e.Args))
	for _, a := range e.Args {
		if a == nil {
			continue
		}
		args = append(args, formatArg(a))
	}
	return observe.Event{Category: string(e.Type), Message: strings.Join(args, " ")}
}

// ExceptionEvent uses the thrown value's description (e.g. "TypeError: x is
// undefined") and falls back to the exception text.
func ExceptionEvent(e *runtime.EventExceptionThrown) observe.Event {
	ev := observe.Event{Category: string(runtime.APITypeError)}
	d := e.ExceptionDetails
	if d == nil {
		return ev
	}
	ev.Message = d.Text
	if d.Exception != nil && d.Exception.Description != "" {
		ev.Message = d.Exception.Description
	}
	return ev
}

func formatArg(o *runtime.RemoteObject) string {
	if raw := []byte(o.Value); len(raw) > 0 {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return string(raw)
	}
	if o.UnserializableValue != "" {
		return string(o.UnserializableValue)
	}
	if o.Description != "" {
		return o.Description
	}
	return string(o.Type)
}
