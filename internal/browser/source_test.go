package browser

import (
	"testing"

	"github.com/chromedp/cdproto/runtime"

	"pagewatch/internal/config"
	"pagewatch/internal/observe"
)

func TestConsoleEvent_RendersArgs(t *testing.T) {
	ev := ConsoleEvent(&runtime.EventConsoleAPICalled{
		Type: runtime.APITypeError,
		Args: []*runtime.RemoteObject{
			{Type: runtime.TypeString, Value: []byte(`"Unexpected crash in widget"`)},
			{Type: runtime.TypeNumber, Value: []byte(`42`)},
			nil,
			{Type: runtime.TypeObject, Description: "Error: boom"},
			{Type: runtime.TypeNumber, UnserializableValue: "NaN"},
			{Type: runtime.TypeUndefined},
		},
	})
	if ev.Category != "error" {
		t.Fatalf("category=%q", ev.Category)
	}
	want := "Unexpected crash in widget 42 Error: boom NaN undefined"
	if ev.Message != want {
		t.Fatalf("message=%q, want %q", ev.Message, want)
	}
}

func TestExceptionEvent(t *testing.T) {
	withDesc := ExceptionEvent(&runtime.EventExceptionThrown{
		ExceptionDetails: &runtime.ExceptionDetails{
			Text:      "Uncaught",
			Exception: &runtime.RemoteObject{Type: runtime.TypeObject, Description: "TypeError: x is undefined"},
		},
	})
	if withDesc.Category != "error" || withDesc.Message != "TypeError: x is undefined" {
		t.Fatalf("event=%+v", withDesc)
	}
	textOnly := ExceptionEvent(&runtime.EventExceptionThrown{
		ExceptionDetails: &runtime.ExceptionDetails{Text: "Uncaught boom"},
	})
	if textOnly.Message != "Uncaught boom" {
		t.Fatalf("event=%+v", textOnly)
	}
	if empty := ExceptionEvent(&runtime.EventExceptionThrown{}); empty.Message != "" || empty.Category != "error" {
		t.Fatalf("event=%+v", empty)
	}
}

func TestDispatch_FeedsManager(t *testing.T) {
	src := NewSource()
	rec := observe.NewRecorder()
	oc, err := config.Default().ObserveConfig(rec, observe.Online)
	if err != nil {
		t.Fatal(err)
	}
	m, err := observe.NewWithConfig(src, oc)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Observe(t); err != nil {
		t.Fatal(err)
	}
	src.dispatch(&runtime.EventConsoleAPICalled{
		Type: runtime.APITypeError,
		Args: []*runtime.RemoteObject{{Type: runtime.TypeString, Value: []byte(`"This is a global warning"`)}},
	})
	src.dispatch(&runtime.EventConsoleAPICalled{
		Type: runtime.APITypeLog,
		Args: []*runtime.RemoteObject{{Type: runtime.TypeString, Value: []byte(`"hello"`)}},
	})
	src.dispatch(&runtime.EventExceptionThrown{
		ExceptionDetails: &runtime.ExceptionDetails{Text: "Uncaught boom"},
	})
	src.dispatch("not a devtools event")
	got := rec.Reports()
	if len(got) != 1 || got[0].Message != "Uncaught boom" {
		t.Fatalf("reports=%+v", got)
	}
}
