package httpapi

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is the structured logger of the HTTP layer; nil means discard.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

func logger() *zerolog.Logger {
	if zlog == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return zlog
}

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// global default, read once
var defaultLogLevel = parseLevel(os.Getenv("PAGEWATCH_LOG_EVENTS"))

// requestLogLevel lets a runner raise logging for its own requests with
// ?log=<level> or the X-Log-Level header.
func requestLogLevel(r *http.Request) LogLevel {
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// logEvent records the verdict of one posted event at the request's level.
// Forwarded events are failures and log at LevelError and above.
func logEvent(r *http.Request, runID, category, verdict, rule string) {
	lvl := requestLogLevel(r)
	switch {
	case verdict == "forwarded" && lvl >= LevelError:
	case lvl >= LevelDebug:
	case lvl >= LevelInfo && verdict != "ignored":
	default:
		return
	}
	z := logger().Info()
	if verdict == "forwarded" {
		z = logger().Warn()
	}
	z = z.Str("run", runID).Str("category", category).Str("verdict", verdict)
	if rule != "" {
		z = z.Str("rule", rule)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		z = z.Str("request_id", rid)
	}
	z.Msg("event")
}
