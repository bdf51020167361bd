package testctl

import (
	"fmt"
	"io"
	"os"
	"time"

	"pagewatch/internal/browser"
	"pagewatch/internal/config"
	"pagewatch/internal/observe"
)

// WatchOptions configures the watch command.
type WatchOptions struct {
	URL     string
	For     time.Duration
	Offline bool
	Headful bool
}

// ErrUncaught is returned by watch when the page produced forwarded events.
type ErrUncaught struct{ Count int }

func (e *ErrUncaught) Error() string {
	return fmt.Sprintf("%d uncaught event(s)", e.Count)
}

// watch opens the page, observes it for the configured duration and reports
// every event no rule suppressed.
func watch(cfg *Config, opts WatchOptions) error {
	conf, err := config.LoadOrDefault(cfg.ConfigPath)
	if err != nil {
		return err
	}
	if opts.For <= 0 {
		opts.For = 10 * time.Second
	}
	l := log
	sess, err := browser.NewSession(browser.Options{
		Headless: !opts.Headful,
		Timeout:  opts.For + time.Minute,
		Offline:  opts.Offline || conf.Offline,
		Logger:   &l,
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	rec := observe.NewRecorder()
	mgr, err := sess.Manager(conf, observe.Multi(rec, observe.LogSink(l)))
	if err != nil {
		return err
	}
	if err := mgr.Begin(); err != nil {
		return err
	}
	defer mgr.End()

	info("[watch] %s for %s (offline=%v)", opts.URL, opts.For, sess.Mode().Offline())
	if err := sess.Navigate(opts.URL); err != nil {
		return err
	}
	select {
	case <-time.After(opts.For):
	case <-sess.Context().Done():
	}
	removed := mgr.End()
	st := mgr.Stats()
	debug("[watch] removed %d subscription(s); ignored=%d suppressed=%v", removed, st.Ignored, st.Suppressed)
	return reportUncaught(os.Stdout, rec.Reports())
}

// reportUncaught prints one line per report and fails when there are any.
func reportUncaught(w io.Writer, reports []observe.Report) error {
	for _, r := range reports {
		fmt.Fprintf(w, "uncaught %s: %s\n", r.Category, r.Message)
	}
	if len(reports) > 0 {
		return &ErrUncaught{Count: len(reports)}
	}
	return nil
}

// printRules writes the effective rules in priority order.
func printRules(cfg *Config, w io.Writer) error {
	conf, err := config.LoadOrDefault(cfg.ConfigPath)
	if err != nil {
		return err
	}
	// compiling catches bad patterns too
	if _, err := conf.CompileRules(observe.Online); err != nil {
		return err
	}
	for i, r := range conf.Rules {
		kind, pattern := "contains", r.Contains
		switch {
		case r.Glob != "":
			kind, pattern = "glob", r.Glob
		case r.Regexp != "":
			kind, pattern = "regexp", r.Regexp
		}
		line := fmt.Sprintf("%d. %s %s %q", i+1, r.Name, kind, pattern)
		if r.When != "" {
			line += " when " + r.When
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "events: %v tracked: %v\n", conf.Events, conf.Tracked)
	return nil
}
