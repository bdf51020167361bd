// Package collector keeps observation runs for test runners that live outside
// this process (a Cypress or Playwright suite posting its console output).
// Each run owns an Emitter, a Manager and a Recorder; events are replayed into
// the run's Emitter so they take the same path as in-process observation.
package collector

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pagewatch/internal/config"
	"pagewatch/internal/observe"
	"pagewatch/pkg/types"
)

const defaultTTL = 30 * time.Minute

// Config encapsulates all tunables for Collector construction.
type Config struct {
	Observe config.Config
	// TTL is how long a run may stay idle before it is reaped. Default 30m.
	TTL    time.Duration
	Logger *zerolog.Logger
	// Now is the clock; tests replace it.
	Now func() time.Time
}

type Collector struct {
	mu    sync.Mutex
	runs  map[string]*run
	cfg   config.Config
	rules []string
	ttl   time.Duration
	now   func() time.Time
	log   zerolog.Logger
}

type run struct {
	mu      sync.Mutex
	info    types.RunInfo
	src     *observe.Emitter
	mode    *observe.Switch
	rec     *observe.Recorder
	mgr     *observe.Manager
	last    observe.Verdict
	touched time.Time
}

// New validates the observation config and returns an empty Collector.
func New(cfg Config) (*Collector, error) {
	c := &Collector{
		runs: make(map[string]*run),
		cfg:  cfg.Observe,
		ttl:  cfg.TTL,
		now:  cfg.Now,
		log:  zerolog.Nop(),
	}
	if c.ttl <= 0 {
		c.ttl = defaultTTL
	}
	if c.now == nil {
		c.now = time.Now
	}
	if cfg.Logger != nil {
		c.log = *cfg.Logger
	}
	// compile once up front so a bad rule fails at startup, not per run
	rules, err := c.cfg.CompileRules(observe.Online)
	if err != nil {
		return nil, err
	}
	for _, r := range rules {
		c.rules = append(c.rules, r.Name)
	}
	return c, nil
}

// Open starts a new run and returns its description.
func (c *Collector) Open(req types.OpenRunRequest) (types.RunInfo, error) {
	c.reap()
	now := c.now()
	// the configured flag is the default for every new run
	offline := req.Offline || c.cfg.Offline
	r := &run{
		info: types.RunInfo{
			ID:        uuid.NewString(),
			Name:      req.Name,
			Offline:   offline,
			CreatedAt: now,
		},
		src:     observe.NewEmitter(),
		mode:    observe.NewSwitch(offline),
		rec:     observe.NewRecorder(),
		touched: now,
	}
	oc, err := c.cfg.ObserveConfig(r.rec, r.mode)
	if err != nil {
		return types.RunInfo{}, err
	}
	// Event holds r.mu while emitting, so last needs no extra locking.
	oc.OnVerdict = func(_ observe.Event, v observe.Verdict) { r.last = v }
	runLog := c.log.With().Str("run", r.info.ID).Logger()
	oc.Logger = &runLog
	mgr, err := observe.NewWithConfig(r.src, oc)
	if err != nil {
		return types.RunInfo{}, err
	}
	if err := mgr.Begin(); err != nil {
		return types.RunInfo{}, err
	}
	r.mgr = mgr

	c.mu.Lock()
	c.runs[r.info.ID] = r
	open := len(c.runs)
	c.mu.Unlock()
	runsOpen.Set(float64(open))
	c.log.Info().Str("run", r.info.ID).Str("name", req.Name).Bool("offline", offline).Msg("run opened")
	return r.info, nil
}

func (c *Collector) get(id string) (*run, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.runs[id]
	if !ok {
		return nil, ErrRunNotFound(id)
	}
	return r, nil
}

// Event replays one observed event into the run and reports the verdict.
// An empty event name means "console".
func (c *Collector) Event(id string, req types.EventRequest) (types.EventResponse, error) {
	r, err := c.get(id)
	if err != nil {
		return types.EventResponse{}, err
	}
	name := req.Event
	if name == "" {
		name = "console"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touched = c.now()
	r.last = observe.Verdict{Outcome: observe.Ignored}
	r.src.Emit(name, observe.Event{Category: req.Category, Message: req.Message})
	v := r.last
	if v.Outcome == observe.Forwarded {
		r.info.Failures = r.rec.Len()
	}
	return types.EventResponse{Verdict: v.Outcome.String(), Rule: v.Rule}, nil
}

// SetMode flips the run's degraded-network flag.
func (c *Collector) SetMode(id string, offline bool) error {
	r, err := c.get(id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touched = c.now()
	r.mode.Set(offline)
	r.info.Offline = offline
	return nil
}

// Close ends the run, removing all of its subscriptions, and returns its
// failures. A run can be closed once.
func (c *Collector) Close(id string) (types.RunResult, error) {
	c.mu.Lock()
	r, ok := c.runs[id]
	delete(c.runs, id)
	open := len(c.runs)
	c.mu.Unlock()
	if !ok {
		return types.RunResult{}, ErrRunNotFound(id)
	}
	runsOpen.Set(float64(open))
	res := r.finish()
	c.log.Info().Str("run", id).Int("failures", len(res.Failures)).Int("removed", res.Removed).Msg("run closed")
	return res, nil
}

func (r *run) finish() types.RunResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := r.mgr.End()
	st := r.mgr.Stats()
	res := types.RunResult{
		ID:         r.info.ID,
		Removed:    removed,
		Failures:   []types.Failure{},
		Suppressed: st.Suppressed,
		Ignored:    st.Ignored,
	}
	for _, rep := range r.rec.Reports() {
		res.Failures = append(res.Failures, types.Failure{Category: rep.Category, Message: rep.Message})
	}
	return res
}

// List returns open runs, oldest first.
func (c *Collector) List() []types.RunInfo {
	c.reap()
	c.mu.Lock()
	runs := make([]*run, 0, len(c.runs))
	for _, r := range c.runs {
		runs = append(runs, r)
	}
	c.mu.Unlock()
	out := make([]types.RunInfo, 0, len(runs))
	for _, r := range runs {
		r.mu.Lock()
		out = append(out, r.info)
		r.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Rules returns the configured rule names in priority order.
func (c *Collector) Rules() []string { return append([]string(nil), c.rules...) }

// reap ends runs nobody touched within the TTL. Their runner most likely died
// before closing them, so they are logged as abandoned along with any
// failures they had collected.
func (c *Collector) reap() {
	cutoff := c.now().Add(-c.ttl)
	var stale []*run
	c.mu.Lock()
	for id, r := range c.runs {
		r.mu.Lock()
		idle := r.touched.Before(cutoff)
		r.mu.Unlock()
		if idle {
			stale = append(stale, r)
			delete(c.runs, id)
		}
	}
	open := len(c.runs)
	c.mu.Unlock()
	if len(stale) == 0 {
		return
	}
	runsOpen.Set(float64(open))
	for _, r := range stale {
		res := r.finish()
		runsReaped.Inc()
		c.log.Warn().Str("run", res.ID).Int("failures", len(res.Failures)).Int("removed", res.Removed).Msg("run abandoned; reaped")
	}
}

// CloseAll ends every open run and reports how many there were. Used on
// shutdown so no run outlives the process with subscriptions attached.
func (c *Collector) CloseAll() int {
	c.mu.Lock()
	runs := c.runs
	c.runs = make(map[string]*run)
	c.mu.Unlock()
	runsOpen.Set(0)
	for _, r := range runs {
		res := r.finish()
		c.log.Warn().Str("run", res.ID).Int("failures", len(res.Failures)).Msg("run closed at shutdown")
	}
	return len(runs)
}
