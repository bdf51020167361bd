package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"pagewatch/internal/common/fsutil"
	"pagewatch/internal/observe"
)

// Config holds the observation settings shared by pagewatchd and testctl.
// Zero values mean "unspecified" and are replaced by Default values. Rules
// is the exception: an omitted list gets the defaults while an explicit empty
// list turns suppression off.
type Config struct {
	Addr    string     `json:"addr" yaml:"addr" toml:"addr"`
	Events  []string   `json:"events" yaml:"events" toml:"events"`
	Tracked []string   `json:"tracked" yaml:"tracked" toml:"tracked"`
	Offline bool       `json:"offline" yaml:"offline" toml:"offline"`
	Rules   []RuleSpec `json:"rules" yaml:"rules" toml:"rules"`
}

// RuleSpec is the file form of a suppression rule. Exactly one of Contains,
// Glob and Regexp must be set. When is empty or "offline".
type RuleSpec struct {
	Name     string `json:"name" yaml:"name" toml:"name"`
	Contains string `json:"contains,omitempty" yaml:"contains,omitempty" toml:"contains,omitempty"`
	Glob     string `json:"glob,omitempty" yaml:"glob,omitempty" toml:"glob,omitempty"`
	Regexp   string `json:"regexp,omitempty" yaml:"regexp,omitempty" toml:"regexp,omitempty"`
	When     string `json:"when,omitempty" yaml:"when,omitempty" toml:"when,omitempty"`
}

const WhenOffline = "offline"

// DefaultRuleSpecs mirrors observe.DefaultRules.
func DefaultRuleSpecs() []RuleSpec {
	return []RuleSpec{
		{Name: "global-warning", Contains: observe.GlobalWarning},
		{Name: "offline-disconnected", Contains: observe.NetworkDisconnected, When: WhenOffline},
	}
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Addr:    ":8787",
		Events:  []string{"console", "exception"},
		Tracked: []string{"error"},
		Rules:   DefaultRuleSpecs(),
	}
}

// Load reads a configuration file based on its extension and fills unset
// fields from Default.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	path, err := fsutil.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load for a non-empty path and Default otherwise.
func LoadOrDefault(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if len(c.Events) == 0 {
		c.Events = d.Events
	}
	if len(c.Tracked) == 0 {
		c.Tracked = d.Tracked
	}
	if c.Rules == nil {
		c.Rules = d.Rules
	}
}

// Validate checks event names and every rule; errors name the offending
// index.
func (c Config) Validate() error {
	events := make(map[string]bool, len(c.Events))
	for i, name := range c.Events {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("events[%d]: name is required", i)
		}
		if events[name] {
			return fmt.Errorf("events[%d]: duplicate %q", i, name)
		}
		events[name] = true
	}
	seen := make(map[string]bool, len(c.Rules))
	for i, r := range c.Rules {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("rules[%d]: name is required", i)
		}
		if seen[r.Name] {
			return fmt.Errorf("rules[%d]: duplicate name %q", i, r.Name)
		}
		seen[r.Name] = true
		set := 0
		for _, v := range []string{r.Contains, r.Glob, r.Regexp} {
			if v != "" {
				set++
			}
		}
		if set != 1 {
			return fmt.Errorf("rules[%d] %q: exactly one of contains, glob, regexp is required", i, r.Name)
		}
		if r.When != "" && r.When != WhenOffline {
			return fmt.Errorf("rules[%d] %q: unknown when %q", i, r.Name, r.When)
		}
	}
	return nil
}

// CompileRules turns the rule specs into observe rules in file order. Rules
// with When "offline" consult mode on every event.
func (c Config) CompileRules(mode observe.Mode) ([]observe.Rule, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	out := make([]observe.Rule, 0, len(c.Rules))
	for _, spec := range c.Rules {
		var (
			r   observe.Rule
			err error
		)
		switch {
		case spec.Contains != "":
			r = observe.Contains(spec.Name, spec.Contains)
		case spec.Glob != "":
			r, err = observe.Glob(spec.Name, spec.Glob)
		default:
			r, err = observe.Regexp(spec.Name, spec.Regexp)
		}
		if err != nil {
			return nil, err
		}
		if spec.When == WhenOffline {
			r = observe.When(r, mode)
		}
		out = append(out, r)
	}
	return out, nil
}

// ObserveConfig builds an observe.Config that reports every tracked category
// to sink.
func (c Config) ObserveConfig(sink observe.Sink, mode observe.Mode) (observe.Config, error) {
	rules, err := c.CompileRules(mode)
	if err != nil {
		return observe.Config{}, err
	}
	return observe.Config{
		Events: append([]string(nil), c.Events...),
		Sinks:  observe.Track(sink, c.Tracked...),
		Rules:  rules,
		Mode:   mode,
	}, nil
}
