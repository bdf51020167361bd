package testctl

import (
	"flag"
	"fmt"
	"os"
)

type Config struct {
	WebPort    int
	LogLvl     string
	ConfigPath string // observation config for watch and rules; empty means built-in defaults
}

func usage() {
	fmt.Println("Usage: testctl [--web-port N] [--log-level info] [--config file] <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  test go")
	fmt.Println("  test web mock|live|offline|auto")
	fmt.Println("  test all auto")
	fmt.Println("  watch <url> [--for 10s] [--offline]")
	fmt.Println("  rules")
}

// Run dispatches the CLI command through the cobra tree. It returns an error
// instead of exiting, enabling reuse from other packages or tests.
func Run(args []string, cfg *Config) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command")
	}
	root := buildRootCmdWith(cfg)
	root.SetArgs(args)
	return root.Execute()
}

func ParseConfig() (*Config, []string) {
	return ParseConfigWith(flag.CommandLine, os.Args[1:])
}

// ParseConfigWith parses flags using the provided FlagSet and args slice.
// This enables tests to inject their own FlagSet and arguments without
// mutating global state.
func ParseConfigWith(fs *flag.FlagSet, args []string) (*Config, []string) {
	cfg := &Config{}
	// Only define flags if they are not already present on the provided FlagSet.
	if fs.Lookup("web-port") == nil {
		fs.Int("web-port", envInt("WEB_PORT", 5173), "Port for Vite preview")
	}
	if fs.Lookup("log-level") == nil {
		fs.String("log-level", envStr("TESTCTL_LOG_LEVEL", "info"), "Log level: debug|info|warn|error")
	}
	if fs.Lookup("config") == nil {
		fs.String("config", envStr("PAGEWATCH_CONFIG", ""), "Observation config file (yaml, json or toml)")
	}
	_ = fs.Parse(args)
	// Read back values from the parsed FlagSet, falling back to env defaults.
	wp := envInt("WEB_PORT", 5173)
	if f := fs.Lookup("web-port"); f != nil {
		var n int
		_, _ = fmt.Sscanf(f.Value.String(), "%d", &n)
		if n != 0 {
			wp = n
		}
	}
	ll := envStr("TESTCTL_LOG_LEVEL", "info")
	if f := fs.Lookup("log-level"); f != nil {
		if v := f.Value.String(); v != "" {
			ll = v
		}
	}
	cp := envStr("PAGEWATCH_CONFIG", "")
	if f := fs.Lookup("config"); f != nil {
		if v := f.Value.String(); v != "" {
			cp = v
		}
	}
	cfg.WebPort = wp
	cfg.LogLvl = ll
	cfg.ConfigPath = cp
	return cfg, fs.Args()
}

// MainWithArgs is a testable variant of Main that accepts args explicitly.
// It returns an exit code (0 for success, non-zero on error).
func MainWithArgs(args []string) int {
	// If user explicitly asks for help, print usage and exit 0
	for _, a := range args {
		if a == "-h" || a == "--help" || a == "help" {
			usage()
			return 0
		}
	}
	fs := flag.NewFlagSet("testctl", flag.ContinueOnError)
	cfg, rest := ParseConfigWith(fs, args)
	if len(rest) == 0 {
		usage()
		return 2
	}
	SetLogLevel(cfg.LogLvl)
	if err := Run(rest, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	return 0
}

// Main returns an exit code (0 for success, non-zero on error) for use by cmd/testctl.
func Main() int { return MainWithArgs(os.Args[1:]) }
