package testctl

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// buildRootCmd is a convenience for help-only fallbacks.
func buildRootCmd() *cobra.Command { return buildRootCmdWith(&Config{WebPort: 5173, LogLvl: "info"}) }

// buildRootCmdWith constructs a Cobra command tree wired to the fn* actions.
func buildRootCmdWith(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "testctl",
		Short:         "Test and dev utilities for pagewatch",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags -> Config
	root.PersistentFlags().Int("web-port", cfg.WebPort, "Port for Vite preview (defaults WEB_PORT or 5173)")
	root.PersistentFlags().String("log-level", cfg.LogLvl, "Log level: debug|info|warn|error (defaults TESTCTL_LOG_LEVEL or info)")
	root.PersistentFlags().String("config", cfg.ConfigPath, "Observation config file (defaults PAGEWATCH_CONFIG)")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if f := cmd.Flags().Lookup("web-port"); f != nil && f.Changed {
			var n int
			_, _ = fmt.Sscanf(f.Value.String(), "%d", &n)
			if n != 0 {
				cfg.WebPort = n
			}
		}
		if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
			if v := f.Value.String(); v != "" {
				cfg.LogLvl = v
			}
		}
		if f := cmd.Flags().Lookup("config"); f != nil && f.Changed {
			cfg.ConfigPath = f.Value.String()
		}
		SetLogLevel(cfg.LogLvl)
	}

	// test group
	testCmd := &cobra.Command{Use: "test", Short: "Run tests", Args: func(cmd *cobra.Command, args []string) error { return nil }, RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("test requires a subcommand: go|web|all")
	}}
	testGo := &cobra.Command{Use: "go", Short: "Run Go tests", RunE: func(cmd *cobra.Command, args []string) error { return fnRunGoTests() }}

	// test web
	testWeb := &cobra.Command{Use: "web", Short: "Run the browser e2e suite against the web app", Example: "  testctl test web mock\n  testctl test web live\n  testctl test web offline\n  testctl test web auto", Args: func(cmd *cobra.Command, args []string) error { return nil }, RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return fmt.Errorf("unknown test web mode: %s", args[0])
		}
		return fmt.Errorf("test web requires a mode: mock|live|offline|auto")
	}}
	webMock := &cobra.Command{Use: "mock", Short: "Web app built with mocked API", RunE: func(cmd *cobra.Command, args []string) error { return fnTestWebMock(cfg) }}
	webLive := &cobra.Command{Use: "live", Short: "Web app pointed at PAGEWATCH_API_URL", RunE: func(cmd *cobra.Command, args []string) error { return fnTestWebLive(cfg) }}
	webOffline := &cobra.Command{Use: "offline", Short: "Mocked web app with the browser network emulated offline", RunE: func(cmd *cobra.Command, args []string) error { return fnTestWebOffline(cfg) }}
	webAutoCmd := &cobra.Command{Use: "auto", Short: "Choose live if the API answers, else mock", RunE: func(cmd *cobra.Command, args []string) error { return webAuto(cfg) }}
	testWeb.AddCommand(webMock, webLive, webOffline, webAutoCmd)

	// test all auto
	testAll := &cobra.Command{Use: "all", Short: "Run all test suites", Args: func(cmd *cobra.Command, args []string) error { return nil }, RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("test all requires 'auto'")
	}}
	testAllAuto := &cobra.Command{Use: "auto", Short: "Go → Web (auto mode)", RunE: func(cmd *cobra.Command, args []string) error {
		if err := fnRunGoTests(); err != nil {
			return err
		}
		return webAuto(cfg)
	}}
	testAll.AddCommand(testAllAuto)

	testCmd.AddCommand(testGo, testWeb, testAll)
	root.AddCommand(testCmd)

	// watch
	var wo WatchOptions
	watchCmd := &cobra.Command{Use: "watch <url>", Short: "Open a page in headless Chrome and report uncaught console errors", Example: "  testctl watch http://localhost:5173 --for 15s\n  testctl watch http://localhost:5173 --offline", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		wo.URL = args[0]
		return fnWatch(cfg, wo)
	}}
	watchCmd.Flags().DurationVar(&wo.For, "for", 10*time.Second, "How long to observe after the page loads")
	watchCmd.Flags().BoolVar(&wo.Offline, "offline", envBool("PAGEWATCH_OFFLINE", false), "Emulate loss of network connectivity")
	watchCmd.Flags().BoolVar(&wo.Headful, "headful", false, "Show the browser window")
	root.AddCommand(watchCmd)

	// rules
	rulesCmd := &cobra.Command{Use: "rules", Short: "Print suppression rules in priority order", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		return fnPrintRules(cfg, cmd.OutOrStdout())
	}}
	root.AddCommand(rulesCmd)

	// completion command
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(os.Stdout, true) }})
	root.AddCommand(completionCmd)

	return root
}

func webAuto(cfg *Config) error {
	if fnAPIReachable() {
		info("[testctl] API reachable, running live web suite")
		return fnTestWebLive(cfg)
	}
	info("[testctl] API not reachable, running mock web suite")
	return fnTestWebMock(cfg)
}
