package testctl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"pagewatch/internal/common/fsutil"
)

const webDir = "web"

// web suite modes
const (
	webModeMock    = "mock"
	webModeLive    = "live"
	webModeOffline = "offline"
)

func testWebMock(cfg *Config) error    { return testWeb(cfg, webModeMock) }
func testWebLive(cfg *Config) error    { return testWeb(cfg, webModeLive) }
func testWebOffline(cfg *Config) error { return testWeb(cfg, webModeOffline) }

// testWeb builds and previews the web app, then runs the browser e2e suite
// against it. Offline mode serves the mocked build and tells the suite to
// emulate loss of network.
func testWeb(cfg *Config, mode string) error {
	info("==== Run web e2e (%s) ====", mode)
	if !fsutil.PathExists(webDir) {
		return fmt.Errorf("web app directory %q not found", webDir)
	}
	env := map[string]string{"VITE_USE_MOCKS": "1"}
	if mode == webModeLive {
		api := apiURL()
		if api == "" {
			return errors.New("PAGEWATCH_API_URL is not set; cannot run live")
		}
		env = map[string]string{"VITE_USE_MOCKS": "0", "VITE_API_BASE_URL": api}
	}
	webPort, err := preferOrFree(cfg.WebPort)
	if err != nil {
		return err
	}
	defer func() { _ = killProcesses() }()
	if err := buildWebWith(env); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	preview, err := startPreview(ctx, webPort)
	if err != nil {
		return err
	}
	defer func() { _ = preview.Process.Kill() }()
	base := fmt.Sprintf("http://localhost:%d", webPort)
	if err := waitHTTP(base, 200, 60*time.Second); err != nil {
		return err
	}
	return runE2E(e2eEnv(cfg, mode, base))
}

// e2eEnv is the environment the e2e suite reads its target from.
func e2eEnv(cfg *Config, mode, base string) map[string]string {
	env := map[string]string{
		"PAGEWATCH_BASE_URL": base,
		"PAGEWATCH_MODE":     mode,
	}
	if mode == webModeOffline {
		env["PAGEWATCH_OFFLINE"] = "1"
	}
	if cfg.ConfigPath != "" {
		env["PAGEWATCH_CONFIG"] = cfg.ConfigPath
	}
	return env
}

func buildWebWith(env map[string]string) error {
	return runEnvCmdStreaming(context.Background(), env, "pnpm", "-C", webDir, "build")
}

func startPreview(ctx context.Context, port int) (*exec.Cmd, error) {
	preview := exec.CommandContext(ctx, "pnpm", "-C", webDir, "preview", "--port", fmt.Sprint(port), "--strictPort")
	preview.Stdout = os.Stdout
	preview.Stderr = os.Stderr
	if err := preview.Start(); err != nil {
		return nil, err
	}
	TrackProcess(preview)
	return preview, nil
}

func apiURL() string { return strings.TrimRight(envStr("PAGEWATCH_API_URL", ""), "/") }

// apiReachable reports whether PAGEWATCH_API_URL answers /healthz.
func apiReachable() bool {
	api := apiURL()
	if api == "" {
		return false
	}
	return waitHTTP(api+"/healthz", 200, 2*time.Second) == nil
}
