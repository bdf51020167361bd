package testctl

import (
	"context"
)

// Tests
func runGoTests() error {
	info("==== Run Go tests ====")
	return runCmdStreaming(context.Background(), "go", "test", "./...", "-v")
}

// runE2E runs the browser suite in internal/e2e with env passed through.
func runE2E(env map[string]string) error {
	env["PAGEWATCH_E2E"] = "1"
	return runEnvCmdStreaming(context.Background(), env, "go", "test", "-tags", "e2e", "-count=1", "-v", "./internal/e2e")
}
