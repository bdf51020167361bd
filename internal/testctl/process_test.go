package testctl

import (
	"os/exec"
	"testing"
)

func TestProcManager_KillAll(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}
	pm := NewProcManager()
	cmd := exec.Command("sleep", "30")
	if err := cmd.Start(); err != nil {
		t.Fatal(err)
	}
	pm.Add(cmd)
	pm.Add(nil)
	_ = pm.KillAll()
	if err := cmd.Wait(); err == nil {
		t.Fatalf("expected killed process to exit with error")
	}
	// second call has nothing left
	if err := pm.KillAll(); err != nil {
		t.Fatal(err)
	}
}
