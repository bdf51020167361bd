package testctl

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func TestE2EEnv(t *testing.T) {
	env := e2eEnv(&Config{ConfigPath: "pw.yaml"}, webModeOffline, "http://localhost:1")
	if env["PAGEWATCH_BASE_URL"] != "http://localhost:1" || env["PAGEWATCH_OFFLINE"] != "1" || env["PAGEWATCH_CONFIG"] != "pw.yaml" {
		t.Fatalf("offline env: %+v", env)
	}
	env = e2eEnv(&Config{}, webModeMock, "http://localhost:1")
	if _, ok := env["PAGEWATCH_OFFLINE"]; ok {
		t.Fatalf("mock mode must not set offline: %+v", env)
	}
	if _, ok := env["PAGEWATCH_CONFIG"]; ok {
		t.Fatalf("empty config path must not be exported: %+v", env)
	}
}

func TestAPIReachable(t *testing.T) {
	t.Setenv("PAGEWATCH_API_URL", "")
	if apiReachable() {
		t.Fatalf("unset URL must not be reachable")
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()
	t.Setenv("PAGEWATCH_API_URL", ts.URL+"/")
	if !apiReachable() {
		t.Fatalf("expected %s to be reachable", ts.URL)
	}
}

func TestTestWeb_MissingWebDir(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if err := testWebMock(&Config{WebPort: 5173}); err == nil {
		t.Fatalf("expected error when web directory is missing")
	}
}
