package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"pagewatch/internal/collector"
	"pagewatch/internal/config"
	"pagewatch/internal/httpapi"
	"pagewatch/pkg/types"
)

// newServer starts the collector API over httptest with cfg.
func newServer(t *testing.T, cfg config.Config) (*httptest.Server, *collector.Collector) {
	t.Helper()
	col, err := collector.New(collector.Config{Observe: cfg})
	if err != nil {
		t.Fatalf("collector: %v", err)
	}
	srv := httptest.NewServer(httpapi.NewMux(col))
	t.Cleanup(srv.Close)
	return srv, col
}

func httpDo(t *testing.T, method, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, url, body)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func openRun(t *testing.T, base string, req types.OpenRunRequest) types.RunInfo {
	t.Helper()
	payload, _ := json.Marshal(req)
	resp, body := httpDo(t, http.MethodPost, base+"/v1/runs", payload)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("open run: %d %s", resp.StatusCode, body)
	}
	var info types.RunInfo
	if err := json.Unmarshal(body, &info); err != nil {
		t.Fatalf("open run json: %v body=%s", err, body)
	}
	return info
}

func postEvent(t *testing.T, base, id string, ev types.EventRequest) types.EventResponse {
	t.Helper()
	payload, _ := json.Marshal(ev)
	resp, body := httpDo(t, http.MethodPost, base+"/v1/runs/"+id+"/events", payload)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("post event: %d %s", resp.StatusCode, body)
	}
	var out types.EventResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("event json: %v body=%s", err, body)
	}
	return out
}

func closeRun(t *testing.T, base, id string) types.RunResult {
	t.Helper()
	resp, body := httpDo(t, http.MethodDelete, base+"/v1/runs/"+id, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("close run: %d %s", resp.StatusCode, body)
	}
	var res types.RunResult
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("close json: %v body=%s", err, body)
	}
	return res
}
