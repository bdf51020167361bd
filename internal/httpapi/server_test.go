package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pagewatch/internal/collector"
	"pagewatch/internal/config"
	"pagewatch/pkg/types"
)

func newTestMux(t *testing.T) http.Handler {
	t.Helper()
	c, err := collector.New(collector.Config{Observe: config.Default()})
	if err != nil {
		t.Fatalf("collector: %v", err)
	}
	return NewMux(c)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRunFlow(t *testing.T) {
	h := newTestMux(t)
	w := do(t, h, http.MethodPost, "/v1/runs", `{"name":"checkout.cy.ts"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("open status=%d body=%s", w.Code, w.Body.String())
	}
	var info types.RunInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil || info.ID == "" {
		t.Fatalf("open body=%s err=%v", w.Body.String(), err)
	}
	base := "/v1/runs/" + info.ID

	cases := []struct {
		body    string
		verdict string
	}{
		{`{"category":"error","message":"This is a global warning"}`, "suppressed"},
		{`{"category":"error","message":"Unexpected crash in widget X"}`, "forwarded"},
		{`{"category":"info","message":"hello"}`, "ignored"},
	}
	for _, c := range cases {
		w := do(t, h, http.MethodPost, base+"/events", c.body)
		if w.Code != http.StatusOK {
			t.Fatalf("event status=%d body=%s", w.Code, w.Body.String())
		}
		var resp types.EventResponse
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if resp.Verdict != c.verdict {
			t.Fatalf("%s -> %+v, want %s", c.body, resp, c.verdict)
		}
	}

	if w := do(t, h, http.MethodPut, base+"/mode", `{"offline":true}`); w.Code != http.StatusNoContent {
		t.Fatalf("mode status=%d", w.Code)
	}
	w = do(t, h, http.MethodPost, base+"/events", `{"category":"error","message":"net::ERR_INTERNET_DISCONNECTED"}`)
	if !strings.Contains(w.Body.String(), `"suppressed"`) {
		t.Fatalf("offline event body=%s", w.Body.String())
	}

	w = do(t, h, http.MethodGet, "/v1/runs", "")
	if !strings.Contains(w.Body.String(), info.ID) {
		t.Fatalf("list body=%s", w.Body.String())
	}

	w = do(t, h, http.MethodDelete, base, "")
	if w.Code != http.StatusOK {
		t.Fatalf("close status=%d", w.Code)
	}
	var res types.RunResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Failures) != 1 || res.Failures[0].Message != "Unexpected crash in widget X" {
		t.Fatalf("failures=%+v", res.Failures)
	}
	if w := do(t, h, http.MethodDelete, base, ""); w.Code != http.StatusNotFound {
		t.Fatalf("second close status=%d", w.Code)
	}
}

func TestOpenRun_EmptyBody(t *testing.T) {
	h := newTestMux(t)
	w := do(t, h, http.MethodPost, "/v1/runs", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestEvent_Validation(t *testing.T) {
	h := newTestMux(t)
	w := do(t, h, http.MethodPost, "/v1/runs", "")
	var info types.RunInfo
	_ = json.Unmarshal(w.Body.Bytes(), &info)
	base := "/v1/runs/" + info.ID + "/events"

	// wrong content type
	req := httptest.NewRequest(http.MethodPost, base, bytes.NewBufferString(`{"category":"error"}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("content-type status=%d", rec.Code)
	}
	if w := do(t, h, http.MethodPost, base, `{"category":`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad json status=%d", w.Code)
	}
	if w := do(t, h, http.MethodPost, base, `{"message":"no category"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing category status=%d", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/v1/runs/unknown/events", `{"category":"error"}`); w.Code != http.StatusNotFound {
		t.Fatalf("unknown run status=%d", w.Code)
	}
}

func TestBodyLimit(t *testing.T) {
	SetMaxBodyBytes(16)
	defer SetMaxBodyBytes(0)
	h := newTestMux(t)
	w := do(t, h, http.MethodPost, "/v1/runs", `{"name":"a-name-longer-than-sixteen-bytes"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestRulesAndHealth(t *testing.T) {
	h := newTestMux(t)
	w := do(t, h, http.MethodGet, "/v1/rules", "")
	var rr types.RulesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &rr); err != nil || len(rr.Rules) != 2 {
		t.Fatalf("rules body=%s", w.Body.String())
	}
	if w := do(t, h, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("healthz %d %q", w.Code, w.Body.String())
	}
	if w := do(t, h, http.MethodGet, "/healthz", ""); w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff header")
	}
}

type failingService struct{ err error }

func (f failingService) Open(types.OpenRunRequest) (types.RunInfo, error) { return types.RunInfo{}, f.err }
func (f failingService) Event(string, types.EventRequest) (types.EventResponse, error) {
	return types.EventResponse{}, f.err
}
func (f failingService) SetMode(string, bool) error { return f.err }
func (f failingService) Close(string) (types.RunResult, error) { return types.RunResult{}, f.err }
func (f failingService) List() []types.RunInfo { return nil }
func (f failingService) Rules() []string { return nil }

type teapotError struct{}

func (teapotError) Error() string   { return "teapot" }
func (teapotError) StatusCode() int { return http.StatusTeapot }

func TestServiceErrorMapping(t *testing.T) {
	if w := do(t, NewMux(failingService{err: errors.New("boom")}), http.MethodPost, "/v1/runs", ""); w.Code != http.StatusInternalServerError {
		t.Fatalf("plain error status=%d", w.Code)
	}
	w := do(t, NewMux(failingService{err: teapotError{}}), http.MethodDelete, "/v1/runs/x", "")
	if w.Code != http.StatusTeapot {
		t.Fatalf("HTTPError status=%d", w.Code)
	}
	var er types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Error != "teapot" || er.Code != http.StatusTeapot {
		t.Fatalf("error body=%s", w.Body.String())
	}
}
