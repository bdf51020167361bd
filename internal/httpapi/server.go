package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pagewatch/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Open(req types.OpenRunRequest) (types.RunInfo, error)
	Event(id string, req types.EventRequest) (types.EventResponse, error)
	SetMode(id string, offline bool) error
	Close(id string) (types.RunResult, error)
	List() []types.RunInfo
	Rules() []string
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Route("/v1", func(r chi.Router) {
		r = r.With(inflight)

		r.Get("/rules", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, types.RulesResponse{Rules: svc.Rules()})
		})

		r.Get("/runs", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, types.RunsResponse{Runs: svc.List()})
		})

		r.Post("/runs", func(w http.ResponseWriter, r *http.Request) {
			var req types.OpenRunRequest
			// an empty body opens a default run
			if r.ContentLength != 0 {
				if !decodeJSON(w, r, &req) {
					return
				}
			}
			info, err := svc.Open(req)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, info)
		})

		r.Post("/runs/{id}/events", func(w http.ResponseWriter, r *http.Request) {
			var req types.EventRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			if strings.TrimSpace(req.Category) == "" {
				writeJSONError(w, http.StatusBadRequest, "category is required")
				return
			}
			id := chi.URLParam(r, "id")
			resp, err := svc.Event(id, req)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			logEvent(r, id, req.Category, resp.Verdict, resp.Rule)
			writeJSON(w, http.StatusOK, resp)
		})

		r.Put("/runs/{id}/mode", func(w http.ResponseWriter, r *http.Request) {
			var req types.ModeRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			if err := svc.SetMode(chi.URLParam(r, "id"), req.Offline); err != nil {
				writeServiceError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Delete("/runs/{id}", func(w http.ResponseWriter, r *http.Request) {
			res, err := svc.Close(chi.URLParam(r, "id"))
			if err != nil {
				writeServiceError(w, err)
				return
			}
			if len(res.Failures) > 0 {
				logger().Warn().Str("run", res.ID).Int("failures", len(res.Failures)).Msg("run failed")
			}
			writeJSON(w, http.StatusOK, res)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// decodeJSON enforces the content type and body limit and writes the error
// response itself; it returns false when the handler should stop.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// If exceeded size, MaxBytesReader may cause an error; still return 400 to avoid size leak details
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
