package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"pagewatch/internal/collector"
	"pagewatch/internal/config"
	"pagewatch/internal/httpapi"
)

func main() {
	// Flags with environment variable defaults
	defaultAddr := ""
	if v := os.Getenv("PAGEWATCH_ADDR"); v != "" {
		defaultAddr = v
	}
	defaultLevel := "info"
	if v := os.Getenv("PAGEWATCH_LOG_LEVEL"); v != "" {
		defaultLevel = v
	}
	addr := flag.String("addr", defaultAddr, "HTTP listen address, e.g. :8787 (default from config)")
	cfgPath := flag.String("config", os.Getenv("PAGEWATCH_CONFIG"), "Path to a YAML, JSON or TOML config file")
	offline := flag.Bool("offline", false, "Open runs in degraded-network mode unless the runner says otherwise")
	runTTL := flag.Duration("run-ttl", 30*time.Minute, "Reap runs idle for longer than this")
	maxBody := flag.Int64("max-body-bytes", 1<<20, "Maximum JSON request body size")
	corsEnabled := flag.Bool("cors-enabled", false, "Enable CORS for browser-hosted runners")
	corsOrigins := flag.String("cors-origins", "*", "Comma-separated allowed origins")
	corsMethods := flag.String("cors-methods", "GET,POST,PUT,DELETE,OPTIONS", "Comma-separated allowed methods")
	corsHeaders := flag.String("cors-headers", "Content-Type,X-Log-Level", "Comma-separated allowed headers")
	logLevel := flag.String("log-level", defaultLevel, "zerolog level: debug, info, warn, error")
	flag.Parse()

	log := newLogger(*logLevel)

	cfg, err := config.LoadOrDefault(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *cfgPath).Msg("failed to load config")
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *offline {
		cfg.Offline = true
	}

	col, err := collector.New(collector.Config{Observe: cfg, TTL: *runTTL, Logger: &log})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid rules")
	}

	httpapi.SetLogger(log)
	httpapi.SetMaxBodyBytes(*maxBody)
	httpapi.SetCORSOptions(*corsEnabled, splitCSV(*corsOrigins), splitCSV(*corsMethods), splitCSV(*corsHeaders))

	mux := httpapi.NewMux(col)
	srv := &http.Server{Addr: cfg.Addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		log.Info().Str("addr", cfg.Addr).Strs("rules", col.Rules()).Msg("pagewatchd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	if n := col.CloseAll(); n > 0 {
		log.Warn().Int("runs", n).Msg("closed runs still open at shutdown")
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).With().Timestamp().Logger()
}

// splitCSV splits a comma-separated list, trimming blanks and dropping empties.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
