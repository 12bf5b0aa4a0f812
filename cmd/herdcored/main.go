// Command herdcored runs the reproductive lifecycle engine as a small
// daemon: persistent store and rules engine, the background sweep, and an
// HTTP surface for health, metrics, and reporting reads.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"herdcore/internal/archive"
	"herdcore/internal/blob"
	"herdcore/internal/core"
	"herdcore/pkg/schedule"
)

const (
	envListenAddr    = "HERDCORE_LISTEN_ADDR"
	envProfilesPath  = "HERDCORE_PROFILES_PATH"
	envSweepInterval = "HERDCORE_SWEEP_INTERVAL"

	defaultListenAddr = ":8080"
)

// profileConfig is the on-disk shape of one species profile.
type profileConfig struct {
	Species           string  `json:"species"`
	GestationDays     int     `json:"gestation_days"`
	HeatDurationHours float64 `json:"heat_duration_hours,omitempty"`
	WindowStartFactor float64 `json:"window_start_factor,omitempty"`
	WindowEndFactor   float64 `json:"window_end_factor,omitempty"`
	ReturnToHeatDays  float64 `json:"return_to_heat_days,omitempty"`
}

func defaultProfiles() schedule.Table {
	return schedule.NewTable(
		schedule.Profile{Species: "cattle", GestationDays: 283, HeatDuration: 18 * time.Hour},
		schedule.Profile{Species: "pig", GestationDays: 114, HeatDuration: 48 * time.Hour},
		schedule.Profile{Species: "sheep", GestationDays: 152, HeatDuration: 30 * time.Hour},
		schedule.Profile{Species: "goat", GestationDays: 150, HeatDuration: 30 * time.Hour},
		schedule.Profile{Species: "horse", GestationDays: 340, HeatDuration: 5 * 24 * time.Hour},
	)
}

func loadProfiles(path string) (schedule.Table, error) {
	if path == "" {
		return defaultProfiles(), nil
	}
	raw, err := os.ReadFile(path) // #nosec G304 -- operator-supplied config path
	if err != nil {
		return schedule.Table{}, err
	}
	var configs []profileConfig
	if err := json.Unmarshal(raw, &configs); err != nil {
		return schedule.Table{}, err
	}
	profiles := make([]schedule.Profile, 0, len(configs))
	for _, c := range configs {
		profiles = append(profiles, schedule.Profile{
			Species:           c.Species,
			GestationDays:     c.GestationDays,
			HeatDuration:      time.Duration(c.HeatDurationHours * float64(time.Hour)),
			WindowStartFactor: c.WindowStartFactor,
			WindowEndFactor:   c.WindowEndFactor,
			ReturnToHeat:      time.Duration(c.ReturnToHeatDays * 24 * float64(time.Hour)),
		})
	}
	return schedule.NewTable(profiles...), nil
}

func main() {
	zl, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = zl.Sync() }()
	logger := core.NewZapLogger(zl)

	profiles, err := loadProfiles(os.Getenv(envProfilesPath))
	if err != nil {
		zl.Fatal("load species profiles", zap.Error(err))
	}

	engine := core.NewDefaultRulesEngine()
	store, err := core.OpenPersistentStore(engine)
	if err != nil {
		zl.Fatal("open persistent store", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	blobStore, err := blob.Open(ctx)
	if err != nil {
		zl.Fatal("open blob store", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	service := core.NewService(store, core.Config{Profiles: profiles},
		core.WithLogger(logger),
		core.WithMetricsRecorder(core.NewPrometheusMetricsRecorder(registry)),
		core.WithAuditRecorder(core.NewLogAuditRecorder(logger)),
		core.WithArchiver(archive.New(blobStore, "archive")),
	)
	registry.MustRegister(core.NewSummaryCollector(service))

	sweepInterval := core.DefaultSweepInterval
	if raw := os.Getenv(envSweepInterval); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			zl.Fatal("parse sweep interval", zap.String("value", raw), zap.Error(err))
		}
		sweepInterval = parsed
	}
	sweeper := core.NewSweeper(service, sweepInterval)
	go func() {
		if err := sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			zl.Error("sweeper stopped", zap.Error(err))
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/summary", func(w http.ResponseWriter, r *http.Request) {
		var birthsSince time.Time
		if raw := r.URL.Query().Get("births_since"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				http.Error(w, "births_since must be RFC 3339", http.StatusBadRequest)
				return
			}
			birthsSince = parsed
		}
		summary, err := service.Summarize(r.Context(), birthsSince)
		writeJSON(w, summary, err)
	})
	mux.HandleFunc("/due-soon", func(w http.ResponseWriter, r *http.Request) {
		withinDays := 0
		if raw := r.URL.Query().Get("within_days"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				http.Error(w, "within_days must be a positive integer", http.StatusBadRequest)
				return
			}
			withinDays = parsed
		}
		due, err := service.ListDueSoon(r.Context(), withinDays)
		writeJSON(w, due, err)
	})
	mux.HandleFunc("/active-estrus", func(w http.ResponseWriter, r *http.Request) {
		active, err := service.ListActiveEstrus(r.Context())
		writeJSON(w, active, err)
	})

	addr := os.Getenv(envListenAddr)
	if addr == "" {
		addr = defaultListenAddr
	}
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	zl.Info("herdcored listening", zap.String("addr", addr), zap.Duration("sweep_interval", sweepInterval))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zl.Fatal("serve", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, payload any, err error) {
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
