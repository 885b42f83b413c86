package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vaani-labs/vaani-core/internal/align"
	"github.com/vaani-labs/vaani-core/internal/audiofeat"
	"github.com/vaani-labs/vaani-core/internal/bus"
	"github.com/vaani-labs/vaani-core/internal/config"
	"github.com/vaani-labs/vaani-core/internal/eventstore"
	"github.com/vaani-labs/vaani-core/internal/natsserver"
)

type Runtime struct {
	cfg           config.Config
	logger        *slog.Logger
	httpServer    *http.Server
	metricsServer *http.Server
	tracerClose   func(context.Context) error
	engine        *align.Engine
	ready         atomic.Bool
	wg            sync.WaitGroup
}

func New(cfg config.Config, logger *slog.Logger) *Runtime {
	return &Runtime{
		cfg:    cfg,
		logger: logger,
	}
}

func (r *Runtime) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownTelemetry, metricHandler, err := setupTelemetry(r.cfg, r.logger)
	if err != nil {
		return fmt.Errorf("failed to setup telemetry: %w", err)
	}
	r.tracerClose = shutdownTelemetry

	embedded, err := natsserver.Start(r.cfg.Bus, r.logger)
	if err != nil {
		return fmt.Errorf("failed to start embedded bus: %w", err)
	}
	defer embedded.Shutdown()

	busClient, err := bus.Connect(ctx, r.cfg.Bus, r.logger)
	if err != nil {
		return fmt.Errorf("failed to connect to bus: %w", err)
	}
	defer busClient.Close()

	store, err := eventstore.Open(ctx, r.cfg.EventStore, r.logger)
	if err != nil {
		return fmt.Errorf("failed to open alignment store: %w", err)
	}
	defer store.Close()

	engine, err := r.buildEngine()
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}
	r.engine = engine

	service := align.NewService(ctx, engine, busClient, store, r.logger)
	if err := service.Start(); err != nil {
		return fmt.Errorf("failed to start align service: %w", err)
	}
	defer service.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", r.handleHealth)
	mux.HandleFunc("/readyz", r.handleReady)
	mux.HandleFunc("/v1/align", r.handleAlign)
	mux.HandleFunc("/v1/strategy", r.handleStrategy)

	addr := fmt.Sprintf("%s:%d", r.cfg.HTTP.Bind, r.cfg.HTTP.Port)
	r.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()

	if metricHandler != nil {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", metricHandler)
		r.metricsServer = &http.Server{
			Addr:              r.cfg.Telemetry.PrometheusBind,
			Handler:           metricsMux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			if err := r.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				r.logger.Error("metrics server failed", slog.String("error", err.Error()))
			}
		}()
	}

	r.ready.Store(true)
	r.logger.Info("runtime started", slog.String("addr", addr))

	<-ctx.Done()
	r.logger.Info("runtime stopping")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := r.httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Error("http shutdown error", slog.String("error", err.Error()))
	}
	if r.metricsServer != nil {
		if err := r.metricsServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Error("metrics shutdown error", slog.String("error", err.Error()))
		}
	}
	r.wg.Wait()

	if r.tracerClose != nil {
		if err := r.tracerClose(shutdownCtx); err != nil {
			r.logger.Error("telemetry shutdown error", slog.String("error", err.Error()))
		}
	}

	return nil
}

func (r *Runtime) buildEngine() (*align.Engine, error) {
	runner, err := align.NewExecRunner(r.cfg.Aligner, r.logger)
	if err != nil {
		return nil, err
	}
	converter, err := align.NewConverter(r.cfg.Aligner, r.logger)
	if err != nil {
		return nil, err
	}
	analyzer := audiofeat.NewAnalyzer(r.cfg.Audio.HopMS, r.logger)
	refiner := align.NewRefiner(r.cfg.Refine, r.logger)
	return align.NewEngine(runner, converter, analyzer, refiner, r.cfg.Engine, r.logger), nil
}

func (r *Runtime) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (r *Runtime) handleReady(w http.ResponseWriter, _ *http.Request) {
	if r.ready.Load() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("not ready"))
}

type alignRequestBody struct {
	AudioPath string `json:"audio_path"`
	Text      string `json:"text"`
	Language  string `json:"language"`
}

type alignResponseBody struct {
	Duration  float64   `json:"duration"`
	Cues      []cueBody `json:"cues"`
	Strategy  string    `json:"strategy"`
	Tier      string    `json:"tier"`
	Rationale []string  `json:"rationale"`
}

type cueBody struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Shape string  `json:"shape"`
}

func (r *Runtime) handleAlign(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body alignRequestBody
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.AudioPath == "" {
		http.Error(w, "audio_path is required", http.StatusBadRequest)
		return
	}

	track, decision, err := r.engine.Align(req.Context(), body.AudioPath, body.Text, body.Language)
	if err != nil {
		r.logger.Warn("alignment request failed",
			slog.String("language", body.Language),
			slog.Any("rationale", decision.Rationale),
			slog.String("error", err.Error()))
		var exhausted *align.AllTiersExhaustedError
		var audioErr *align.AudioReadError
		switch {
		case errors.As(err, &exhausted):
			http.Error(w, "alignment unavailable", http.StatusUnprocessableEntity)
		case errors.As(err, &audioErr):
			http.Error(w, "audio unreadable", http.StatusBadRequest)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	resp := alignResponseBody{
		Duration:  track.Duration,
		Strategy:  string(decision.Category),
		Tier:      string(decision.ChosenMode),
		Rationale: decision.Rationale,
	}
	for _, cue := range track.Cues {
		resp.Cues = append(resp.Cues, cueBody{Start: cue.Start, End: cue.End, Shape: cue.Shape.String()})
	}
	writeJSON(w, resp)
}

func (r *Runtime) handleStrategy(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	query := req.URL.Query()
	decision := r.engine.Explain(query.Get("text"), query.Get("language"))

	tiers := make([]string, 0, len(decision.Tiers))
	for _, tier := range decision.Tiers {
		tiers = append(tiers, string(tier))
	}
	writeJSON(w, map[string]any{
		"category":      string(decision.Category),
		"language":      string(decision.Language),
		"tiers":         tiers,
		"accuracy_band": decision.AccuracyBand,
		"rationale":     decision.Rationale,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode response", http.StatusInternalServerError)
	}
}
