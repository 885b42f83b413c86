package align

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/vaani-labs/vaani-core/internal/bus"
	"github.com/vaani-labs/vaani-core/internal/eventstore"
	"github.com/vaani-labs/vaani-core/internal/protocol"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Service exposes the engine on the bus: align requests in, viseme tracks
// out, with every decision recorded to the alignment history.
type Service struct {
	engine      *Engine
	bus         *bus.Client
	store       *eventstore.Store
	log         *slog.Logger
	subAlign    *nats.Subscription
	subStrategy *nats.Subscription
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup

	alignCounter metric.Int64Counter
	alignLatency metric.Float64Histogram
}

func NewService(parent context.Context, engine *Engine, busClient *bus.Client, store *eventstore.Store, log *slog.Logger) *Service {
	ctx, cancel := context.WithCancel(parent)
	meter := otel.Meter("vaani/align")
	counter, _ := meter.Int64Counter("align.requests",
		metric.WithDescription("alignment requests by outcome"))
	latency, _ := meter.Float64Histogram("align.latency",
		metric.WithDescription("alignment latency in seconds"),
		metric.WithUnit("s"))
	return &Service{
		engine:       engine,
		bus:          busClient,
		store:        store,
		log:          log.With(slog.String("component", "align-service")),
		ctx:          ctx,
		cancel:       cancel,
		alignCounter: counter,
		alignLatency: latency,
	}
}

func (s *Service) Start() error {
	sub, err := s.bus.Conn().Subscribe(protocol.SubjectAlignRequest, s.handleAlign)
	if err != nil {
		return fmt.Errorf("subscribe align requests: %w", err)
	}
	s.subAlign = sub

	subStrategy, err := s.bus.Conn().Subscribe(protocol.SubjectStrategyRequest, s.handleStrategy)
	if err != nil {
		_ = s.subAlign.Drain()
		return fmt.Errorf("subscribe strategy requests: %w", err)
	}
	s.subStrategy = subStrategy
	return nil
}

func (s *Service) Close() {
	s.cancel()
	if s.subAlign != nil {
		_ = s.subAlign.Drain()
	}
	if s.subStrategy != nil {
		_ = s.subStrategy.Drain()
	}
	s.wg.Wait()
}

func (s *Service) Healthy() bool {
	return s.subAlign != nil && s.subStrategy != nil
}

func (s *Service) handleAlign(msg *nats.Msg) {
	var req protocol.AlignRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.log.Warn("failed to decode align request", slogError(err))
		return
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		result := s.process(req)
		data, err := json.Marshal(result)
		if err != nil {
			s.log.Warn("failed to marshal align result", slogError(err))
			return
		}
		subject := protocol.SubjectAlignResult
		if msg.Reply != "" {
			subject = msg.Reply
		}
		if err := s.bus.Conn().Publish(subject, data); err != nil {
			s.log.Warn("failed to publish align result", slogError(err))
		}
	}()
}

func (s *Service) process(req protocol.AlignRequest) protocol.AlignResult {
	start := time.Now()
	track, decision, err := s.engine.Align(s.ctx, req.AudioPath, req.Text, req.Language)
	elapsed := time.Since(start)

	result := protocol.AlignResult{
		RequestID: req.RequestID,
		SessionID: req.SessionID,
		Strategy:  string(decision.Category),
		Rationale: decision.Rationale,
		Timestamp: time.Now().UTC(),
	}
	outcome := "ok"
	recognizer := ""
	if err != nil {
		outcome, result.ErrorKind = classifyError(err)
		result.Error = err.Error()
		s.log.Warn("alignment failed",
			slog.String("request_id", req.RequestID),
			slog.String("kind", result.ErrorKind),
			slogError(err))
	} else {
		result.Duration = track.Duration
		for _, cue := range track.Cues {
			result.Cues = append(result.Cues, protocol.MouthCue{
				Start: cue.Start,
				End:   cue.End,
				Shape: cue.Shape.String(),
			})
		}
		recognizer = string(decision.ChosenMode)
		result.Tier = recognizer
	}

	s.alignCounter.Add(s.ctx, 1,
		metric.WithAttributes(
			attribute.String("outcome", outcome),
			attribute.String("language", string(decision.Language)),
			attribute.String("category", string(decision.Category))))
	s.alignLatency.Record(s.ctx, elapsed.Seconds())

	if s.store != nil {
		rec := eventstore.Record{
			RequestID:  req.RequestID,
			SessionID:  req.SessionID,
			Language:   string(decision.Language),
			Category:   string(decision.Category),
			Recognizer: recognizer,
			CueCount:   len(result.Cues),
			Duration:   result.Duration,
			Rationale:  decision.Rationale,
			ErrorKind:  result.ErrorKind,
		}
		if err := s.store.Append(s.ctx, rec); err != nil {
			s.log.Warn("failed to record alignment", slogError(err))
		}
	}
	return result
}

func (s *Service) handleStrategy(msg *nats.Msg) {
	var req protocol.AlignRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.log.Warn("failed to decode strategy request", slogError(err))
		return
	}
	decision := s.engine.Explain(req.Text, req.Language)

	report := protocol.StrategyReport{
		RequestID:    req.RequestID,
		Category:     string(decision.Category),
		Language:     string(decision.Language),
		AccuracyBand: decision.AccuracyBand,
		Rationale:    decision.Rationale,
	}
	for _, tier := range decision.Tiers {
		report.Tiers = append(report.Tiers, string(tier))
	}
	data, err := json.Marshal(report)
	if err != nil {
		s.log.Warn("failed to marshal strategy report", slogError(err))
		return
	}
	subject := protocol.SubjectStrategyReport
	if msg.Reply != "" {
		subject = msg.Reply
	}
	if err := s.bus.Conn().Publish(subject, data); err != nil {
		s.log.Warn("failed to publish strategy report", slogError(err))
	}
}

func classifyError(err error) (outcome, kind string) {
	var exhausted *AllTiersExhaustedError
	var audioErr *AudioReadError
	var toolErr *ToolInvocationError
	var parseErr *ToolOutputParseError
	switch {
	case errors.As(err, &exhausted):
		return "exhausted", "all_tiers_exhausted"
	case errors.As(err, &audioErr):
		return "audio_error", "audio_read"
	case errors.As(err, &toolErr):
		return "tool_error", "tool_invocation"
	case errors.As(err, &parseErr):
		return "tool_error", "tool_output_parse"
	default:
		return "error", "internal"
	}
}

func slogError(err error) slog.Attr {
	return slog.String("error", err.Error())
}
