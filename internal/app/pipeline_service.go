package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"jma_alert_bot/internal/domain/alert"
	"jma_alert_bot/internal/domain/guidance"
	"jma_alert_bot/internal/domain/notify"
	"jma_alert_bot/internal/infra/jma"
	"jma_alert_bot/internal/infra/observability"
)

// FeedFetcher retrieves the raw feed bytes for one run.
type FeedFetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// PipelineOptions control run behavior.
type PipelineOptions struct {
	// ForceSend bypasses dedup filtering and the guidance send gate; every
	// parsed alert and the current verdict go out. Store bookkeeping still
	// happens unless NoStore is also set.
	ForceSend bool
	// NoStore suppresses dedup store bookkeeping, leaving history untouched.
	NoStore bool
	// Guidance parameterizes the attendance decision function.
	Guidance guidance.Options
}

// PipelineService runs the fetch-parse-filter-notify pipeline. One external
// scheduler invokes RunOnce at a fixed interval; runs never overlap by
// assumption, so the state files have a single writer.
type PipelineService struct {
	fetcher    FeedFetcher
	store      alert.Store
	controller *guidance.Controller
	notifier   notify.Client
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *logrus.Logger
	opts       PipelineOptions
}

func NewPipelineService(
	fetcher FeedFetcher,
	store alert.Store,
	controller *guidance.Controller,
	notifier notify.Client,
	clock clockwork.Clock,
	metrics *observability.Metrics,
	logger *logrus.Logger,
	opts PipelineOptions,
) *PipelineService {
	return &PipelineService{
		fetcher:    fetcher,
		store:      store,
		controller: controller,
		notifier:   notifier,
		clock:      clock,
		metrics:    metrics,
		logger:     logger,
		opts:       opts,
	}
}

// RunOnce executes one pipeline run and returns the number of alert messages
// (announcements plus cancellation notices) sent. Fetch and send failures
// fail the run; the next scheduled run retries independently.
func (s *PipelineService) RunOnce(ctx context.Context) (int, error) {
	s.logger.Info("Starting pipeline run...")
	s.metrics.RunsTotal.Inc()
	start := time.Now()

	data, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.metrics.RunFailures.Inc()
		return 0, fmt.Errorf("fetch JMA feed: %w", err)
	}

	alerts := jma.Parse(data)
	s.metrics.AlertsParsed.Add(float64(len(alerts)))
	s.logger.WithField("count", len(alerts)).Info("Parsed alerts from JMA feed.")

	tokyoAlerts := alert.PickWards(alerts)
	s.logger.WithField("count", len(tokyoAlerts)).Info("Filtered alerts down to Tokyo's 23 wards.")

	batch := alert.Partition(s.store, tokyoAlerts, s.opts.ForceSend)

	sent := 0
	if len(batch.NewActive) > 0 {
		s.logger.WithField("count", len(batch.NewActive)).Info("Sending new alerts.")
		if err := s.notifier.SendNewAlerts(ctx, batch.NewActive); err != nil {
			s.metrics.RunFailures.Inc()
			return sent, fmt.Errorf("send new alerts: %w", err)
		}
		s.metrics.AlertsSent.Add(float64(len(batch.NewActive)))
		sent += len(batch.NewActive)
	}

	if len(batch.NewCancellations) > 0 {
		s.logger.WithField("count", len(batch.NewCancellations)).Info("Sending cancellation notices.")
		if err := s.notifier.SendCancellations(ctx, batch.NewCancellations); err != nil {
			s.metrics.RunFailures.Inc()
			return sent, fmt.Errorf("send cancellations: %w", err)
		}
		s.metrics.CancellationsSent.Add(float64(len(batch.NewCancellations)))
		sent += len(batch.NewCancellations)
	}

	if s.opts.NoStore {
		s.logger.Debug("NoStore is set; skipping dedup store bookkeeping.")
	} else if err := alert.RecordOutcome(s.store, batch); err != nil {
		// The notifications above are already out; losing this write only
		// risks a duplicate on the next run, which is the accepted tradeoff.
		s.logger.WithError(err).Error("Could not record sent alerts in the dedup store.")
	}

	if err := s.runGuidance(ctx, tokyoAlerts); err != nil {
		s.metrics.RunFailures.Inc()
		return sent, err
	}

	s.metrics.RunDuration.Observe(time.Since(start).Seconds())
	s.logger.WithField("sent", sent).Info("Pipeline run finished.")
	return sent, nil
}

// runGuidance evaluates the attendance verdict for now and announces it when
// the state machine (or force-send) says so.
func (s *PipelineService) runGuidance(ctx context.Context, tokyoAlerts []alert.Alert) error {
	now := s.clock.Now()
	verdict := guidance.Decide(tokyoAlerts, now, s.opts.Guidance)
	hasTarget := guidance.HasTargetWarning(tokyoAlerts)

	send := s.opts.ForceSend
	if !send {
		send = s.controller.ShouldSend(verdict, hasTarget, now)
	}
	if !send {
		return nil
	}

	s.logger.WithFields(logrus.Fields{
		"decision_point": verdict.DecisionPoint,
		"status":         verdict.Status,
		"has_target":     hasTarget,
	}).Info("Sending school guidance.")

	if err := s.notifier.SendGuidance(ctx, verdict); err != nil {
		return fmt.Errorf("send guidance: %w", err)
	}
	s.metrics.GuidanceSent.Inc()
	return nil
}
