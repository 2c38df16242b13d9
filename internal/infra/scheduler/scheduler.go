package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"jma_alert_bot/internal/app"
)

// jobTimeout bounds one pipeline run; a hung feed fetch must not pile runs up.
const jobTimeout = 2 * time.Minute

// PipelineScheduler triggers pipeline runs on a cron schedule. Runs are
// sequential in practice: the job is bounded by jobTimeout, which is well
// under the default 5 minute interval.
type PipelineScheduler struct {
	cronEngine *cron.Cron
	pipeline   *app.PipelineService
	logger     *logrus.Logger
	cronSpec   string
}

func NewPipelineScheduler(pipeline *app.PipelineService, logger *logrus.Logger, cronSpec string) *PipelineScheduler {
	return &PipelineScheduler{
		cronEngine: cron.New(cron.WithLocation(time.UTC)),
		pipeline:   pipeline,
		logger:     logger,
		cronSpec:   cronSpec,
	}
}

// Start registers the fetch job and starts the cron engine. An immediate
// first run is kicked off so a fresh deploy does not wait a full interval.
func (s *PipelineScheduler) Start() {
	s.logger.WithField("cron_spec", s.cronSpec).Info("Starting pipeline scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpec, s.runJob)
	if err != nil {
		s.logger.Fatalf("FATAL: Could not add pipeline cron job: %v", err)
	}

	go s.runJob()
	s.cronEngine.Start()
	s.logger.Info("Pipeline scheduler started.")
}

func (s *PipelineScheduler) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	sent, err := s.pipeline.RunOnce(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Pipeline run failed; will retry on next tick.")
		return
	}
	if sent > 0 {
		s.logger.WithField("sent", sent).Info("Pipeline run sent new notifications.")
	}
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *PipelineScheduler) Stop() {
	s.logger.Info("Stopping pipeline scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Pipeline scheduler gracefully stopped.")
}
