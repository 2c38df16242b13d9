package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	flag "github.com/spf13/pflag"

	"jma_alert_bot/internal/app"
	"jma_alert_bot/internal/domain/guidance"
	"jma_alert_bot/internal/infra/config"
	"jma_alert_bot/internal/infra/discord"
	"jma_alert_bot/internal/infra/jma"
	"jma_alert_bot/internal/infra/logger"
	"jma_alert_bot/internal/infra/observability"
	"jma_alert_bot/internal/infra/scheduler"
	"jma_alert_bot/internal/infra/storage"
)

func main() {
	once := flag.Bool("once", false, "run the pipeline a single time and exit")
	dryRun := flag.Bool("dry-run", false, "log notifications instead of delivering them")
	forceSend := flag.Bool("force-send", false, "bypass dedup filtering and send everything")
	noStore := flag.Bool("no-store", false, "do not record sent alerts in the dedup store")
	flag.Parse()

	cfg, err := loadConfig(*dryRun)
	if err != nil {
		logger.Log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}
	if *forceSend {
		cfg.ForceSend = true
	}
	if *noStore {
		cfg.NoStore = true
	}

	logger.Init(cfg)
	log := logger.Get()
	log.WithFields(map[string]interface{}{
		"feed_url":   cfg.JMAFeedURL,
		"data_dir":   cfg.DataDir,
		"dry_run":    cfg.DryRun,
		"force_send": cfg.ForceSend,
		"no_store":   cfg.NoStore,
	}).Info("Configuration loaded.")

	alertStore := storage.NewJSONAlertStore(filepath.Join(cfg.DataDir, "sent_ids.json"), log)
	stateRepo := storage.NewJSONGuidanceStateRepository(filepath.Join(cfg.DataDir, "guidance_state.json"), log)
	controller := guidance.NewController(stateRepo, log)

	notifier := discord.NewNotifier(discord.Config{
		WebhookURL:     cfg.DiscordWebhookURL,
		RoleID:         cfg.RoleID,
		MentionEnabled: cfg.RoleMentionEnabled,
		BaselineTime:   cfg.SchoolNormalTime,
		DryRun:         cfg.DryRun,
		Timeout:        cfg.HTTPTimeout,
	}, log)

	metrics := observability.NewMetrics()
	fetcher := jma.NewClient(cfg.JMAFeedURL, cfg.HTTPTimeout)

	pipeline := app.NewPipelineService(
		fetcher,
		alertStore,
		controller,
		notifier,
		clockwork.NewRealClock(),
		metrics,
		log,
		app.PipelineOptions{
			ForceSend: cfg.ForceSend,
			NoStore:   cfg.NoStore,
			Guidance: guidance.Options{
				Times: guidance.Times{
					Normal:    cfg.SchoolNormalTime,
					Period3:   cfg.SchoolPeriod3Time,
					Afternoon: cfg.SchoolAfternoonStart,
				},
				MonSatLateClearStatus: cfg.MonSatLateClearStatus,
			},
		},
	)

	if *once {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		sent, err := pipeline.RunOnce(ctx)
		if err != nil {
			log.Fatalf("FATAL: Pipeline run failed: %v", err)
		}
		log.WithField("sent", sent).Info("Single pipeline run finished.")
		return
	}

	if cfg.MetricsAddr != "" {
		go func() {
			log.WithField("addr", cfg.MetricsAddr).Info("Serving metrics.")
			if err := http.ListenAndServe(cfg.MetricsAddr, observability.Handler()); err != nil {
				log.WithError(err).Error("Metrics server stopped.")
			}
		}()
	}

	pipelineScheduler := scheduler.NewPipelineScheduler(pipeline, log, cfg.CronSpecFetch)
	pipelineScheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	pipelineScheduler.Stop()
	log.Info("Application shut down gracefully.")
}

// loadConfig loads configuration, honoring a CLI dry-run override before
// validation so that --dry-run works without a configured webhook.
func loadConfig(dryRunFlag bool) (*config.AppConfig, error) {
	if dryRunFlag {
		os.Setenv("DRY_RUN", "true")
	}
	return config.Load()
}
