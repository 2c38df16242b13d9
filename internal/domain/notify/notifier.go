package notify

import (
	"context"

	"jma_alert_bot/internal/domain/alert"
	"jma_alert_bot/internal/domain/guidance"
)

// Client defines the notification sink consumed by the pipeline. This keeps
// the application logic decoupled from the concrete delivery transport.
//
// Implementations may run in a dry mode that logs instead of delivering, and
// must return a configuration error when no delivery transport is set up.
// A single rejected message must not abort the rest of its batch.
type Client interface {
	SendNewAlerts(ctx context.Context, alerts []alert.Alert) error
	SendCancellations(ctx context.Context, alerts []alert.Alert) error
	SendGuidance(ctx context.Context, v guidance.Verdict) error
}
