package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"jma_alert_bot/internal/domain/alert"
	"jma_alert_bot/internal/domain/guidance"
)

// ErrNotConfigured is returned when a send is attempted without a webhook URL
// and outside dry-run mode. It is a configuration failure, distinct from a
// transient delivery failure, and fails the whole run.
var ErrNotConfigured = errors.New("discord notifier is not configured: set DISCORD_WEBHOOK_URL")

// Discord embed colours, matching the severity palette of the feed.
const (
	colorDarkRed   = 0x992D22 // 特別警報 / emergency
	colorOrange    = 0xE67E22 // 警報 / warning
	colorGold      = 0xF1C40F // 注意報 / advisory
	colorLightGrey = 0x979C9F
	colorGreen     = 0x2ECC71 // cancellation
	colorBlue      = 0x3498DB // guidance
)

const maxDescriptionLen = 4096

// Notifier delivers alert and guidance messages to a Discord channel via an
// incoming webhook. In dry-run mode every send is logged instead of delivered.
type Notifier struct {
	webhookURL     string
	roleID         string
	mentionEnabled bool
	baselineTime   string // normal attendance time; deviations trigger a role mention
	dryRun         bool
	httpClient     *http.Client
	logger         *logrus.Logger
}

type Config struct {
	WebhookURL     string
	RoleID         string
	MentionEnabled bool
	BaselineTime   string
	DryRun         bool
	Timeout        time.Duration
}

func NewNotifier(cfg Config, logger *logrus.Logger) *Notifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Notifier{
		webhookURL:     cfg.WebhookURL,
		roleID:         cfg.RoleID,
		mentionEnabled: cfg.MentionEnabled,
		baselineTime:   cfg.BaselineTime,
		dryRun:         cfg.DryRun,
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logger,
	}
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []embedField `json:"fields,omitempty"`
	Footer      *embedFooter `json:"footer,omitempty"`
}

type webhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []embed `json:"embeds,omitempty"`
}

// SendNewAlerts implements notify.Client.
func (n *Notifier) SendNewAlerts(ctx context.Context, alerts []alert.Alert) error {
	if len(alerts) == 0 {
		n.logger.Info("No new alerts to send.")
		return nil
	}
	payloads := make([]webhookPayload, 0, len(alerts))
	for _, a := range alerts {
		payloads = append(payloads, webhookPayload{Embeds: []embed{alertEmbed(a)}})
	}
	return n.deliver(ctx, "alert", payloads)
}

// SendCancellations implements notify.Client. Entries that are not actually
// cancelled are skipped defensively.
func (n *Notifier) SendCancellations(ctx context.Context, alerts []alert.Alert) error {
	var payloads []webhookPayload
	for _, a := range alerts {
		if a.Status != alert.StatusCancelled {
			continue
		}
		payloads = append(payloads, webhookPayload{Embeds: []embed{cancellationEmbed(a)}})
	}
	if len(payloads) == 0 {
		n.logger.Info("No cancellations to send.")
		return nil
	}
	return n.deliver(ctx, "cancellation", payloads)
}

// SendGuidance implements notify.Client. The configured role is mentioned
// exactly once when the verdict's attendance time deviates from the normal
// baseline, so routine all-normal messages stay quiet.
func (n *Notifier) SendGuidance(ctx context.Context, v guidance.Verdict) error {
	payload := webhookPayload{Embeds: []embed{guidanceEmbed(v)}}
	if n.mentionEnabled && n.roleID != "" && v.AttendTime != n.baselineTime {
		payload.Content = fmt.Sprintf("<@&%s>", n.roleID)
	}
	return n.deliver(ctx, "guidance", []webhookPayload{payload})
}

// deliver posts each payload to the webhook. A single failed message is
// logged and skipped; the rest of the batch still goes out.
func (n *Notifier) deliver(ctx context.Context, kind string, payloads []webhookPayload) error {
	if n.dryRun {
		for i, p := range payloads {
			title := ""
			if len(p.Embeds) > 0 {
				title = p.Embeds[0].Title
			}
			n.logger.WithFields(logrus.Fields{"kind": kind, "index": i + 1, "total": len(payloads), "title": title}).
				Info("[DRY-RUN] Would send message.")
		}
		return nil
	}
	if n.webhookURL == "" {
		return ErrNotConfigured
	}

	n.logger.WithFields(logrus.Fields{"kind": kind, "count": len(payloads)}).Info("Sending messages via webhook.")
	for i, p := range payloads {
		if err := n.post(ctx, p); err != nil {
			n.logger.WithError(err).WithFields(logrus.Fields{"kind": kind, "index": i + 1, "total": len(payloads)}).
				Error("Failed to send message via webhook; skipping.")
		}
	}
	return nil
}

func (n *Notifier) post(ctx context.Context, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func alertEmbed(a alert.Alert) embed {
	area := a.Ward
	if area == "" {
		area = a.Area
	}
	description := fmt.Sprintf("**Area**: %s\n", area)
	if len(description) > maxDescriptionLen {
		description = description[:maxDescriptionLen-3] + "..."
	}
	return embed{
		Title:       a.Category,
		Description: description,
		URL:         a.Link,
		Timestamp:   a.IssuedAt.Format(time.RFC3339),
		Color:       severityColor(a.Severity),
	}
}

func cancellationEmbed(a alert.Alert) embed {
	area := a.Ward
	if area == "" {
		area = a.Area
	}
	return embed{
		Title:       "【解除】気象警報・注意報",
		Description: "以下の地域の警報・注意報は解除されました。",
		URL:         a.Link,
		Timestamp:   a.IssuedAt.Format(time.RFC3339),
		Color:       colorGreen,
		Fields: []embedField{
			{Name: "地域", Value: area},
			{Name: "解除された警報・注意報", Value: a.Category},
		},
		Footer: &embedFooter{Text: "気象庁 | JMA"},
	}
}

func guidanceEmbed(v guidance.Verdict) embed {
	var b strings.Builder
	fmt.Fprintf(&b, "**判定**: %s\n", v.Status)
	if v.AttendTime != "" {
		fmt.Fprintf(&b, "**登校時刻**: %s\n", v.AttendTime)
	}
	if len(v.Notes) > 0 {
		b.WriteString("\n")
		for _, note := range v.Notes {
			fmt.Fprintf(&b, "- %s\n", note)
		}
	}
	description := b.String()
	if len(description) > maxDescriptionLen {
		description = description[:maxDescriptionLen-3] + "..."
	}
	return embed{
		Title:       fmt.Sprintf("登校ガイダンス（%s）", decisionPointLabel(v.DecisionPoint)),
		Description: description,
		Color:       colorBlue,
		Footer:      &embedFooter{Text: v.Date},
	}
}

func decisionPointLabel(dp string) string {
	switch dp {
	case guidance.DecisionPoint06:
		return "6時判定"
	case guidance.DecisionPoint08:
		return "8時判定"
	case guidance.DecisionPoint10:
		return "10時判定"
	default:
		return "6時判定前"
	}
}

func severityColor(severity string) int {
	s := strings.ToLower(strings.TrimSpace(severity))
	switch {
	case s == "emergency", strings.Contains(s, "特別警報"):
		return colorDarkRed
	case s == "warning", strings.Contains(s, "警報"):
		return colorOrange
	case s == "advisory", strings.Contains(s, "注意報"):
		return colorGold
	default:
		return colorLightGrey
	}
}
