package jma

import (
	"encoding/xml"
	"time"

	"jma_alert_bot/internal/domain/alert"
)

// cancellation markers in JMA bulletins: a report-level InfoType of 取消
// voids every item, a per-item Kind status of 解除 lifts that one warning.
const (
	infoTypeCancelled = "取消"
	kindStatusCleared = "解除"
)

type reportXML struct {
	XMLName xml.Name `xml:"Report"`
	Head    struct {
		Title          string `xml:"Title"`
		InfoType       string `xml:"InfoType"`
		ReportDateTime string `xml:"ReportDateTime"`
	} `xml:"Head"`
	Body struct {
		Items []itemXML `xml:"Warning>Item"`
	} `xml:"Body"`
}

type itemXML struct {
	Area struct {
		Name string `xml:"Name"`
	} `xml:"Area"`
	Kind struct {
		Name   string `xml:"Name"`
		Status string `xml:"Status"`
	} `xml:"Kind"`
}

// Parse normalizes a JMA weather-warning bulletin into alert records.
// It is deliberately tolerant: malformed XML yields an empty slice rather
// than an error, since one bad bulletin must not poison the polling loop.
//
// JMA publishes several schemas; this handles the weather warning/advisory
// shape (Body/Warning/Item with Area and Kind children).
func Parse(data []byte) []alert.Alert {
	var report reportXML
	if err := xml.Unmarshal(data, &report); err != nil {
		return nil
	}

	issuedAt := parseReportTime(report.Head.ReportDateTime)
	reportCancelled := report.Head.InfoType == infoTypeCancelled

	var alerts []alert.Alert
	for _, item := range report.Body.Items {
		area := item.Area.Name
		if area == "" {
			area = "Unknown"
		}
		category := item.Kind.Name
		if category == "" {
			category = "Unknown"
		}
		severity := item.Kind.Status
		if severity == "" {
			severity = "Unknown"
		}

		status := alert.StatusActive
		if reportCancelled || item.Kind.Status == kindStatusCleared {
			status = alert.StatusCancelled
		}

		title := report.Head.Title
		if title == "" {
			title = category + " - " + area
		}

		alerts = append(alerts, alert.Alert{
			ID:       alert.NewID(area, category),
			Title:    title,
			Area:     area,
			Category: category,
			Severity: severity,
			IssuedAt: issuedAt,
			Status:   status,
		})
	}

	// A titled report without items still carries information (e.g. an
	// all-areas headline); surface it as a single area-less alert.
	if len(alerts) == 0 && report.Head.Title != "" {
		status := alert.StatusActive
		if reportCancelled {
			status = alert.StatusCancelled
		}
		alerts = append(alerts, alert.Alert{
			ID:       alert.NewID("Unknown", report.Head.Title),
			Title:    report.Head.Title,
			Area:     "Unknown",
			Category: "Unknown",
			Severity: "Unknown",
			IssuedAt: issuedAt,
			Status:   status,
		})
	}

	return alerts
}

// parseReportTime parses the bulletin timestamp, falling back to the current
// time when it is absent or malformed so downstream ordering still works.
func parseReportTime(s string) time.Time {
	if s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}
