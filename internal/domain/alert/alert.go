package alert

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Status marks whether an alert is in force or has been lifted.
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

// ParseStatus converts a stored status string into a Status, reporting
// whether the value was one of the known states.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusActive, StatusCancelled:
		return Status(s), true
	default:
		return "", false
	}
}

// Alert is a normalized JMA bulletin entry.
//
// Category and severity carry the feed's native tokens (a mix of Japanese and
// English, e.g. 大雨警報 / 警報 / Advisory) and are matched verbatim downstream,
// so they must never be case-folded or transliterated.
type Alert struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Area      string     `json:"area"`
	Ward      string     `json:"ward,omitempty"` // one of the 23 wards when matched
	Category  string     `json:"category"`
	Severity  string     `json:"severity"`
	IssuedAt  time.Time  `json:"issued_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Link      string     `json:"link,omitempty"`
	Status    Status     `json:"status"`
}

// NewID derives the stable identifier for a logical warning.
// Only area and category participate: a follow-up report or a cancellation of
// the same warning (differing severity, timestamp, or status) must map to the
// same ID so the dedup store can recognize it.
func NewID(area, category string) string {
	sum := sha256.Sum256([]byte(area + "|" + category))
	return hex.EncodeToString(sum[:])[:16]
}
