package guidance

import "time"

// Decision points at which an authoritative attendance verdict is
// (re)established. Pre6 is informational only and never triggers a send.
const (
	DecisionPointPre6 = "pre6"
	DecisionPoint06   = "06"
	DecisionPoint08   = "08"
	DecisionPoint10   = "10"
)

// Attendance status strings. These are the school's own wording and are
// delivered verbatim, so they stay in Japanese.
const (
	StatusPre6Reference  = "参考: 6時の判定前"
	StatusStayHome       = "自宅待機"
	StatusNormalClass    = "平常授業"
	StatusClassFromThird = "第3時限から授業"
	StatusHomeStudy      = "自宅学習"
	StatusAfternoonClass = "午後から授業"
)

// Verdict is the attendance recommendation computed for one instant.
// It is produced fresh on every pipeline run and never persisted; only the
// decision to notify about it is.
type Verdict struct {
	Date          string   // local civil date, YYYY-MM-DD
	DecisionPoint string   // pre6, 06, 08 or 10
	Weekday       int      // ISO weekday, Monday=0 .. Sunday=6
	Status        string   // attendance status string
	AttendTime    string   // HH:MM when attendance is expected, empty otherwise
	Notes         []string // static reminders, passed through to the message
}

// JST converts an instant to Japan civil time using the fixed +9h offset.
// Japan observes no daylight saving time.
func JST(t time.Time) time.Time {
	return t.UTC().Add(9 * time.Hour)
}

// isoWeekday maps Go's Sunday-based weekday to Monday=0 .. Sunday=6.
func isoWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
