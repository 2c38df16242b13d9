package guidance

import (
	"strings"
	"time"

	"jma_alert_bot/internal/domain/alert"
)

// targetWarnings are the five hazard categories that trigger attendance
// guidance. The set is fixed by the school's policy document and matched by
// substring against the feed's controlled vocabulary.
var targetWarnings = []string{"暴風雪", "大雨", "洪水", "暴風", "大雪"}

// Times carries the school's configured attendance times.
type Times struct {
	Normal    string // normal first-period start, e.g. "08:10"
	Period3   string // third-period start, e.g. "10:20"
	Afternoon string // afternoon (fifth-period) start, e.g. "13:10"
}

// Options parameterizes the decision function.
type Options struct {
	Times Times
	// MonSatLateClearStatus is the status announced when warnings have
	// cleared at the 10:00 decision point on a Monday or Saturday. The policy
	// document has no rule for this case; the default keeps home study.
	MonSatLateClearStatus string
}

// staticNotes are boilerplate reminders attached to every verdict.
var staticNotes = []string{
	"6〜8時の登校中に警報が発令された場合は、自宅にもどって待機してください。",
	"東京23区外の通学区域に警報が出ている場合、遅刻・欠席扱いにはなりません。",
}

// IsTargetWarning reports whether an alert counts toward attendance guidance:
// one of the five target categories at warning or special-warning level.
// Advisories (注意報) never qualify, nor do cancelled alerts.
func IsTargetWarning(a alert.Alert) bool {
	if a.Status == alert.StatusCancelled {
		return false
	}
	name := strings.TrimSpace(a.Category)
	sev := strings.TrimSpace(a.Severity)
	if strings.Contains(sev, "注意報") {
		return false
	}
	matched := false
	for _, key := range targetWarnings {
		if strings.Contains(name, key) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	return strings.Contains(name, "警報") || strings.Contains(name, "特別警報") ||
		strings.Contains(sev, "警報") || strings.Contains(sev, "特別警報")
}

// HasTargetWarning reports whether any alert in the batch qualifies.
func HasTargetWarning(alerts []alert.Alert) bool {
	for _, a := range alerts {
		if IsTargetWarning(a) {
			return true
		}
	}
	return false
}

// Decide maps the current alerts and instant to an attendance verdict.
// Pure: same inputs always yield the same verdict, no side effects.
//
// Policy summary (times are JST):
//   - 06:00 check: any target warning → stay home / all clear → normal class
//   - 08:00 check: warning → home study on Mon/Sat, stay home otherwise /
//     clear → class from third period
//   - 10:00 check: warning → home study / clear → afternoon class Tue–Fri
//     (Mon/Sat per MonSatLateClearStatus, no authoritative rule)
func Decide(alerts []alert.Alert, now time.Time, opts Options) Verdict {
	local := JST(now)
	hhmm := local.Format("1504")
	weekday := isoWeekday(local)

	hasTarget := HasTargetWarning(alerts)

	v := Verdict{
		Date:    local.Format("2006-01-02"),
		Weekday: weekday,
		Notes:   staticNotes,
	}

	switch {
	case hhmm < "0600":
		v.DecisionPoint = DecisionPointPre6
		v.Status = StatusPre6Reference

	case hhmm < "0800":
		v.DecisionPoint = DecisionPoint06
		if hasTarget {
			v.Status = StatusStayHome
		} else {
			v.Status = StatusNormalClass
			v.AttendTime = opts.Times.Normal
		}

	case hhmm < "1000":
		v.DecisionPoint = DecisionPoint08
		if hasTarget {
			if weekday == 0 || weekday == 5 { // Mon or Sat
				v.Status = StatusHomeStudy
			} else {
				v.Status = StatusStayHome
			}
		} else {
			v.Status = StatusClassFromThird
			v.AttendTime = opts.Times.Period3
		}

	default:
		v.DecisionPoint = DecisionPoint10
		if hasTarget {
			v.Status = StatusHomeStudy
		} else if weekday >= 1 && weekday <= 4 { // Tue-Fri
			v.Status = StatusAfternoonClass
			v.AttendTime = opts.Times.Afternoon
		} else {
			v.Status = opts.MonSatLateClearStatus
			if v.Status == "" {
				v.Status = StatusHomeStudy
			}
		}
	}

	return v
}
