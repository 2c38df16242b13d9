package guidance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jma_alert_bot/internal/domain/alert"
)

var testOptions = Options{
	Times: Times{
		Normal:    "08:10",
		Period3:   "10:20",
		Afternoon: "13:10",
	},
	MonSatLateClearStatus: StatusHomeStudy,
}

func makeAlert(category, severity string) alert.Alert {
	return alert.Alert{
		ID:       alert.NewID("東京都千代田区", category),
		Title:    category,
		Area:     "東京都千代田区",
		Ward:     "千代田区",
		Category: category,
		Severity: severity,
		IssuedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:   alert.StatusActive,
	}
}

// jstInstant returns the UTC instant corresponding to the given JST civil time.
func jstInstant(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC).Add(-9 * time.Hour)
}

func TestIsTargetWarning(t *testing.T) {
	tests := []struct {
		name     string
		category string
		severity string
		want     bool
	}{
		{"heavy rain warning", "大雨警報", "警報", true},
		{"storm warning", "暴風警報", "警報", true},
		{"blizzard special warning", "暴風雪特別警報", "特別警報", true},
		{"flood warning", "洪水警報", "警報", true},
		{"heavy snow warning", "大雪警報", "警報", true},
		{"advisory severity excluded", "大雨注意報", "注意報", false},
		{"non-target category", "強風注意報", "注意報", false},
		{"thunderstorm not a target", "雷注意報", "注意報", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTargetWarning(makeAlert(tc.category, tc.severity)))
		})
	}

	t.Run("cancelled alerts never qualify", func(t *testing.T) {
		a := makeAlert("大雨警報", "警報")
		a.Status = alert.StatusCancelled
		assert.False(t, IsTargetWarning(a))
	})
}

func TestDecide_6amWithWarningStaysHome(t *testing.T) {
	now := jstInstant(2024, 1, 3, 6, 0)
	v := Decide([]alert.Alert{makeAlert("大雨警報", "警報")}, now, testOptions)
	assert.Equal(t, DecisionPoint06, v.DecisionPoint)
	assert.Equal(t, StatusStayHome, v.Status)
	assert.Empty(t, v.AttendTime)
}

func TestDecide_6amAllClearNormalClass(t *testing.T) {
	now := jstInstant(2024, 1, 3, 6, 30)
	v := Decide(nil, now, testOptions)
	assert.Equal(t, DecisionPoint06, v.DecisionPoint)
	assert.Equal(t, StatusNormalClass, v.Status)
	assert.Equal(t, "08:10", v.AttendTime)
}

func TestDecide_8amTuesdayWithWarningStaysHome(t *testing.T) {
	now := jstInstant(2024, 1, 2, 8, 10) // Tuesday
	v := Decide([]alert.Alert{makeAlert("暴風警報", "警報")}, now, testOptions)
	assert.Equal(t, DecisionPoint08, v.DecisionPoint)
	assert.Equal(t, StatusStayHome, v.Status)
	assert.Empty(t, v.AttendTime)
}

func TestDecide_8amMondayWithWarningHomeStudy(t *testing.T) {
	now := jstInstant(2024, 1, 1, 8, 15) // Monday
	v := Decide([]alert.Alert{makeAlert("大雪警報", "警報")}, now, testOptions)
	assert.Equal(t, DecisionPoint08, v.DecisionPoint)
	assert.Equal(t, StatusHomeStudy, v.Status)
	assert.Empty(t, v.AttendTime)
}

func TestDecide_8amAllClearThirdPeriod(t *testing.T) {
	now := jstInstant(2024, 1, 2, 8, 30)
	v := Decide(nil, now, testOptions)
	assert.Equal(t, DecisionPoint08, v.DecisionPoint)
	assert.Equal(t, StatusClassFromThird, v.Status)
	assert.Equal(t, "10:20", v.AttendTime)
}

func TestDecide_10amClearWeekdayAfternoonClass(t *testing.T) {
	now := jstInstant(2024, 1, 2, 10, 10) // Tuesday
	v := Decide(nil, now, testOptions)
	assert.Equal(t, DecisionPoint10, v.DecisionPoint)
	assert.Equal(t, StatusAfternoonClass, v.Status)
	assert.Equal(t, "13:10", v.AttendTime)
}

func TestDecide_10amClearSaturdayNoAfternoonClass(t *testing.T) {
	now := jstInstant(2024, 1, 6, 10, 10) // Saturday
	v := Decide(nil, now, testOptions)
	assert.Equal(t, DecisionPoint10, v.DecisionPoint)
	assert.Equal(t, StatusHomeStudy, v.Status)
	assert.Empty(t, v.AttendTime)
}

func TestDecide_10amClearMonSatStatusIsConfigurable(t *testing.T) {
	opts := testOptions
	opts.MonSatLateClearStatus = StatusAfternoonClass

	now := jstInstant(2024, 1, 6, 10, 10) // Saturday
	v := Decide(nil, now, opts)
	assert.Equal(t, StatusAfternoonClass, v.Status)
}

func TestDecide_10amWithWarningHomeStudy(t *testing.T) {
	now := jstInstant(2024, 1, 2, 10, 30)
	v := Decide([]alert.Alert{makeAlert("洪水警報", "警報")}, now, testOptions)
	assert.Equal(t, DecisionPoint10, v.DecisionPoint)
	assert.Equal(t, StatusHomeStudy, v.Status)
}

func TestDecide_Pre6IsReferenceOnly(t *testing.T) {
	now := jstInstant(2024, 1, 2, 5, 45)

	withWarning := Decide([]alert.Alert{makeAlert("大雨警報", "警報")}, now, testOptions)
	assert.Equal(t, DecisionPointPre6, withWarning.DecisionPoint)
	assert.Equal(t, StatusPre6Reference, withWarning.Status)

	// The pre-6 band does not depend on warning presence.
	clear := Decide(nil, now, testOptions)
	assert.Equal(t, withWarning.Status, clear.Status)
}

func TestDecide_AdvisoryOnlyIsIgnored(t *testing.T) {
	now := jstInstant(2024, 1, 3, 6, 0)
	v := Decide([]alert.Alert{makeAlert("強風注意報", "注意報")}, now, testOptions)
	assert.Equal(t, StatusNormalClass, v.Status)
}

func TestDecide_CancelledWarningIsIgnored(t *testing.T) {
	a := makeAlert("大雨警報", "警報")
	a.Status = alert.StatusCancelled
	now := jstInstant(2024, 1, 3, 6, 0)
	v := Decide([]alert.Alert{a}, now, testOptions)
	assert.Equal(t, StatusNormalClass, v.Status)
}

func TestDecide_IsPure(t *testing.T) {
	now := jstInstant(2024, 1, 1, 8, 10)
	alerts := []alert.Alert{makeAlert("大雨警報", "警報")}

	first := Decide(alerts, now, testOptions)
	second := Decide(alerts, now, testOptions)
	assert.Equal(t, first, second)
}

func TestDecide_VerdictMetadata(t *testing.T) {
	now := jstInstant(2024, 1, 1, 8, 10) // Monday
	v := Decide(nil, now, testOptions)

	require.Equal(t, "2024-01-01", v.Date)
	assert.Equal(t, 0, v.Weekday) // ISO Monday
	assert.NotEmpty(t, v.Notes)
}

func TestJST(t *testing.T) {
	utc := time.Date(2024, 1, 2, 21, 0, 0, 0, time.UTC)
	local := JST(utc)
	assert.Equal(t, "2024-01-03 06:00", local.Format("2006-01-02 15:04"))
}
