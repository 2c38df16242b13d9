package guidance

import (
	"time"

	"github.com/sirupsen/logrus"
)

// DailyState is the single-slot notification state for one local civil date.
// Observing a new date replaces the previous record wholesale; there is no
// backlog of historical days.
type DailyState struct {
	Date               string `json:"date"`
	LastSentDP         string `json:"last_sent_dp,omitempty"`
	LastSeenHasTarget  *bool  `json:"last_seen_has_target"`
	AnySeenTargetToday bool   `json:"any_seen_target_today"`
}

// StateRepository persists the daily guidance state. Load returns (nil, nil)
// when no usable prior state exists; implementations treat corrupt or missing
// files the same way, since a duplicate announcement is cheaper than a missed
// one.
type StateRepository interface {
	Load() (*DailyState, error)
	Save(st *DailyState) error
}

// Controller decides whether a guidance verdict must be announced, suppressing
// duplicates within the same decision window. Each pipeline invocation is a
// fresh process, so state is reloaded from the repository at the start of
// every decision rather than held in memory.
type Controller struct {
	repo   StateRepository
	logger *logrus.Logger
}

func NewController(repo StateRepository, logger *logrus.Logger) *Controller {
	return &Controller{repo: repo, logger: logger}
}

// ShouldSend evaluates one (verdict, has_target, now) observation and reports
// whether a guidance announcement is due. Rules, in precedence order:
//
//  1. First send at a 06/08/10 decision point not yet announced today, gated
//     on a target warning having been seen at least once today or being
//     present now. Quiet days therefore produce zero scheduled sends.
//  2. Within 06:00–09:59 JST, a flip of has_target since the last observation
//     triggers an update. The first observation of the window only records.
//  3. Otherwise no send; tracking fields are still kept accurate.
//
// State is persisted after every mutation. A failed write is logged and the
// decision stands: the message has already been (or is about to be) sent, and
// re-sending on the next run beats losing it.
func (c *Controller) ShouldSend(v Verdict, hasTarget bool, now time.Time) bool {
	local := JST(now)
	hhmm := local.Format("1504")
	date := local.Format("2006-01-02")

	st := c.load(date)

	dp := v.DecisionPoint
	if (dp == DecisionPoint06 || dp == DecisionPoint08 || dp == DecisionPoint10) &&
		st.LastSentDP != dp && (st.AnySeenTargetToday || hasTarget) {
		st.LastSentDP = dp
		c.observe(st, hasTarget)
		c.save(st)
		return true
	}

	if hhmm >= "0600" && hhmm < "1000" {
		if st.LastSeenHasTarget == nil {
			// First sample of the window: record, not a flip.
			c.observe(st, hasTarget)
			c.save(st)
			return false
		}
		if *st.LastSeenHasTarget != hasTarget {
			c.observe(st, hasTarget)
			c.save(st)
			return true
		}
	}

	if st.LastSeenHasTarget == nil || *st.LastSeenHasTarget != hasTarget ||
		(hasTarget && !st.AnySeenTargetToday) {
		c.observe(st, hasTarget)
		c.save(st)
	}
	return false
}

func (c *Controller) observe(st *DailyState, hasTarget bool) {
	seen := hasTarget
	st.LastSeenHasTarget = &seen
	st.AnySeenTargetToday = st.AnySeenTargetToday || hasTarget
}

// load returns the state for the given date, starting fresh when there is no
// prior state, it belongs to another date, or it cannot be read.
func (c *Controller) load(date string) *DailyState {
	st, err := c.repo.Load()
	if err != nil {
		c.logger.WithError(err).Warn("Could not read guidance state; starting fresh for the day.")
		st = nil
	}
	if st == nil || st.Date != date {
		return &DailyState{Date: date}
	}
	return st
}

func (c *Controller) save(st *DailyState) {
	if err := c.repo.Save(st); err != nil {
		c.logger.WithError(err).Error("Could not persist guidance state; the next run may re-announce.")
	}
}
