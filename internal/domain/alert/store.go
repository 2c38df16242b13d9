package alert

// Entry pairs an alert ID with the status it should be recorded under.
type Entry struct {
	ID     string
	Status Status
}

// Store persists which alerts have already been notified, keyed by the
// stable alert ID. Implementations own their backing file exclusively for
// the duration of one pipeline run.
type Store interface {
	// Contains reports whether the ID has any entry, regardless of status.
	Contains(id string) bool
	// StatusOf returns the recorded status for an ID, if present.
	StatusOf(id string) (Status, bool)
	// RecordBatch inserts each entry whose ID is absent. IDs already present
	// keep their current status; transitions go through UpdateStatus.
	RecordBatch(entries []Entry) error
	// UpdateStatus overwrites the status of an existing ID. Unknown IDs and
	// unknown statuses are logged no-ops.
	UpdateStatus(id string, status Status) error
}
