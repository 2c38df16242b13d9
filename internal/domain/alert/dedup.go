package alert

// Batch is the outcome of partitioning one pipeline run's alerts against the
// dedup store: which actives have never been announced, and which
// cancellations still need a lifting notice.
type Batch struct {
	NewActive        []Alert
	NewCancellations []Alert
}

// Partition splits a run's alerts into those that must be announced and those
// that must be announced as cancellations.
//
// An active alert is new when its ID has no store entry. A cancellation is
// announced when its ID was never seen (the original report may have been
// missed) or when the stored status is not yet cancelled. With force set the
// filtering is bypassed entirely and everything is returned.
func Partition(store Store, alerts []Alert, force bool) Batch {
	var b Batch
	for _, a := range alerts {
		if a.Status == StatusCancelled {
			if force {
				b.NewCancellations = append(b.NewCancellations, a)
				continue
			}
			st, ok := store.StatusOf(a.ID)
			if !ok || st != StatusCancelled {
				b.NewCancellations = append(b.NewCancellations, a)
			}
			continue
		}
		if force || !store.Contains(a.ID) {
			b.NewActive = append(b.NewActive, a)
		}
	}
	return b
}

// RecordOutcome books a sent batch back into the store: new actives are
// inserted as active, and each cancellation either transitions its existing
// entry to cancelled or is inserted as cancelled outright.
func RecordOutcome(store Store, b Batch) error {
	entries := make([]Entry, 0, len(b.NewActive)+len(b.NewCancellations))
	for _, a := range b.NewActive {
		entries = append(entries, Entry{ID: a.ID, Status: StatusActive})
	}

	var toCancel []string
	for _, a := range b.NewCancellations {
		if store.Contains(a.ID) {
			toCancel = append(toCancel, a.ID)
		} else {
			entries = append(entries, Entry{ID: a.ID, Status: StatusCancelled})
		}
	}

	if len(entries) > 0 {
		if err := store.RecordBatch(entries); err != nil {
			return err
		}
	}
	for _, id := range toCancel {
		if err := store.UpdateStatus(id, StatusCancelled); err != nil {
			return err
		}
	}
	return nil
}
