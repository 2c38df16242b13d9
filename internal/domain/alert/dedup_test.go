package alert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store for partitioning tests; the file-backed
// implementation has its own tests in internal/infra/storage.
type memStore struct {
	entries map[string]Status
}

func newMemStore() *memStore {
	return &memStore{entries: map[string]Status{}}
}

func (s *memStore) Contains(id string) bool {
	_, ok := s.entries[id]
	return ok
}

func (s *memStore) StatusOf(id string) (Status, bool) {
	st, ok := s.entries[id]
	return st, ok
}

func (s *memStore) RecordBatch(entries []Entry) error {
	for _, e := range entries {
		if _, ok := s.entries[e.ID]; !ok {
			s.entries[e.ID] = e.Status
		}
	}
	return nil
}

func (s *memStore) UpdateStatus(id string, status Status) error {
	if _, ok := s.entries[id]; ok {
		s.entries[id] = status
	}
	return nil
}

func TestPartition_NewActives(t *testing.T) {
	store := newMemStore()
	a := makeAlert("東京都千代田区", "大雨警報", StatusActive)
	b := makeAlert("東京都新宿区", "暴風警報", StatusActive)

	batch := Partition(store, []Alert{a, b}, false)
	assert.Len(t, batch.NewActive, 2)
	assert.Empty(t, batch.NewCancellations)
}

func TestPartition_Idempotent(t *testing.T) {
	store := newMemStore()
	batch := []Alert{
		makeAlert("東京都千代田区", "大雨警報", StatusActive),
		makeAlert("東京都新宿区", "暴風警報", StatusActive),
	}

	first := Partition(store, batch, false)
	require.Len(t, first.NewActive, 2)
	require.NoError(t, RecordOutcome(store, first))

	// Replaying the same batch yields nothing new to send.
	second := Partition(store, batch, false)
	assert.Empty(t, second.NewActive)
	assert.Empty(t, second.NewCancellations)
}

func TestPartition_CancellationTransition(t *testing.T) {
	store := newMemStore()
	active := makeAlert("東京都千代田区", "大雨警報", StatusActive)
	require.NoError(t, RecordOutcome(store, Batch{NewActive: []Alert{active}}))

	cancelled := active
	cancelled.Status = StatusCancelled

	batch := Partition(store, []Alert{cancelled}, false)
	require.Len(t, batch.NewCancellations, 1)
	require.NoError(t, RecordOutcome(store, batch))

	st, ok := store.StatusOf(active.ID)
	require.True(t, ok)
	assert.Equal(t, StatusCancelled, st)

	// Resubmitting the same cancellation yields no further send.
	again := Partition(store, []Alert{cancelled}, false)
	assert.Empty(t, again.NewCancellations)
}

func TestPartition_CancellationForUnseenAlert(t *testing.T) {
	// The active report could have been missed; a cancellation for an unseen
	// ID is still announced.
	store := newMemStore()
	cancelled := makeAlert("東京都港区", "洪水警報", StatusCancelled)

	batch := Partition(store, []Alert{cancelled}, false)
	require.Len(t, batch.NewCancellations, 1)
	require.NoError(t, RecordOutcome(store, batch))

	st, ok := store.StatusOf(cancelled.ID)
	require.True(t, ok)
	assert.Equal(t, StatusCancelled, st)
}

func TestPartition_ForceSendBypassesFiltering(t *testing.T) {
	store := newMemStore()
	active := makeAlert("東京都千代田区", "大雨警報", StatusActive)
	require.NoError(t, RecordOutcome(store, Batch{NewActive: []Alert{active}}))

	cancelled := makeAlert("東京都新宿区", "暴風警報", StatusCancelled)
	require.NoError(t, RecordOutcome(store, Batch{NewCancellations: []Alert{cancelled}}))

	batch := Partition(store, []Alert{active, cancelled}, true)
	assert.Len(t, batch.NewActive, 1)
	assert.Len(t, batch.NewCancellations, 1)
}
