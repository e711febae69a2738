// Package store holds the current health record and its summaries in memory.
package store

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/caresynapse/healthsummary/internal/record"
)

// ErrStaleSnapshot is returned when summaries computed from an older
// revision are offered after the record changed.
var ErrStaleSnapshot = errors.New("record changed since snapshot was taken")

// Snapshot is an immutable copy of the record at a revision
type Snapshot struct {
	Record   record.HealthRecord
	Revision uint64
}

// Store is the single authoritative holder of the session's record and
// summaries. Every mutation bumps the revision; only Replace clears
// summaries. Reads return copies.
type Store struct {
	mu        sync.RWMutex
	rec       record.HealthRecord
	summaries *record.AiSummaries
	revision  uint64
	logger    *zap.Logger
}

// New creates a store holding an empty record
func New(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		rec:      record.New(),
		revision: 1,
		logger:   logger,
	}
}

// Record returns a copy of the current record
func (s *Store) Record() record.HealthRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec.Clone()
}

// Snapshot returns a copy of the current record tagged with its revision
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Record: s.rec.Clone(), Revision: s.revision}
}

// Revision returns the current revision
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Summaries returns a copy of the current summaries, if any
func (s *Store) Summaries() (record.AiSummaries, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.summaries == nil {
		return record.AiSummaries{}, false
	}
	return s.summaries.Clone(), true
}

// Replace swaps in a new record wholesale and clears summaries. The record
// is normalized first so every sequence is present and every item has a
// unique identity. The stored copy is returned.
func (s *Store) Replace(rec record.HealthRecord) record.HealthRecord {
	rec = rec.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = rec
	s.summaries = nil
	s.revision++
	s.logger.Debug("record replaced", zap.Uint64("revision", s.revision))
	return rec.Clone()
}

// SetSummaries stores summaries unconditionally
func (s *Store) SetSummaries(sum record.AiSummaries) {
	sum = sum.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = &sum
}

// SetSummariesFor stores summaries only if the record is still at revision
func (s *Store) SetSummariesFor(revision uint64, sum record.AiSummaries) error {
	sum = sum.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revision != revision {
		s.logger.Warn("discarding summaries for stale snapshot",
			zap.Uint64("snapshot_revision", revision),
			zap.Uint64("current_revision", s.revision))
		return ErrStaleSnapshot
	}
	s.summaries = &sum
	return nil
}

// ClearSummaries drops any stored summaries
func (s *Store) ClearSummaries() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = nil
}

// UpdatePatientField edits one demographic field in place
func (s *Store) UpdatePatientField(field, value string) error {
	return s.mutate(func(r *record.HealthRecord) error {
		return r.UpdatePatientField(field, value)
	})
}

// AddItem appends a new item to section and returns its identity
func (s *Store) AddItem(section record.Section, fields map[string]string) (string, error) {
	var id string
	err := s.mutate(func(r *record.HealthRecord) error {
		var err error
		id, err = r.AddItem(section, fields)
		return err
	})
	return id, err
}

// UpdateItemField edits one field of the item matched by id
func (s *Store) UpdateItemField(section record.Section, id, field, value string) error {
	return s.mutate(func(r *record.HealthRecord) error {
		return r.UpdateItemField(section, id, field, value)
	})
}

// RemoveItem deletes the item matched by id
func (s *Store) RemoveItem(section record.Section, id string) error {
	return s.mutate(func(r *record.HealthRecord) error {
		return r.RemoveItem(section, id)
	})
}

// mutate applies fn to the live record. Item edits are drafts and leave
// summaries alone, but they do move the revision so in-flight summaries
// for the old content are rejected.
func (s *Store) mutate(fn func(r *record.HealthRecord) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(&s.rec); err != nil {
		return err
	}
	s.revision++
	return nil
}
