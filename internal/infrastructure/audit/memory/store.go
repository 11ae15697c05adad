// Package memory is the audit store used when no database is configured.
// Same retention discipline as the postgres store, bounded to the process
// lifetime.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/petrolex/contract-engine/internal/core/domain"
)

type Store struct {
	mu        sync.Mutex
	records   []domain.AuditRecord
	retention time.Duration
}

func NewStore(retention time.Duration) *Store {
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	return &Store{retention: retention}
}

func (s *Store) Append(_ context.Context, rec domain.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked(time.Now().UTC())
	s.records = append(s.records, rec)
	return nil
}

func (s *Store) CountSince(_ context.Context, licenseKeyHash string, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, rec := range s.records {
		if rec.LicenseKeyHash == licenseKeyHash && !rec.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *Store) purgeLocked(now time.Time) {
	cutoff := now.Add(-s.retention)
	kept := s.records[:0]
	for _, rec := range s.records {
		if rec.CreatedAt.After(cutoff) {
			kept = append(kept, rec)
		}
	}
	s.records = kept
}
