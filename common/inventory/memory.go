package inventory

import (
	"context"
	"sort"
	"sync"

	"github.com/arkivo/depositor/common/models"
)

// MemoryStore is an in-memory inventory store for tests and single-shot
// runs. Rows are cloned on the way in and out so callers never share
// mutable state with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string]*models.InventoryRecord
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows: make(map[string]*models.InventoryRecord),
	}
}

// Seed inserts records as-is, keyed by file path. Intended for test setup
// and inventory bootstrap; overwrites existing rows.
func (s *MemoryStore) Seed(records ...*models.InventoryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		s.rows[rec.File] = rec.Clone()
	}
}

// Get returns the record keyed by file path
func (s *MemoryStore) Get(ctx context.Context, file string) (*models.InventoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.rows[file]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

// ListPackage returns all records of a package in inventory order
func (s *MemoryStore) ListPackage(ctx context.Context, packageID string) ([]*models.InventoryRecord, error) {
	return s.filter(func(rec *models.InventoryRecord) bool {
		return rec.PackageID() == packageID && packageID != ""
	}), nil
}

// ListChildren returns the metadata records of nested child packages
func (s *MemoryStore) ListChildren(ctx context.Context, packageID string) ([]*models.InventoryRecord, error) {
	return s.filter(func(rec *models.InventoryRecord) bool {
		return rec.IsMetadata && rec.ParentPackageID() == packageID && packageID != ""
	}), nil
}

// ListReady returns all records flagged ready for processing
func (s *MemoryStore) ListReady(ctx context.Context) ([]*models.InventoryRecord, error) {
	return s.filter(func(rec *models.InventoryRecord) bool {
		return rec.Ready
	}), nil
}

func (s *MemoryStore) filter(keep func(*models.InventoryRecord) bool) []*models.InventoryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []*models.InventoryRecord
	for _, rec := range s.rows {
		if keep(rec) {
			records = append(records, rec.Clone())
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].File < records[j].File
	})
	return records
}

// Update persists a row and bumps its version
func (s *MemoryStore) Update(ctx context.Context, rec *models.InventoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[rec.File]; !ok {
		return ErrNotFound
	}
	rec.Version++
	s.rows[rec.File] = rec.Clone()
	return nil
}

// MarkCreated performs an optimistic compare-and-swap on the created flag
func (s *MemoryStore) MarkCreated(ctx context.Context, file string, expectedVersion int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.rows[file]
	if !ok {
		return false, ErrNotFound
	}
	if rec.Version != expectedVersion {
		return false, nil
	}
	rec.Created = true
	rec.Version++
	return true, nil
}
