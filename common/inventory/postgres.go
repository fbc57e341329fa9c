package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/arkivo/depositor/common/db"
	"github.com/arkivo/depositor/common/models"
	"github.com/jackc/pgx/v5"
)

// PostgresStore is the pgx-backed inventory store.
type PostgresStore struct {
	db *db.DB
}

// NewPostgresStore creates a new Postgres inventory store
func NewPostgresStore(db *db.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const recordColumns = `file, filename, checksum, size, format_id, package, parent_package,
	is_metadata, pid, pid_old, created, resmap_created, ready, version`

func scanRecord(row pgx.Row) (*models.InventoryRecord, error) {
	rec := &models.InventoryRecord{}
	err := row.Scan(
		&rec.File,
		&rec.Filename,
		&rec.Checksum,
		&rec.Size,
		&rec.FormatID,
		&rec.Package,
		&rec.ParentPackage,
		&rec.IsMetadata,
		&rec.PID,
		&rec.PIDOld,
		&rec.Created,
		&rec.ResmapCreated,
		&rec.Ready,
		&rec.Version,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Get returns the record keyed by file path
func (s *PostgresStore) Get(ctx context.Context, file string) (*models.InventoryRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM inventory WHERE file = $1`, recordColumns)

	rec, err := scanRecord(s.db.QueryRow(ctx, query, file))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory record: %w", err)
	}

	return rec, nil
}

// ListPackage returns all records of a package in inventory order
func (s *PostgresStore) ListPackage(ctx context.Context, packageID string) ([]*models.InventoryRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM inventory
		WHERE package = $1
		ORDER BY file ASC
	`, recordColumns)

	return s.list(ctx, query, packageID)
}

// ListChildren returns the metadata records of nested child packages
func (s *PostgresStore) ListChildren(ctx context.Context, packageID string) ([]*models.InventoryRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM inventory
		WHERE parent_package = $1 AND is_metadata = true
		ORDER BY file ASC
	`, recordColumns)

	return s.list(ctx, query, packageID)
}

// ListReady returns all records flagged ready for processing
func (s *PostgresStore) ListReady(ctx context.Context) ([]*models.InventoryRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM inventory
		WHERE ready = true
		ORDER BY file ASC
	`, recordColumns)

	return s.list(ctx, query)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.InventoryRecord, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory records: %w", err)
	}
	defer rows.Close()

	var records []*models.InventoryRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory records: %w", err)
	}

	return records, nil
}

// Update persists a row and bumps its version
func (s *PostgresStore) Update(ctx context.Context, rec *models.InventoryRecord) error {
	query := `
		UPDATE inventory
		SET filename = $2, checksum = $3, size = $4, format_id = $5,
		    package = $6, parent_package = $7, is_metadata = $8,
		    pid = $9, pid_old = $10, created = $11, resmap_created = $12,
		    ready = $13, version = version + 1
		WHERE file = $1
		RETURNING version
	`

	err := s.db.QueryRow(ctx, query,
		rec.File,
		rec.Filename,
		rec.Checksum,
		rec.Size,
		rec.FormatID,
		rec.Package,
		rec.ParentPackage,
		rec.IsMetadata,
		rec.PID,
		rec.PIDOld,
		rec.Created,
		rec.ResmapCreated,
		rec.Ready,
	).Scan(&rec.Version)

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update inventory record: %w", err)
	}

	return nil
}

// MarkCreated performs an optimistic compare-and-swap on the created flag
func (s *PostgresStore) MarkCreated(ctx context.Context, file string, expectedVersion int64) (bool, error) {
	query := `
		UPDATE inventory
		SET created = true, version = version + 1
		WHERE file = $1 AND version = $2
		RETURNING version
	`

	var newVersion int64
	err := s.db.QueryRow(ctx, query, file, expectedVersion).Scan(&newVersion)
	if errors.Is(err, pgx.ErrNoRows) {
		// Version moved under us, CAS failed
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to mark record created: %w", err)
	}

	return true, nil
}
