package inventory

import (
	"context"
	"errors"

	"github.com/arkivo/depositor/common/models"
)

// ErrNotFound is returned when a record does not exist in the store.
var ErrNotFound = errors.New("inventory record not found")

// Store is the row-level interface to the deposit inventory. Orchestrators
// receive a Store explicitly; there is no process-wide table. Updates target
// single rows so concurrent runs over different packages only contend on
// rows they both touch.
type Store interface {
	// Get returns the record keyed by file path.
	Get(ctx context.Context, file string) (*models.InventoryRecord, error)

	// ListPackage returns all records belonging to a package, in inventory
	// order (ascending file path).
	ListPackage(ctx context.Context, packageID string) ([]*models.InventoryRecord, error)

	// ListChildren returns the metadata records of packages nested under
	// the given package.
	ListChildren(ctx context.Context, packageID string) ([]*models.InventoryRecord, error)

	// ListReady returns all records flagged ready for processing.
	ListReady(ctx context.Context) ([]*models.InventoryRecord, error)

	// Update persists a row and bumps its version.
	Update(ctx context.Context, rec *models.InventoryRecord) error

	// MarkCreated sets created=true on a row if its version still matches
	// expectedVersion. Returns false when another writer got there first.
	MarkCreated(ctx context.Context, file string, expectedVersion int64) (bool, error)
}
