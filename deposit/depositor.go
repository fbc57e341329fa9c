// Package deposit contains the insertion and versioning orchestrators that
// drive packages from the inventory into the remote repository.
package deposit

import (
	"context"
	"fmt"

	"github.com/arkivo/depositor/common/config"
	"github.com/arkivo/depositor/common/inventory"
	"github.com/arkivo/depositor/common/logger"
	"github.com/arkivo/depositor/common/models"
	"github.com/arkivo/depositor/descriptor"
	"github.com/arkivo/depositor/repoclient"
	"github.com/arkivo/depositor/resmap"
	"github.com/arkivo/depositor/resolver"
	"github.com/arkivo/depositor/upload"
)

// Depositor orchestrates package insertion and versioning. All
// collaborators are injected; the orchestrator never constructs its own
// store or repository client.
type Depositor struct {
	store       inventory.Store
	client      repoclient.Client
	resolver    *resolver.Resolver
	descriptors *descriptor.Builder
	uploads     *upload.Step
	resmaps     *resmap.Builder
	serializer  resmap.Serializer
	cfg         config.DepositConfig
	log         *logger.Logger
}

// New creates a depositor from an already-constructed store and client
func New(store inventory.Store, client repoclient.Client, cfg *config.Config, log *logger.Logger) (*Depositor, error) {
	builder, err := descriptor.NewBuilder(cfg.Deposit, descriptor.SHA256Hasher{}, log)
	if err != nil {
		return nil, fmt.Errorf("create descriptor builder: %w", err)
	}

	return &Depositor{
		store:       store,
		client:      client,
		resolver:    resolver.New(client, cfg.Repository.IdentifierScheme, log),
		descriptors: builder,
		uploads:     upload.NewStep(client, log),
		resmaps:     resmap.NewBuilder(log),
		serializer:  resmap.NTriplesSerializer{},
		cfg:         cfg.Deposit,
		log:         log,
	}, nil
}

// checkSession validates the session once up front. When it fails the
// whole call must be a no-op: partial work under an invalid session is
// worse than no work.
func (d *Depositor) checkSession(ctx context.Context) bool {
	err := d.client.Ping(ctx)
	if err == nil {
		return true
	}
	if repoclient.IsAuthExpired(err) {
		d.log.Warn("session expired, skipping deposit", "error", err)
	} else {
		d.log.Warn("repository unreachable, skipping deposit", "error", err)
	}
	return false
}

// splitPackage validates the package shape and separates the metadata
// record from the data records.
func splitPackage(packageID string, records []*models.InventoryRecord) (*models.InventoryRecord, []*models.InventoryRecord, error) {
	if len(records) == 0 {
		return nil, nil, &PreconditionError{PackageID: packageID, Reason: "no inventory records"}
	}

	var meta *models.InventoryRecord
	var data []*models.InventoryRecord
	for _, rec := range records {
		if rec.IsMetadata {
			if meta != nil {
				return nil, nil, &PreconditionError{PackageID: packageID, Reason: "more than one metadata record"}
			}
			meta = rec
		} else {
			data = append(data, rec)
		}
	}
	if meta == nil {
		return nil, nil, &PreconditionError{PackageID: packageID, Reason: "no metadata record"}
	}

	return meta, data, nil
}

// persistPID stores a freshly resolved identifier on a row
func (d *Depositor) persistPID(ctx context.Context, rec *models.InventoryRecord, pid string) error {
	if rec.PID == pid {
		return nil
	}
	rec.PID = pid
	if err := d.store.Update(ctx, rec); err != nil {
		return fmt.Errorf("persist identifier for %s: %w", rec.File, err)
	}
	return nil
}

// markCreated flips the created flag with an optimistic compare-and-swap.
// A lost swap means a concurrent run touched the row; the object is
// already uploaded, so the flag must still land. Re-read the row and
// retry against its current version rather than assuming the flip took.
func (d *Depositor) markCreated(ctx context.Context, rec *models.InventoryRecord) error {
	swapped, err := d.store.MarkCreated(ctx, rec.File, rec.Version)
	if err != nil {
		return fmt.Errorf("mark %s created: %w", rec.File, err)
	}
	if swapped {
		rec.Created = true
		rec.Version++
		return nil
	}

	d.log.Warn("concurrent inventory update detected", "file", rec.File)
	fresh, err := d.store.Get(ctx, rec.File)
	if err != nil {
		return fmt.Errorf("reload %s after lost swap: %w", rec.File, err)
	}
	*rec = *fresh

	if rec.Created {
		return nil
	}
	swapped, err = d.store.MarkCreated(ctx, rec.File, rec.Version)
	if err != nil {
		return fmt.Errorf("mark %s created: %w", rec.File, err)
	}
	if !swapped {
		return fmt.Errorf("mark %s created: row contention", rec.File)
	}
	rec.Created = true
	rec.Version++
	return nil
}

// buildResourceMap assembles the containment graph for a package from the
// current inventory rows.
func (d *Depositor) buildResourceMap(meta *models.InventoryRecord, data, children []*models.InventoryRecord, identifier string) (*models.ResourceMap, error) {
	dataPIDs := make([]string, 0, len(data))
	for _, rec := range data {
		dataPIDs = append(dataPIDs, rec.PID)
	}

	childPIDs := make([]string, 0, len(children))
	for _, child := range children {
		childPIDs = append(childPIDs, resmap.DeriveIdentifier(child.PID))
	}

	return d.resmaps.Build(resmap.Input{
		MetadataPID: meta.PID,
		DataPIDs:    dataPIDs,
		ChildPIDs:   childPIDs,
		ResolveBase: d.cfg.ResolveBase,
		Identifier:  identifier,
	})
}
