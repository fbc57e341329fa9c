package deposit

import (
	"context"
	"fmt"

	"github.com/arkivo/depositor/common/models"
	"github.com/arkivo/depositor/resmap"
)

// InsertFile processes a single loose file: resolve identifier, build
// descriptor, upload. Returns the (possibly partially) updated inventory
// subset; callers inspect the record's flags, not errors, to learn how far
// processing got.
func (d *Depositor) InsertFile(ctx context.Context, filePath string) ([]*models.InventoryRecord, error) {
	rec, err := d.store.Get(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("load inventory record: %w", err)
	}
	records := []*models.InventoryRecord{rec}

	if rec.Created {
		d.log.Info("object already created, nothing to do", "file", rec.File, "pid", rec.PID)
		return records, nil
	}

	if !d.checkSession(ctx) {
		return records, nil
	}

	if !d.insertRecord(ctx, rec) {
		return records, nil
	}
	return records, nil
}

// insertRecord resolves, describes, uploads, and marks one record
// created. Returns false when the record must be retried later.
func (d *Depositor) insertRecord(ctx context.Context, rec *models.InventoryRecord) bool {
	pid := d.resolver.Resolve(ctx, rec)
	if pid == "" {
		d.log.Warn("identifier resolution failed", "file", rec.File)
		return false
	}
	if err := d.persistPID(ctx, rec, pid); err != nil {
		d.log.Error("persist identifier failed", "file", rec.File, "error", err)
		return false
	}

	desc, err := d.descriptors.Build(rec, d.cfg.BasePath)
	if err != nil {
		d.log.Warn("descriptor build failed", "file", rec.File, "pid", rec.PID, "error", err)
		return false
	}

	if !d.uploads.Upload(ctx, rec, desc, d.cfg.BasePath) {
		return false
	}

	if err := d.markCreated(ctx, rec); err != nil {
		d.log.Error("mark created failed", "file", rec.File, "error", err)
		return false
	}
	return true
}

// InsertPackage drives one package through the insertion state machine:
// metadata first, then each data file in inventory order, then the
// resource map. Any step failure halts immediately; the already-created
// prefix stays created, and re-invocation resumes from there. Uploads are
// deliberately not transactional across objects: resumability wins over
// atomicity.
func (d *Depositor) InsertPackage(ctx context.Context, packageID string) (*Result, error) {
	log := d.log.WithPackage(packageID)

	records, err := d.store.ListPackage(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("load package inventory: %w", err)
	}
	meta, data, err := splitPackage(packageID, records)
	if err != nil {
		return nil, err
	}

	// Dependency ordering is caller-enforced; this only validates it
	children, err := d.store.ListChildren(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("load child packages: %w", err)
	}
	for _, child := range children {
		// The parent graph references the child's resource map, so the
		// child must be fully deposited, resource map included
		if child.PID == "" || !child.Created || !child.ResmapCreated {
			return nil, &PreconditionError{
				PackageID: packageID,
				Reason:    fmt.Sprintf("child package %s not fully created", child.PackageID()),
			}
		}
		childRecords, err := d.store.ListPackage(ctx, child.PackageID())
		if err != nil {
			return nil, fmt.Errorf("load child package inventory: %w", err)
		}
		for _, rec := range childRecords {
			if !rec.Created {
				return nil, &PreconditionError{
					PackageID: packageID,
					Reason:    fmt.Sprintf("child package %s record %s not created", child.PackageID(), rec.File),
				}
			}
		}
	}

	result := &Result{PackageID: packageID, Records: records}

	// Fully processed package: zero remote calls, inventory unchanged
	if meta.Created && meta.ResmapCreated && allCreated(data) {
		log.Info("package already deposited, nothing to do", "pid", meta.PID)
		result.State = StateResourceMapUploaded
		return result, nil
	}

	result.State = StateNoMetadataID
	if !d.checkSession(ctx) {
		return result, nil
	}

	// Metadata object
	if meta.Created {
		log.Info("metadata already created, resuming with data", "pid", meta.PID)
	} else {
		pid := d.resolver.Resolve(ctx, meta)
		if pid == "" {
			log.Warn("metadata identifier resolution failed", "file", meta.File)
			return result, nil
		}
		if err := d.persistPID(ctx, meta, pid); err != nil {
			return nil, err
		}

		desc, err := d.descriptors.Build(meta, d.cfg.BasePath)
		if err != nil {
			log.Warn("metadata descriptor build failed", "file", meta.File, "error", err)
			return result, nil
		}
		result.State = StateMetadataDescribed

		if !d.uploads.Upload(ctx, meta, desc, d.cfg.BasePath) {
			return result, nil
		}
		if err := d.markCreated(ctx, meta); err != nil {
			return nil, err
		}
	}
	result.State = StateMetadataUploaded

	// Data objects, in inventory order. The first failure halts the loop,
	// bounding partial packages to "first K data files done".
	result.State = StateDataUploading
	for _, rec := range data {
		if rec.Created {
			log.Info("skipping already-created data object", "file", rec.File, "pid", rec.PID)
			continue
		}
		if !d.insertRecord(ctx, rec) {
			return result, nil
		}
	}
	result.State = StateDataComplete

	// Resource map
	if !meta.ResmapCreated {
		rm, err := d.buildResourceMap(meta, data, children, "")
		if err != nil {
			log.Warn("resource map build failed", "error", err)
			return result, nil
		}
		result.State = StateResourceMapBuilt

		content, err := d.serializer.Serialize(rm)
		if err != nil {
			log.Warn("resource map serialization failed", "error", err)
			return result, nil
		}

		desc, err := d.descriptors.BuildForContent(rm.Identifier, rm.Identifier+".nt", resmap.FormatID, content)
		if err != nil {
			log.Warn("resource map descriptor build failed", "error", err)
			return result, nil
		}

		if !d.uploads.UploadBytes(ctx, rm.Identifier, desc, content) {
			// Already-created objects stay created; only the map is missing
			return result, nil
		}

		meta.ResmapCreated = true
		if err := d.store.Update(ctx, meta); err != nil {
			return nil, fmt.Errorf("persist resource map flag: %w", err)
		}
	}
	result.State = StateResourceMapUploaded

	log.Info("package deposited", "pid", meta.PID, "objects", len(records))
	return result, nil
}

func allCreated(records []*models.InventoryRecord) bool {
	for _, rec := range records {
		if !rec.Created {
			return false
		}
	}
	return true
}
