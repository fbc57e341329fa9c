package deposit

import (
	"context"
	"fmt"

	"github.com/arkivo/depositor/common/models"
	"github.com/arkivo/depositor/resmap"
)

// updateAction is the per-artifact decision during a version transition.
type updateAction int

const (
	actionSkip updateAction = iota
	actionCreate
	actionUpdate
)

// UpdatePackage re-publishes a package's metadata and resource map under
// new identifiers after the metadata's source content changed. Data files
// are never touched. Per artifact: if the new identifier already exists
// remotely the artifact is skipped; if the old identifier does not exist
// the artifact is created fresh; otherwise an update supersedes the old
// identifier, chaining version history. Any remote failure halts the
// sequence, leaving the inventory reflecting exactly what succeeded.
func (d *Depositor) UpdatePackage(ctx context.Context, packageID string) ([]*models.InventoryRecord, error) {
	log := d.log.WithPackage(packageID)

	records, err := d.store.ListPackage(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("load package inventory: %w", err)
	}
	meta, data, err := splitPackage(packageID, records)
	if err != nil {
		return nil, err
	}

	for _, rec := range records {
		if rec.PID == "" || rec.PIDOld == "" {
			return nil, &PreconditionError{
				PackageID: packageID,
				Reason:    fmt.Sprintf("record %s missing pid or pid_old for version transition", rec.File),
			}
		}
	}

	if !d.checkSession(ctx) {
		return records, nil
	}

	// Metadata artifact
	action, err := d.decideAction(ctx, meta.PID, meta.PIDOld)
	if err != nil {
		log.Warn("existence check failed", "pid", meta.PID, "error", err)
		return records, nil
	}

	switch action {
	case actionSkip:
		log.Info("metadata already published under new identifier", "pid", meta.PID)
	default:
		// Source content changed: recompute checksum from the alternate
		// content location instead of trusting the stale inventory value
		source := meta.Clone()
		source.Checksum = ""
		source.Size = 0

		desc, err := d.descriptors.Build(source, d.cfg.UpdatePath)
		if err != nil {
			log.Warn("updated metadata descriptor build failed", "file", meta.File, "error", err)
			return records, nil
		}

		var ok bool
		if action == actionCreate {
			ok = d.uploads.Upload(ctx, source, desc, d.cfg.UpdatePath)
		} else {
			ok = d.uploads.UploadVersion(ctx, meta.PIDOld, source, desc, d.cfg.UpdatePath)
		}
		if !ok {
			return records, nil
		}

		meta.Checksum = desc.Checksum
		meta.Size = desc.Size
		meta.Created = true
		if err := d.store.Update(ctx, meta); err != nil {
			return nil, fmt.Errorf("persist updated metadata row: %w", err)
		}
	}

	// Resource map artifact, rebuilt from scratch so content and
	// containment graph cannot drift apart
	newRM := resmap.DeriveIdentifier(meta.PID)
	oldRM := resmap.DeriveIdentifier(meta.PIDOld)

	action, err = d.decideAction(ctx, newRM, oldRM)
	if err != nil {
		log.Warn("existence check failed", "pid", newRM, "error", err)
		return records, nil
	}
	if action == actionSkip {
		log.Info("resource map already published under new identifier", "pid", newRM)
		return records, nil
	}

	children, err := d.store.ListChildren(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("load child packages: %w", err)
	}

	rm, err := d.buildResourceMap(meta, data, children, newRM)
	if err != nil {
		log.Warn("resource map build failed", "error", err)
		return records, nil
	}

	content, err := d.serializer.Serialize(rm)
	if err != nil {
		log.Warn("resource map serialization failed", "error", err)
		return records, nil
	}

	desc, err := d.descriptors.BuildForContent(rm.Identifier, rm.Identifier+".nt", resmap.FormatID, content)
	if err != nil {
		log.Warn("resource map descriptor build failed", "error", err)
		return records, nil
	}

	var ok bool
	if action == actionCreate {
		ok = d.uploads.UploadBytes(ctx, rm.Identifier, desc, content)
	} else {
		ok = d.uploads.UploadVersionBytes(ctx, oldRM, rm.Identifier, desc, content)
	}
	if !ok {
		return records, nil
	}

	meta.ResmapCreated = true
	if err := d.store.Update(ctx, meta); err != nil {
		return nil, fmt.Errorf("persist resource map flag: %w", err)
	}

	log.Info("package version published", "pid", meta.PID, "superseded", meta.PIDOld)
	return records, nil
}

// decideAction picks skip/create/update from remote existence of the new
// and old identifiers.
func (d *Depositor) decideAction(ctx context.Context, newPID, oldPID string) (updateAction, error) {
	exists, err := d.client.ObjectExists(ctx, newPID)
	if err != nil {
		return actionSkip, err
	}
	if exists {
		return actionSkip, nil
	}

	exists, err = d.client.ObjectExists(ctx, oldPID)
	if err != nil {
		return actionSkip, err
	}
	if !exists {
		// First publication under this lineage, not a true version bump
		return actionCreate, nil
	}
	return actionUpdate, nil
}
