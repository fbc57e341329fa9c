// Package descriptor builds the system-metadata record that accompanies
// every object upload.
package descriptor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/arkivo/depositor/common/config"
	"github.com/arkivo/depositor/common/logger"
	"github.com/arkivo/depositor/common/models"
)

// Builder constructs descriptors for resolved inventory records. Every
// descriptor passes through the same systemic adjustments before it is
// final: replication policy cleared (when configured), the standard access
// rules attached, and the optional site-level JSON patch applied.
type Builder struct {
	hasher Hasher
	cfg    config.DepositConfig
	patch  jsonpatch.Patch
	log    *logger.Logger
}

// NewBuilder creates a descriptor builder. The configured descriptor patch
// is decoded once here so malformed patches fail at startup, not per file.
func NewBuilder(cfg config.DepositConfig, hasher Hasher, log *logger.Logger) (*Builder, error) {
	b := &Builder{
		hasher: hasher,
		cfg:    cfg,
		log:    log,
	}

	if cfg.DescriptorPatch != "" {
		patch, err := jsonpatch.DecodePatch([]byte(cfg.DescriptorPatch))
		if err != nil {
			return nil, fmt.Errorf("decode descriptor patch: %w", err)
		}
		b.patch = patch
	}

	return b, nil
}

// Build constructs the descriptor for a resolved record. The record must
// already carry an identifier and the file must exist under basePath. Any
// failure means "retry later" for the caller, never a fatal condition.
func (b *Builder) Build(rec *models.InventoryRecord, basePath string) (*models.Descriptor, error) {
	if rec.PID == "" {
		return nil, fmt.Errorf("record %s has no identifier", rec.File)
	}

	path := filepath.Join(basePath, rec.File)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	checksum := rec.Checksum
	if checksum == "" {
		checksum, err = b.hasher.Checksum(path)
		if err != nil {
			return nil, fmt.Errorf("checksum %s: %w", path, err)
		}
	}

	desc := &models.Descriptor{
		Identifier:        rec.PID,
		FormatID:          rec.FormatID,
		Size:              info.Size(),
		Checksum:          checksum,
		ChecksumAlgorithm: models.ChecksumSHA256,
		Submitter:         b.cfg.Submitter,
		RightsHolder:      b.cfg.RightsHolder,
		FileName:          rec.Filename,
	}

	return b.finalize(desc)
}

// BuildForContent constructs a descriptor for generated in-memory content,
// used for resource maps.
func (b *Builder) BuildForContent(pid, filename, formatID string, content []byte) (*models.Descriptor, error) {
	if pid == "" {
		return nil, fmt.Errorf("content descriptor needs an identifier")
	}

	desc := &models.Descriptor{
		Identifier:        pid,
		FormatID:          formatID,
		Size:              int64(len(content)),
		Checksum:          ChecksumBytes(content),
		ChecksumAlgorithm: models.ChecksumSHA256,
		Submitter:         b.cfg.Submitter,
		RightsHolder:      b.cfg.RightsHolder,
		FileName:          filename,
	}

	return b.finalize(desc)
}

func (b *Builder) finalize(desc *models.Descriptor) (*models.Descriptor, error) {
	if b.cfg.ClearReplication {
		desc = ClearReplicationPolicy(desc)
	}
	desc = ApplyAccessRules(desc, b.cfg.AccessRules)

	if b.patch != nil {
		patched, err := b.applyPatch(desc)
		if err != nil {
			return nil, fmt.Errorf("apply descriptor patch: %w", err)
		}
		desc = patched
	}

	return desc, nil
}

func (b *Builder) applyPatch(desc *models.Descriptor) (*models.Descriptor, error) {
	doc, err := json.Marshal(desc)
	if err != nil {
		return nil, err
	}

	doc, err = b.patch.Apply(doc)
	if err != nil {
		return nil, err
	}

	patched := &models.Descriptor{}
	if err := json.Unmarshal(doc, patched); err != nil {
		return nil, err
	}
	return patched, nil
}
