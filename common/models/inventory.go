package models

// InventoryRecord is one row of the deposit inventory: a single file (or
// package metadata document) and its processing status. Records are created
// by the ingest tooling and mutated in place as the orchestrator advances;
// they are never deleted by this system.
// Maps to: inventory table
type InventoryRecord struct {
	// Unique path of the file relative to the deposit base path (primary key)
	File string `db:"file" json:"file"`

	// Display name used in the descriptor
	Filename string `db:"filename" json:"filename"`

	// Content hash, lowercase hex. Computed by ingest; recomputed by the
	// descriptor builder when empty.
	Checksum string `db:"checksum" json:"checksum"`

	// File size in bytes
	Size int64 `db:"size" json:"size"`

	// Format identifier (media type or format registry URI)
	FormatID string `db:"format_id" json:"format_id"`

	// Package this file belongs to (NULL for loose files)
	Package *string `db:"package" json:"package,omitempty"`

	// Package this package is nested under (NULL for top-level packages,
	// only meaningful on metadata records)
	ParentPackage *string `db:"parent_package" json:"parent_package,omitempty"`

	// Exactly one record per package has this set
	IsMetadata bool `db:"is_metadata" json:"is_metadata"`

	// Current persistent identifier. Empty until resolution succeeds;
	// immutable once assigned except during a version transition.
	PID string `db:"pid" json:"pid"`

	// Previous persistent identifier, set during a version transition
	PIDOld string `db:"pid_old" json:"pid_old"`

	// Object exists on the remote repository. Monotonic: once true it is
	// never reset by this system.
	Created bool `db:"created" json:"created"`

	// Resource map for this package exists on the remote repository
	// (only meaningful on metadata records)
	ResmapCreated bool `db:"resmap_created" json:"resmap_created"`

	// Eligible for processing
	Ready bool `db:"ready" json:"ready"`

	// Optimistic concurrency version, bumped on every row update
	Version int64 `db:"version" json:"version"`
}

// PackageID returns the package the record belongs to, or "" for loose files.
func (r *InventoryRecord) PackageID() string {
	if r.Package == nil {
		return ""
	}
	return *r.Package
}

// ParentPackageID returns the enclosing package, or "" for top-level records.
func (r *InventoryRecord) ParentPackageID() string {
	if r.ParentPackage == nil {
		return ""
	}
	return *r.ParentPackage
}

// Clone returns a deep copy of the record. Orchestrators mutate clones and
// persist them through the store, never rows shared with the caller.
func (r *InventoryRecord) Clone() *InventoryRecord {
	c := *r
	if r.Package != nil {
		p := *r.Package
		c.Package = &p
	}
	if r.ParentPackage != nil {
		p := *r.ParentPackage
		c.ParentPackage = &p
	}
	return &c
}
