package models

// AccessRule grants a set of permissions to a subject on one object.
type AccessRule struct {
	Subject     string   `json:"subject"`
	Permissions []string `json:"permissions"`
}

// ReplicationPolicy controls replication of an object across repository
// nodes. A nil policy on a descriptor means replication is left to the
// remote node's defaults.
type ReplicationPolicy struct {
	Replicate      bool     `json:"replicate"`
	NumReplicas    int      `json:"num_replicas"`
	PreferredNodes []string `json:"preferred_nodes,omitempty"`
	BlockedNodes   []string `json:"blocked_nodes,omitempty"`
}

// Descriptor is the repository-side system metadata for one object: size,
// checksum, format, ownership and access policy. Built fresh before every
// upload attempt and never persisted locally.
type Descriptor struct {
	Identifier        string             `json:"identifier"`
	FormatID          string             `json:"format_id"`
	Size              int64              `json:"size"`
	Checksum          string             `json:"checksum"`
	ChecksumAlgorithm string             `json:"checksum_algorithm"`
	Submitter         string             `json:"submitter"`
	RightsHolder      string             `json:"rights_holder"`
	FileName          string             `json:"file_name"`
	ReplicationPolicy *ReplicationPolicy `json:"replication_policy,omitempty"`
	AccessRules       []AccessRule       `json:"access_rules,omitempty"`
}

// ChecksumSHA256 is the fixed checksum algorithm recorded on descriptors.
const ChecksumSHA256 = "SHA-256"
