package models

// TermType classifies a statement term as a dereferenceable URI or a literal.
type TermType string

// Term types for statement subjects and objects.
const (
	TermURI     TermType = "uri"
	TermLiteral TermType = "literal"
)

// Statement is one relationship triple in a resource map. All fields are
// comparable so a statement set can be deduplicated by structural equality.
type Statement struct {
	Subject     string   `json:"subject"`
	Predicate   string   `json:"predicate"`
	Object      string   `json:"object"`
	SubjectType TermType `json:"subject_type"`
	ObjectType  TermType `json:"object_type"`

	// Datatype URI for typed literals, empty otherwise
	DataTypeURI string `json:"datatype_uri,omitempty"`
}

// ResourceMap is the containment graph for one package: the deduplicated
// statement set plus the identifiers the package aggregates. It is rebuilt
// fresh on every processing attempt and discarded after upload.
type ResourceMap struct {
	// Persistent identifier of the resource map itself
	Identifier string `json:"identifier"`

	// Identifiers aggregated by the package: metadata, data, children
	AggregatedPIDs []string `json:"aggregated_pids"`

	Statements []Statement `json:"statements"`
}
