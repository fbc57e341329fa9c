package resmap

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/arkivo/depositor/common/logger"
	"github.com/arkivo/depositor/common/models"
)

// Input describes one resource map to build. DataPIDs and ChildPIDs are
// treated as sets: duplicates and ordering never affect the result.
type Input struct {
	// Identifier of the package's metadata object (required)
	MetadataPID string

	// Identifiers of the package's data objects
	DataPIDs []string

	// Resource-map identifiers of declared child packages
	ChildPIDs []string

	// Caller-supplied statements merged in verbatim
	Extra []models.Statement

	// Base URI turning bare identifiers into dereferenceable URIs
	ResolveBase string

	// Explicit resource-map identifier; derived from MetadataPID when empty
	Identifier string
}

// Builder deterministically constructs resource maps.
type Builder struct {
	log *logger.Logger
}

// NewBuilder creates a resource map builder
func NewBuilder(log *logger.Logger) *Builder {
	return &Builder{log: log}
}

// Build constructs the deduplicated statement set for one package. Same
// inputs, taken as sets, always yield the same statement set.
func (b *Builder) Build(in Input) (*models.ResourceMap, error) {
	if in.MetadataPID == "" {
		return nil, fmt.Errorf("resource map requires a metadata identifier")
	}
	if in.ResolveBase == "" {
		return nil, fmt.Errorf("resource map requires a resolve base URI")
	}

	identifier := in.Identifier
	if identifier == "" {
		identifier = DeriveIdentifier(in.MetadataPID)
	}

	dataPIDs := sortedSet(in.DataPIDs)
	childPIDs := sortedSet(in.ChildPIDs)

	metaURI := resolve(in.ResolveBase, in.MetadataPID)
	aggregationURI := resolve(in.ResolveBase, identifier) + "#aggregation"

	var stmts []models.Statement

	// Self-reference keeps metadata-only packages indexable
	stmts = append(stmts,
		triple(metaURI, PredDocuments, metaURI),
		triple(metaURI, PredIsDocumentedBy, metaURI),
	)

	for _, d := range dataPIDs {
		dataURI := resolve(in.ResolveBase, d)
		stmts = append(stmts,
			triple(metaURI, PredDocuments, dataURI),
			triple(dataURI, PredIsDocumentedBy, metaURI),
		)
	}

	for _, c := range childPIDs {
		childURI := resolve(in.ResolveBase, c)
		stmts = append(stmts,
			triple(aggregationURI, PredAggregates, childURI),
			triple(childURI, PredIsAggregatedBy, aggregationURI),
			triple(metaURI, PredDocuments, childURI),
			triple(childURI, PredIsDocumentedBy, metaURI),
		)
	}

	for _, extra := range in.Extra {
		stmts = append(stmts, b.normalize(extra))
	}

	return &models.ResourceMap{
		Identifier:     identifier,
		AggregatedPIDs: aggregated(in.MetadataPID, dataPIDs, childPIDs),
		Statements:     dedupe(stmts),
	}, nil
}

// normalize fills defaulted term types on a caller-supplied statement. A
// shape that does not match the built-in statements is a recoverable
// warning, not a failure.
func (b *Builder) normalize(st models.Statement) models.Statement {
	if st.SubjectType == "" {
		st.SubjectType = models.TermURI
	}
	if st.ObjectType == "" {
		st.ObjectType = models.TermURI
	}

	subjectOK := st.SubjectType == models.TermURI || st.SubjectType == models.TermLiteral
	objectOK := st.ObjectType == models.TermURI || st.ObjectType == models.TermLiteral
	typedURI := st.DataTypeURI != "" && st.ObjectType == models.TermURI
	if !subjectOK || !objectOK || typedURI {
		b.log.Warn("extra statement shape mismatch, keeping as-is",
			"subject", st.Subject, "predicate", st.Predicate, "object", st.Object)
	}
	return st
}

func triple(subject, predicate, object string) models.Statement {
	return models.Statement{
		Subject:     subject,
		Predicate:   predicate,
		Object:      object,
		SubjectType: models.TermURI,
		ObjectType:  models.TermURI,
	}
}

// resolve joins the resolution base and a percent-encoded identifier
func resolve(base, pid string) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(pid)
}

// dedupe removes structural duplicates preserving first-seen order
func dedupe(stmts []models.Statement) []models.Statement {
	seen := make(map[models.Statement]struct{}, len(stmts))
	out := make([]models.Statement, 0, len(stmts))
	for _, st := range stmts {
		if _, ok := seen[st]; ok {
			continue
		}
		seen[st] = struct{}{}
		out = append(out, st)
	}
	return out
}

func sortedSet(pids []string) []string {
	seen := make(map[string]struct{}, len(pids))
	out := make([]string, 0, len(pids))
	for _, pid := range pids {
		if pid == "" {
			continue
		}
		if _, ok := seen[pid]; ok {
			continue
		}
		seen[pid] = struct{}{}
		out = append(out, pid)
	}
	sort.Strings(out)
	return out
}

// aggregated is the union of metadata, data, and child identifiers,
// metadata first
func aggregated(metadataPID string, dataPIDs, childPIDs []string) []string {
	seen := map[string]struct{}{metadataPID: {}}
	out := []string{metadataPID}
	for _, pid := range append(append([]string{}, dataPIDs...), childPIDs...) {
		if _, ok := seen[pid]; ok {
			continue
		}
		seen[pid] = struct{}{}
		out = append(out, pid)
	}
	return out
}
