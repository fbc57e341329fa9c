// Package resmap builds the containment graph (resource map) that links a
// package's metadata, data and child packages.
package resmap

// Namespace prefixes for the packaging vocabulary.
const (
	CitoNamespace = "http://purl.org/spar/cito/"
	OreNamespace  = "http://www.openarchives.org/ore/terms/"
)

// Predicates used by generated resource maps.
const (
	PredDocuments      = CitoNamespace + "documents"
	PredIsDocumentedBy = CitoNamespace + "isDocumentedBy"
	PredAggregates     = OreNamespace + "aggregates"
	PredIsAggregatedBy = OreNamespace + "isAggregatedBy"
	PredDescribes      = OreNamespace + "describes"
	PredIsDescribedBy  = OreNamespace + "isDescribedBy"
)

// FormatID recorded on resource map descriptors.
const FormatID = "http://www.openarchives.org/ore/terms"

// AgentLiteral is the generic client-identity literal injected by client
// tooling; the packaging filter strips statements mentioning it.
const AgentLiteral = "arkivo depositor client"

// IdentifierPrefix derives the resource map identifier from the metadata
// identifier.
const IdentifierPrefix = "resourceMap_"

// DeriveIdentifier returns the deterministic resource-map identifier for a
// metadata identifier.
func DeriveIdentifier(metadataPID string) string {
	return IdentifierPrefix + metadataPID
}
