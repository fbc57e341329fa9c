package resmap

import "github.com/arkivo/depositor/common/models"

// packagingPredicates are the built-in containment/documentation
// predicates regenerated on every rebuild.
var packagingPredicates = map[string]struct{}{
	PredDocuments:      {},
	PredIsDocumentedBy: {},
	PredAggregates:     {},
	PredIsAggregatedBy: {},
	PredDescribes:      {},
	PredIsDescribedBy:  {},
}

// FilterPackagingStatements removes statements that a rebuild regenerates:
// those whose predicate is a built-in packaging predicate, and those whose
// subject or object is the generic client-identity literal. What survives
// is the externally injected content (provenance and the like) that should
// be re-merged after a rebuild.
//
// Pure function over the statement set: total (never fails) and idempotent
// (filtering twice equals filtering once). The input slice is not mutated.
func FilterPackagingStatements(stmts []models.Statement) []models.Statement {
	out := make([]models.Statement, 0, len(stmts))
	for _, st := range stmts {
		if _, ok := packagingPredicates[st.Predicate]; ok {
			continue
		}
		if st.Subject == AgentLiteral || st.Object == AgentLiteral {
			continue
		}
		out = append(out, st)
	}
	return out
}
