package resmap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkivo/depositor/common/models"
)

func TestNTriplesSerializer(t *testing.T) {
	rm := &models.ResourceMap{
		Identifier: "resourceMap_m1",
		Statements: []models.Statement{
			{Subject: "https://x/m1", Predicate: PredDocuments, Object: "https://x/d1", SubjectType: models.TermURI, ObjectType: models.TermURI},
			{Subject: "https://x/m1", Predicate: "http://purl.org/dc/terms/title", Object: `A "quoted" title`, SubjectType: models.TermURI, ObjectType: models.TermLiteral},
			{Subject: "https://x/m1", Predicate: "http://purl.org/dc/terms/extent", Object: "42", SubjectType: models.TermURI, ObjectType: models.TermLiteral, DataTypeURI: "http://www.w3.org/2001/XMLSchema#integer"},
		},
	}

	out, err := NTriplesSerializer{}.Serialize(rm)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, string(out), `<https://x/m1> <`+PredDocuments+`> <https://x/d1> .`)
	assert.Contains(t, string(out), `"A \"quoted\" title"`)
	assert.Contains(t, string(out), `"42"^^<http://www.w3.org/2001/XMLSchema#integer>`)
}

func TestNTriplesSerializer_EscapesControlCharacters(t *testing.T) {
	out, err := NTriplesSerializer{}.Serialize(&models.ResourceMap{
		Statements: []models.Statement{{
			Subject:     "https://x/m1",
			Predicate:   "http://purl.org/dc/terms/description",
			Object:      "line one\r\nline two",
			SubjectType: models.TermURI,
			ObjectType:  models.TermLiteral,
		}},
	})
	require.NoError(t, err)

	assert.Contains(t, string(out), `"line one\r\nline two"`)
	assert.NotContains(t, string(out), "\r")
}

func TestNTriplesSerializer_Deterministic(t *testing.T) {
	a := models.Statement{Subject: "https://x/a", Predicate: PredDocuments, Object: "https://x/b", SubjectType: models.TermURI, ObjectType: models.TermURI}
	b := models.Statement{Subject: "https://x/b", Predicate: PredIsDocumentedBy, Object: "https://x/a", SubjectType: models.TermURI, ObjectType: models.TermURI}

	first, err := NTriplesSerializer{}.Serialize(&models.ResourceMap{Statements: []models.Statement{a, b}})
	require.NoError(t, err)
	second, err := NTriplesSerializer{}.Serialize(&models.ResourceMap{Statements: []models.Statement{b, a}})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNTriplesSerializer_UnknownTermType(t *testing.T) {
	_, err := NTriplesSerializer{}.Serialize(&models.ResourceMap{
		Statements: []models.Statement{{Subject: "s", Predicate: "p", Object: "o", ObjectType: "blank"}},
	})
	assert.Error(t, err)
}
