package resmap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arkivo/depositor/common/models"
)

// Serializer turns a resource map into the bytes uploaded to the
// repository.
type Serializer interface {
	Serialize(rm *models.ResourceMap) ([]byte, error)
}

// NTriplesSerializer is the default Serializer. Output is deterministic:
// statements are emitted in sorted order, one triple per line.
type NTriplesSerializer struct{}

// Serialize renders the statement set as N-Triples
func (NTriplesSerializer) Serialize(rm *models.ResourceMap) ([]byte, error) {
	lines := make([]string, 0, len(rm.Statements))
	for _, st := range rm.Statements {
		subject, err := term(st.Subject, st.SubjectType, "")
		if err != nil {
			return nil, fmt.Errorf("statement subject: %w", err)
		}
		object, err := term(st.Object, st.ObjectType, st.DataTypeURI)
		if err != nil {
			return nil, fmt.Errorf("statement object: %w", err)
		}
		lines = append(lines, fmt.Sprintf("%s <%s> %s .", subject, st.Predicate, object))
	}
	sort.Strings(lines)

	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return []byte(sb.String()), nil
}

func term(value string, kind models.TermType, dataType string) (string, error) {
	switch kind {
	case models.TermURI, "":
		return "<" + value + ">", nil
	case models.TermLiteral:
		escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`).Replace(value)
		if dataType != "" {
			return fmt.Sprintf(`"%s"^^<%s>`, escaped, dataType), nil
		}
		return fmt.Sprintf(`"%s"`, escaped), nil
	default:
		return "", fmt.Errorf("unknown term type %q", kind)
	}
}
