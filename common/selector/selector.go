// Package selector gates inventory rows with CEL expressions, letting
// operators scope a bulk run without editing the inventory, e.g.
// `rec.format_id == "text/csv" && rec.size < 1000000`.
package selector

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/arkivo/depositor/common/models"
)

// Selector is a compiled row predicate.
type Selector struct {
	expr string
	prg  cel.Program
}

// New compiles a CEL expression over the `rec` variable. An empty
// expression yields a selector matching every row.
func New(expr string) (*Selector, error) {
	if expr == "" {
		return &Selector{}, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("rec", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compilation error: %w", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	return &Selector{expr: expr, prg: prg}, nil
}

// Matches evaluates the predicate against one record
func (s *Selector) Matches(rec *models.InventoryRecord) (bool, error) {
	if s.prg == nil {
		return true, nil
	}

	out, _, err := s.prg.Eval(map[string]interface{}{
		"rec": recordFields(rec),
	})
	if err != nil {
		return false, fmt.Errorf("CEL evaluation error: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("selector %q did not return boolean, got %T", s.expr, out.Value())
	}

	return result, nil
}

func recordFields(rec *models.InventoryRecord) map[string]interface{} {
	return map[string]interface{}{
		"file":           rec.File,
		"filename":       rec.Filename,
		"checksum":       rec.Checksum,
		"size":           rec.Size,
		"format_id":      rec.FormatID,
		// "package" is a CEL reserved word, hence package_id
		"package_id":     rec.PackageID(),
		"parent_package": rec.ParentPackageID(),
		"is_metadata":    rec.IsMetadata,
		"pid":            rec.PID,
		"pid_old":        rec.PIDOld,
		"created":        rec.Created,
		"resmap_created": rec.ResmapCreated,
		"ready":          rec.Ready,
	}
}
