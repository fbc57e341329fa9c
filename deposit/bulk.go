package deposit

import (
	"context"
	"fmt"
	"sort"

	"github.com/arkivo/depositor/common/models"
	"github.com/arkivo/depositor/common/selector"
)

// Run inserts every ready package whose metadata record matches the
// selector expression, children before parents. Packages are independent
// units of failure: a halted package is logged and skipped, and does not
// stop the run; a parent whose child halted is refused by InsertPackage's
// own precondition check.
func (d *Depositor) Run(ctx context.Context, expr string) (map[string]*Result, error) {
	sel, err := selector.New(expr)
	if err != nil {
		return nil, fmt.Errorf("compile selector: %w", err)
	}

	ready, err := d.store.ListReady(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ready inventory: %w", err)
	}

	// Candidate packages, keyed by their metadata record
	packages := make(map[string]*models.InventoryRecord)
	for _, rec := range ready {
		if !rec.IsMetadata {
			continue
		}
		match, err := sel.Matches(rec)
		if err != nil {
			return nil, fmt.Errorf("selector: %w", err)
		}
		if match {
			packages[rec.PackageID()] = rec
		}
	}

	order, err := topoOrder(packages)
	if err != nil {
		return nil, err
	}

	results := make(map[string]*Result, len(order))
	for _, packageID := range order {
		res, err := d.InsertPackage(ctx, packageID)
		if err != nil {
			d.log.Warn("package refused", "package_id", packageID, "error", err)
			continue
		}
		results[packageID] = res
		if !res.State.Terminal() {
			d.log.Warn("package halted", "package_id", packageID, "state", res.State)
		}
	}
	return results, nil
}

// topoOrder sorts candidate packages children-first along parent_package
// edges. Cyclic declarations are refused.
func topoOrder(packages map[string]*models.InventoryRecord) ([]string, error) {
	// pending children per package, and child -> dependent parents
	pending := make(map[string]int, len(packages))
	parents := make(map[string][]string)
	for id := range packages {
		pending[id] = 0
	}
	for id, rec := range packages {
		parent := rec.ParentPackageID()
		if _, ok := packages[parent]; ok {
			pending[parent]++
			parents[id] = append(parents[id], parent)
		}
	}

	var queue []string
	for id, n := range pending {
		if n == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	order := make([]string, 0, len(packages))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		var unblocked []string
		for _, parent := range parents[id] {
			pending[parent]--
			if pending[parent] == 0 {
				unblocked = append(unblocked, parent)
			}
		}
		sort.Strings(unblocked)
		queue = append(queue, unblocked...)
	}

	if len(order) != len(packages) {
		return nil, fmt.Errorf("cyclic parent_package declarations among ready packages")
	}
	return order, nil
}
