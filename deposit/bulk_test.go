package deposit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkivo/depositor/common/inventory"
	"github.com/arkivo/depositor/common/models"
)

func TestRun_ProcessesChildrenBeforeParents(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "parent-meta.xml", "<eml/>")
	writeFile(t, dir, "child-meta.xml", "<eml/>")

	store := inventory.NewMemoryStore()
	parentMeta := record("parent-meta.xml", "pkg-parent", true)
	childMeta := record("child-meta.xml", "pkg-child", true)
	parent := "pkg-parent"
	childMeta.ParentPackage = &parent
	store.Seed(parentMeta, childMeta)

	client := newMockClient()
	d := newTestDepositor(t, store, client, dir)

	results, err := d.Run(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, results, 2)

	// The parent would have been refused had the child not been fully
	// created first
	assert.Equal(t, StateResourceMapUploaded, results["pkg-child"].State)
	assert.Equal(t, StateResourceMapUploaded, results["pkg-parent"].State)
}

func TestRun_SelectorScopesPackages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a-meta.xml", "<eml/>")
	writeFile(t, dir, "b-meta.xml", "<eml/>")

	store := inventory.NewMemoryStore()
	store.Seed(
		record("a-meta.xml", "pkg-a", true),
		record("b-meta.xml", "pkg-b", true),
	)

	d := newTestDepositor(t, store, newMockClient(), dir)

	results, err := d.Run(context.Background(), `rec.package_id == "pkg-a"`)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results, "pkg-a")
}

func TestRun_HaltedPackageDoesNotStopTheRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b-meta.xml", "<eml/>")
	// a-meta.xml missing on disk: pkg-a halts

	store := inventory.NewMemoryStore()
	store.Seed(
		record("a-meta.xml", "pkg-a", true),
		record("b-meta.xml", "pkg-b", true),
	)

	d := newTestDepositor(t, store, newMockClient(), dir)

	results, err := d.Run(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, results["pkg-a"].State.Terminal())
	assert.True(t, results["pkg-b"].State.Terminal())
}

func TestTopoOrder_CycleIsRefused(t *testing.T) {
	a := "pkg-a"
	b := "pkg-b"
	recA := record("a.xml", a, true)
	recA.ParentPackage = &b
	recB := record("b.xml", b, true)
	recB.ParentPackage = &a

	_, err := topoOrder(map[string]*models.InventoryRecord{a: recA, b: recB})
	assert.Error(t, err)
}
