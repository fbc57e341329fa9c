package deposit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkivo/depositor/common/inventory"
	"github.com/arkivo/depositor/common/models"
	"github.com/arkivo/depositor/resmap"
)

func seedVersionedPackage(t *testing.T, store *inventory.MemoryStore) (*models.InventoryRecord, *models.InventoryRecord) {
	t.Helper()
	meta := record("meta.xml", "pkg-1", true)
	meta.PID = "m2"
	meta.PIDOld = "m1"
	meta.Created = true
	data := record("data1.csv", "pkg-1", false)
	data.PID = "d2"
	data.PIDOld = "d1"
	data.Created = true
	store.Seed(meta, data)
	return meta, data
}

func TestUpdatePackage_NewExistsSkipsEverything(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "meta.xml", "<eml version='2'/>")

	store := inventory.NewMemoryStore()
	meta, _ := seedVersionedPackage(t, store)

	client := newMockClient()
	client.objects["m2"] = true
	client.objects[resmap.DeriveIdentifier("m2")] = true
	d := newTestDepositor(t, store, client, dir)

	records, err := d.UpdatePackage(context.Background(), "pkg-1")
	require.NoError(t, err)
	require.NotEmpty(t, records)

	assert.False(t, client.has("create:m2"))
	assert.False(t, client.has("update:m1->m2"))

	after, err := store.Get(context.Background(), "meta.xml")
	require.NoError(t, err)
	assert.Equal(t, meta.Version, after.Version, "inventory must be unchanged")
}

func TestUpdatePackage_OldMissingTakesCreatePath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "meta.xml", "<eml version='2'/>")

	store := inventory.NewMemoryStore()
	seedVersionedPackage(t, store)

	client := newMockClient()
	// neither m2 nor m1 exist remotely
	d := newTestDepositor(t, store, client, dir)

	_, err := d.UpdatePackage(context.Background(), "pkg-1")
	require.NoError(t, err)

	assert.True(t, client.has("create:m2"))
	assert.False(t, client.has("update:m1->m2"))
	assert.True(t, client.has("create:"+resmap.DeriveIdentifier("m2")))
}

func TestUpdatePackage_OldExistsTakesUpdatePath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "meta.xml", "<eml version='2'/>")

	store := inventory.NewMemoryStore()
	seedVersionedPackage(t, store)

	client := newMockClient()
	client.objects["m1"] = true
	client.objects[resmap.DeriveIdentifier("m1")] = true
	d := newTestDepositor(t, store, client, dir)

	records, err := d.UpdatePackage(context.Background(), "pkg-1")
	require.NoError(t, err)

	assert.True(t, client.has("update:m1->m2"))
	assert.True(t, client.has("update:"+resmap.DeriveIdentifier("m1")+"->"+resmap.DeriveIdentifier("m2")))
	assert.False(t, client.has("create:m2"))

	for _, rec := range records {
		if rec.IsMetadata {
			assert.True(t, rec.ResmapCreated)
		}
	}
}

func TestUpdatePackage_RefreshesChecksumFromUpdatePath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "meta.xml", "<eml version='2'/>")

	store := inventory.NewMemoryStore()
	meta, _ := seedVersionedPackage(t, store)
	staleChecksum := "deadbeef"
	meta.Checksum = staleChecksum
	store.Seed(meta)

	client := newMockClient()
	client.objects["m1"] = true
	d := newTestDepositor(t, store, client, dir)

	_, err := d.UpdatePackage(context.Background(), "pkg-1")
	require.NoError(t, err)

	after, err := store.Get(context.Background(), "meta.xml")
	require.NoError(t, err)
	assert.NotEqual(t, staleChecksum, after.Checksum)
	assert.NotEmpty(t, after.Checksum)
}

func TestUpdatePackage_MissingOldPIDIsFatal(t *testing.T) {
	store := inventory.NewMemoryStore()
	meta := record("meta.xml", "pkg-1", true)
	meta.PID = "m2" // no pid_old
	store.Seed(meta)

	d := newTestDepositor(t, store, newMockClient(), t.TempDir())

	_, err := d.UpdatePackage(context.Background(), "pkg-1")

	var precondition *PreconditionError
	require.ErrorAs(t, err, &precondition)
}
