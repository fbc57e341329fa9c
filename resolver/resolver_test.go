package resolver

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arkivo/depositor/common/logger"
	"github.com/arkivo/depositor/common/models"
)

// mintOnlyClient counts minting calls; other methods are never reached
type mintOnlyClient struct {
	minted  int
	mintErr error
}

func (c *mintOnlyClient) Ping(ctx context.Context) error { return nil }

func (c *mintOnlyClient) ObjectExists(ctx context.Context, pid string) (bool, error) {
	return false, nil
}

func (c *mintOnlyClient) CreateObject(ctx context.Context, pid string, desc *models.Descriptor, body io.Reader) (string, error) {
	return pid, nil
}

func (c *mintOnlyClient) UpdateObject(ctx context.Context, oldPID, newPID string, desc *models.Descriptor, body io.Reader) (string, error) {
	return newPID, nil
}

func (c *mintOnlyClient) MintIdentifier(ctx context.Context, scheme string) (string, error) {
	c.minted++
	if c.mintErr != nil {
		return "", c.mintErr
	}
	return "doi:10.5063/minted", nil
}

func TestResolve_ExistingIdentifierIsIdempotent(t *testing.T) {
	client := &mintOnlyClient{}
	r := New(client, "doi", logger.New("error", "json"))
	rec := &models.InventoryRecord{File: "a.csv", PID: "doi:10.5063/already"}

	first := r.Resolve(context.Background(), rec)
	second := r.Resolve(context.Background(), rec)

	assert.Equal(t, "doi:10.5063/already", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 0, client.minted, "no minting call for resolved records")
}

func TestResolve_UUIDSchemeMintsLocally(t *testing.T) {
	client := &mintOnlyClient{}
	r := New(client, SchemeUUID, logger.New("error", "json"))

	pid := r.Resolve(context.Background(), &models.InventoryRecord{File: "a.csv"})

	assert.True(t, strings.HasPrefix(pid, "urn:uuid:"), "got %q", pid)
	assert.Equal(t, 0, client.minted)

	other := r.Resolve(context.Background(), &models.InventoryRecord{File: "b.csv"})
	assert.NotEqual(t, pid, other)
}

func TestResolve_RemoteScheme(t *testing.T) {
	client := &mintOnlyClient{}
	r := New(client, "doi", logger.New("error", "json"))

	pid := r.Resolve(context.Background(), &models.InventoryRecord{File: "a.csv"})

	assert.Equal(t, "doi:10.5063/minted", pid)
	assert.Equal(t, 1, client.minted)
}

func TestResolve_MintFailureReturnsEmptySentinel(t *testing.T) {
	client := &mintOnlyClient{mintErr: errors.New("node down")}
	r := New(client, "doi", logger.New("error", "json"))

	pid := r.Resolve(context.Background(), &models.InventoryRecord{File: "a.csv"})

	assert.Equal(t, "", pid, "empty string is the resolution-failed sentinel")
}
