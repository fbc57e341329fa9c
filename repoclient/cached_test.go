package repoclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkivo/depositor/common/logger"
	"github.com/arkivo/depositor/common/models"
)

// fakeCache is an in-memory ExistenceCache recording every write
type fakeCache struct {
	vals    map[string]string
	sets    []string
	readErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{vals: make(map[string]string)}
}

func (f *fakeCache) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.readErr != nil {
		return redis.NewStringResult("", f.readErr)
	}
	val, ok := f.vals[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.vals[key] = fmt.Sprint(value)
	f.sets = append(f.sets, key)
	return redis.NewStatusResult("OK", nil)
}

// stubClient is a minimal inner Client counting existence checks
type stubClient struct {
	objects     map[string]bool
	existsCalls int
}

func newStubClient() *stubClient {
	return &stubClient{objects: make(map[string]bool)}
}

func (s *stubClient) Ping(ctx context.Context) error { return nil }

func (s *stubClient) ObjectExists(ctx context.Context, pid string) (bool, error) {
	s.existsCalls++
	return s.objects[pid], nil
}

func (s *stubClient) CreateObject(ctx context.Context, pid string, desc *models.Descriptor, body io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	s.objects[pid] = true
	return pid, nil
}

func (s *stubClient) UpdateObject(ctx context.Context, oldPID, newPID string, desc *models.Descriptor, body io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	s.objects[newPID] = true
	return newPID, nil
}

func (s *stubClient) MintIdentifier(ctx context.Context, scheme string) (string, error) {
	return "minted", nil
}

func newCachedClient(inner Client, cache ExistenceCache) *CachedClient {
	return NewCachedClient(inner, cache, time.Hour, logger.New("error", "json"))
}

func TestCachedClient_NegativeExistenceNeverCached(t *testing.T) {
	inner := newStubClient()
	cache := newFakeCache()
	client := newCachedClient(inner, cache)

	exists, err := client.ObjectExists(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Empty(t, cache.sets, "a miss must not be remembered")

	// Every repeat check goes back to the node
	_, err = client.ObjectExists(context.Background(), "absent")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.existsCalls)
}

func TestCachedClient_PositiveExistenceCached(t *testing.T) {
	inner := newStubClient()
	inner.objects["present"] = true
	cache := newFakeCache()
	client := newCachedClient(inner, cache)

	exists, err := client.ObjectExists(context.Background(), "present")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = client.ObjectExists(context.Background(), "present")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 1, inner.existsCalls, "the second check must be served from the cache")
}

func TestCachedClient_ReadFailureFallsThroughToNode(t *testing.T) {
	inner := newStubClient()
	inner.objects["present"] = true
	cache := newFakeCache()
	cache.readErr = errors.New("connection refused")
	client := newCachedClient(inner, cache)

	exists, err := client.ObjectExists(context.Background(), "present")
	require.NoError(t, err, "cache trouble must not fail the call")
	assert.True(t, exists)
	assert.Equal(t, 1, inner.existsCalls)
}

func TestCachedClient_CreateRemembersObject(t *testing.T) {
	inner := newStubClient()
	cache := newFakeCache()
	client := newCachedClient(inner, cache)

	_, err := client.CreateObject(context.Background(), "pid-1", &models.Descriptor{FileName: "f"}, strings.NewReader("x"))
	require.NoError(t, err)
	assert.Contains(t, cache.vals, existsKeyPrefix+"pid-1")

	exists, err := client.ObjectExists(context.Background(), "pid-1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 0, inner.existsCalls, "a created object is known without asking the node")
}
