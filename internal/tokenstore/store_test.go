package tokenstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T) (*Store, *FileTier, *FileTier) {
	t.Helper()
	dir := t.TempDir()
	durable := NewFileTier(filepath.Join(dir, "state", "tokens.json"))
	ephemeral := NewFileTier(filepath.Join(dir, "run", "session-1.json"))
	return New(durable, ephemeral), durable, ephemeral
}

func TestStoreRoutesKeysToTiers(t *testing.T) {
	ctx := context.Background()
	durable := NewMemoryTier()
	ephemeral := NewMemoryTier()
	store := New(durable, ephemeral)

	require.NoError(t, store.Set(ctx, KeyAccessToken, "access-1"))
	require.NoError(t, store.SetAuthToken(ctx, "signup-1"))

	_, ok, _ := durable.Get(ctx, string(KeyAccessToken))
	assert.True(t, ok)
	_, ok, _ = ephemeral.Get(ctx, string(KeyAccessToken))
	assert.False(t, ok)

	val, ok, _ := ephemeral.Get(ctx, string(KeySignupToken))
	assert.True(t, ok)
	assert.Equal(t, "signup-1", val)
	_, ok, _ = durable.Get(ctx, string(KeyAuthToken))
	assert.False(t, ok)
}

func TestStoreRejectsUnknownKey(t *testing.T) {
	store := New(NewMemoryTier(), NewMemoryTier())
	err := store.Set(context.Background(), Key("refreshToken"), "x")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestStoreBlankValueReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemoryTier(), NewMemoryTier())
	require.NoError(t, store.Set(ctx, KeyAccessToken, "   "))

	_, ok, err := store.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreIdentityRoundTripAcrossInstances(t *testing.T) {
	ctx := context.Background()
	store, durable, ephemeral := newFileStore(t)
	user := UserSummary{ID: "u1", Role: "JOBSEEKER", Nickname: "minji"}
	require.NoError(t, store.SetIdentity(ctx, "access-1", user))

	reopened := New(NewFileTier(durable.Path()), NewFileTier(ephemeral.Path()))
	token, err := reopened.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-1", token)

	got, ok, err := reopened.User(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, user, got)
}

func TestStoreCorruptUserReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemoryTier(), NewMemoryTier())
	require.NoError(t, store.Set(ctx, KeyUser, "{not json"))

	_, ok, err := store.User(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTakeIDTokenDeletesValue(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemoryTier(), NewMemoryTier())
	require.NoError(t, store.SetIDToken(ctx, " id-token "))

	got, err := store.TakeIDToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "id-token", got)

	again, err := store.TakeIDToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestClearAllRemovesEveryKey(t *testing.T) {
	ctx := context.Background()
	store, durable, ephemeral := newFileStore(t)

	require.NoError(t, store.SetIdentity(ctx, "access", UserSummary{ID: "u1", Role: "COMPANY"}))
	require.NoError(t, store.SetIDToken(ctx, "id"))
	require.NoError(t, store.SetAuthToken(ctx, "auth"))
	require.NoError(t, store.SetResumeID(ctx, "r1"))

	require.NoError(t, store.ClearAll(ctx))

	for _, key := range append(append([]Key{}, durableKeys...), ephemeralKeys...) {
		_, ok, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, "key %s survived ClearAll", key)
	}
	_, err := os.Stat(durable.Path())
	assert.True(t, os.IsNotExist(err), "expected durable file removed")
	_, err = os.Stat(ephemeral.Path())
	assert.True(t, os.IsNotExist(err), "expected ephemeral file removed")
}

func TestClearAllWithNothingStored(t *testing.T) {
	store, _, _ := newFileStore(t)
	assert.NoError(t, store.ClearAll(context.Background()))
}

type countingTier struct {
	*MemoryTier
	deletes int
	fail    error
}

func (c *countingTier) Delete(ctx context.Context, keys ...string) error {
	c.deletes++
	if c.fail != nil {
		return c.fail
	}
	return c.MemoryTier.Delete(ctx, keys...)
}

func TestClearAllIssuesOneDeletePerTier(t *testing.T) {
	durable := &countingTier{MemoryTier: NewMemoryTier()}
	ephemeral := &countingTier{MemoryTier: NewMemoryTier()}
	store := New(durable, ephemeral)

	require.NoError(t, store.ClearAll(context.Background()))
	assert.Equal(t, 1, durable.deletes)
	assert.Equal(t, 1, ephemeral.deletes)
}

func TestClearAllAttemptsBothTiersOnFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	durable := &countingTier{MemoryTier: NewMemoryTier(), fail: boom}
	ephemeral := &countingTier{MemoryTier: NewMemoryTier()}
	store := New(durable, ephemeral)
	require.NoError(t, store.SetAuthToken(ctx, "auth"))

	err := store.ClearAll(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, ephemeral.deletes)
	token, err := store.AuthToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestClearGroupsKeysByTier(t *testing.T) {
	ctx := context.Background()
	durable := &countingTier{MemoryTier: NewMemoryTier()}
	ephemeral := &countingTier{MemoryTier: NewMemoryTier()}
	store := New(durable, ephemeral)
	require.NoError(t, store.SetAuthToken(ctx, "auth"))

	require.NoError(t, store.Clear(ctx, KeyAuthToken, KeySignupToken))
	assert.Equal(t, 0, durable.deletes)
	assert.Equal(t, 1, ephemeral.deletes)
}

func TestFileTierWritesOwnerOnlyFile(t *testing.T) {
	tier := NewFileTier(filepath.Join(t.TempDir(), "tokens.json"))
	require.NoError(t, tier.Set(context.Background(), "accessToken", "a"))

	info, err := os.Stat(tier.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileTierDeleteDiscardsCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))
	tier := NewFileTier(path)

	_, _, err := tier.Get(context.Background(), "accessToken")
	require.Error(t, err)

	require.NoError(t, tier.Delete(context.Background(), "accessToken"))
	_, ok, err := tier.Get(context.Background(), "accessToken")
	require.NoError(t, err)
	assert.False(t, ok)
}
