package buffer

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/storefront/domain"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "buffer.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func pending(id, name string) Pending {
	return Pending{Product: domain.Product{ID: id, Name: name, Price: 12000, CreatedBy: "admin-1"}}
}

func productIDs(items []Pending) []string {
	ids := make([]string, 0, len(items))
	for _, p := range items {
		ids = append(ids, p.Product.ID)
	}
	return ids
}

func TestStore_AddKeepsArrivalOrder(t *testing.T) {
	store := openStore(t)
	require.NoError(t, store.Add(pending("p-1", "Mug")))
	require.NoError(t, store.Add(pending("p-2", "Cap")))
	require.NoError(t, store.Add(pending("p-3", "Tote")))

	items, err := store.Peek(10)
	require.NoError(t, err)
	assert.Equal(t, []string{"p-1", "p-2", "p-3"}, productIDs(items))
	assert.Equal(t, OperationCreate, items[0].Operation)
	assert.False(t, items[0].QueuedAt.IsZero())
	assert.Equal(t, int64(12000), items[0].Product.Price)

	items, err = store.Peek(2)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 3, size)
}

func TestStore_AddRejectsDuplicateSubmission(t *testing.T) {
	store := openStore(t)
	require.NoError(t, store.Add(pending("p-1", "Linen Shirt")))

	err := store.Add(pending("p-2", "  linen   shirt "))
	assert.ErrorIs(t, err, ErrAlreadyPending)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))

	other := pending("p-3", "Linen Shirt")
	other.Product.CreatedBy = "admin-2"
	require.NoError(t, store.Add(other))

	size, _ := store.Size()
	assert.Equal(t, 2, size)
}

func TestStore_AddRequiresProductID(t *testing.T) {
	store := openStore(t)
	assert.ErrorIs(t, store.Add(pending("", "Mug")), domain.ErrInvalidPayload)
}

func TestStore_RemoveFreesFingerprint(t *testing.T) {
	store := openStore(t)
	first := pending("p-1", "Mug")
	require.NoError(t, store.Add(first))

	require.NoError(t, store.Remove(pending("p-other", "Mug")))
	size, _ := store.Size()
	assert.Equal(t, 1, size, "a different product with the same fingerprint is left alone")

	require.NoError(t, store.Remove(first))
	require.NoError(t, store.Remove(first))
	size, _ = store.Size()
	assert.Equal(t, 0, size)

	assert.NoError(t, store.Add(pending("p-2", "Mug")))
}

func TestStore_RetryMovesToBack(t *testing.T) {
	store := openStore(t)
	require.NoError(t, store.Add(pending("p-1", "Mug")))
	require.NoError(t, store.Add(pending("p-2", "Cap")))

	items, err := store.Peek(1)
	require.NoError(t, err)
	retried := items[0]
	queuedAt := retried.QueuedAt
	retried.Attempts++
	require.NoError(t, store.Retry(retried))

	items, err = store.Peek(10)
	require.NoError(t, err)
	assert.Equal(t, []string{"p-2", "p-1"}, productIDs(items))
	assert.Equal(t, 1, items[1].Attempts)
	assert.True(t, queuedAt.Equal(items[1].QueuedAt))

	assert.ErrorIs(t, store.Add(pending("p-9", "Mug")), ErrAlreadyPending)

	require.NoError(t, store.Retry(pending("missing", "Nothing")))
	size, _ := store.Size()
	assert.Equal(t, 2, size)
}

func TestStore_Cleanup(t *testing.T) {
	store := openStore(t)
	now := time.Now()
	stale := pending("stale", "Old Mug")
	stale.QueuedAt = now.Add(-48 * time.Hour)
	require.NoError(t, store.Add(stale))
	require.NoError(t, store.Add(pending("fresh", "Cap")))

	require.NoError(t, store.Cleanup(now.Add(-24*time.Hour)))

	items, err := store.Peek(10)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, productIDs(items))
	assert.NoError(t, store.Add(pending("again", "Old Mug")))
}

func TestStore_NilIsClosed(t *testing.T) {
	var store *Store
	assert.Error(t, store.Add(pending("p-1", "Mug")))
	_, err := store.Size()
	assert.Error(t, err)
	_, err = store.Peek(1)
	assert.Error(t, err)
	assert.NoError(t, store.Close())
}
