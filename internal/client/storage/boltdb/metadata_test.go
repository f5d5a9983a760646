package boltdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/iudanet/jobtrail/internal/client/storage"
)

func TestSaveAndGetLastSyncTimestamp(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	// Изначально, если timestamp не сохранён, ожидаем 0
	ts, err := store.GetLastSyncTimestamp(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)

	var expectedTS int64 = 1234567890
	require.NoError(t, store.SaveLastSyncTimestamp(ctx, expectedTS))

	gotTS, err := store.GetLastSyncTimestamp(ctx)
	require.NoError(t, err)
	assert.Equal(t, expectedTS, gotTS)
}

func TestLastSyncTimestamp_BucketMissing(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	// Удаляем bucket metadata напрямую
	err := store.db.Update(func(tx *bbolt.Tx) error {
		return tx.DeleteBucket(bucketMetadata)
	})
	require.NoError(t, err)

	_, err = store.GetLastSyncTimestamp(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageUnavailable)

	err = store.SaveLastSyncTimestamp(ctx, 42)
	assert.ErrorIs(t, err, storage.ErrStorageUnavailable)
}
