package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polywrap/near-engine/pkg/crypto"
)

var testData = []struct {
	Key   []byte
	Value []byte
}{
	{
		Key:   []byte{0, 0},
		Value: crypto.RandomBytes(100),
	},
	{
		Key:   []byte{0, 1},
		Value: crypto.RandomBytes(100),
	},
	{
		Key:   []byte{1, 0},
		Value: crypto.RandomBytes(100),
	},
	{
		Key:   []byte{1, 1},
		Value: crypto.RandomBytes(100),
	},
}

func TestDB(t *testing.T) {
	diskDB, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer diskDB.Close()

	inmemoryDB, err := NewInMemoryDB()
	require.NoError(t, err)
	defer inmemoryDB.Close()

	for _, db := range []*DB{diskDB, inmemoryDB} {
		for _, kv := range testData {
			require.NoError(t, db.Set(kv.Key, kv.Value))
		}

		fetched, err := db.Get(testData[0].Key)
		assert.NoError(t, err)
		assert.Equal(t, testData[0].Value, fetched)

		_, err = db.Get([]byte{9})
		assert.ErrorIs(t, err, ErrDataNotFound)

		exist, err := db.Exist(testData[0].Key)
		assert.NoError(t, err)
		assert.True(t, exist)

		exist, err = db.Exist(crypto.RandomBytes(5))
		assert.NoError(t, err)
		assert.False(t, exist)

		result, err := db.Iterate([]byte{0}, 1, false)
		assert.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, testData[0].Key, result[0].Key())
		assert.Equal(t, testData[0].Value, result[0].Value())

		result, err = db.Iterate([]byte{0}, 1, true)
		assert.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, testData[1].Key, result[0].Key())

		result, err = db.Iterate([]byte{0}, -1, true)
		assert.NoError(t, err)
		assert.Len(t, result, 2)

		keys, err := db.IterateKey([]byte{1}, -1, false)
		assert.NoError(t, err)
		assert.Equal(t, [][]byte{testData[2].Key, testData[3].Key}, keys)

		require.NoError(t, db.Del(testData[3].Key))
		exist, err = db.Exist(testData[3].Key)
		assert.NoError(t, err)
		assert.False(t, exist)
	}
}

func TestBatch(t *testing.T) {
	db, err := NewInMemoryDB()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Set([]byte{1}, []byte{1}))
	batch := db.NewBatch()
	require.NoError(t, batch.Set([]byte{2}, []byte{2}))
	require.NoError(t, batch.Del([]byte{1}))

	exist, err := db.Exist([]byte{2})
	require.NoError(t, err)
	assert.False(t, exist)

	require.NoError(t, db.Write(batch))
	value, err := db.Get([]byte{2})
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, value)
	exist, err = db.Exist([]byte{1})
	require.NoError(t, err)
	assert.False(t, exist)
}

func TestUpperBound(t *testing.T) {
	assert.Equal(t, []byte{0, 2}, upperBound([]byte{0, 1}))
	assert.Equal(t, []byte{1}, upperBound([]byte{0, 255}))
	assert.Nil(t, upperBound([]byte{255, 255}))
}
