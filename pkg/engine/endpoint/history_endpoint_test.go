package endpoint

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polywrap/near-engine/pkg/db"
	"github.com/polywrap/near-engine/pkg/history"
	"github.com/polywrap/near-engine/pkg/near"
	"github.com/polywrap/near-engine/pkg/rpc"
)

func newTestHistory(t *testing.T) *history.Store {
	t.Helper()
	database, err := db.NewInMemoryDB()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	store, err := history.NewStore(database, 10)
	require.NoError(t, err)
	return store
}

func TestHistoryEndpoint(t *testing.T) {
	store := newTestHistory(t)
	tx := &near.Transaction{}
	require.NoError(t, json.Unmarshal([]byte(transferJSON), tx))
	record, err := store.Put(tx)
	require.NoError(t, err)

	ep := NewHistoryEndpoint(store)
	assert.Equal(t, "history", ep.Namespace())

	resp := invoke(t, ep.HandleGetTransaction, `{"hash":"`+record.Hash.String()+`"}`)
	require.NoError(t, resp.Err())
	fetched, ok := resp.Data().(*history.Record)
	require.True(t, ok)
	assert.Equal(t, record.ID, fetched.ID)
	assert.Equal(t, transferHash, hexString(fetched.Hash[:]))

	resp = invoke(t, ep.HandleGetTransaction, `{"hash":"`+near.CryptoHash{}.String()+`"}`)
	assert.ErrorIs(t, resp.Err(), rpc.ErrInvalidParams)
	assert.ErrorIs(t, resp.Err(), history.ErrNotFound)

	resp = invoke(t, ep.HandleGetTransaction, `{}`)
	assert.ErrorIs(t, resp.Err(), rpc.ErrInvalidParams)

	resp = invoke(t, ep.HandleGetRecentTransactions, ``)
	require.NoError(t, resp.Err())
	recent, ok := resp.Data().(*GetRecentTransactionsResponse)
	require.True(t, ok)
	require.Len(t, recent.Transactions, 1)
	assert.Equal(t, record.ID, recent.Transactions[0].ID)

	resp = invoke(t, ep.HandleGetRecentTransactions, `{"limit": 1000}`)
	assert.ErrorIs(t, resp.Err(), rpc.ErrInvalidParams)
}
