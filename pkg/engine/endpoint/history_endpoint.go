package endpoint

import (
	"errors"
	"fmt"

	"github.com/polywrap/near-engine/pkg/history"
	"github.com/polywrap/near-engine/pkg/near"
	"github.com/polywrap/near-engine/pkg/router"
	"github.com/polywrap/near-engine/pkg/rpc"
)

const (
	NamespaceHistory = "history"
	maxRecentLimit   = 100
)

// TransactionHistory reads stored transactions.
type TransactionHistory interface {
	Get(hash near.CryptoHash) (*history.Record, error)
	Recent(limit int) ([]*history.Record, error)
}

type historyEndpoint struct {
	history TransactionHistory
}

func NewHistoryEndpoint(history TransactionHistory) *historyEndpoint {
	return &historyEndpoint{
		history: history,
	}
}

func (a *historyEndpoint) Namespace() string {
	return NamespaceHistory
}

func (a *historyEndpoint) Get() router.EndpointHandlers {
	return map[string]router.EndpointHandler{
		"getTransaction":        a.HandleGetTransaction,
		"getRecentTransactions": a.HandleGetRecentTransactions,
	}
}

type GetTransactionRequest struct {
	Hash *near.CryptoHash `json:"hash"`
}

func (a *historyEndpoint) HandleGetTransaction(w router.EndpointResponseWriter, r *router.EndpointRequest) {
	req := &GetTransactionRequest{}
	if err := parseParams(r.Params(), req); err != nil {
		w.Error(err)
		return
	}
	if req.Hash == nil {
		w.Error(missingParam("hash"))
		return
	}
	record, err := a.history.Get(*req.Hash)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			w.Error(invalidParams(err))
			return
		}
		w.Error(err)
		return
	}
	w.Write(record)
}

type GetRecentTransactionsRequest struct {
	Limit int `json:"limit"`
}

type GetRecentTransactionsResponse struct {
	Transactions []*history.Record `json:"transactions"`
}

func (a *historyEndpoint) HandleGetRecentTransactions(w router.EndpointResponseWriter, r *router.EndpointRequest) {
	req := &GetRecentTransactionsRequest{Limit: 10}
	if len(r.Params()) > 0 {
		if err := parseParams(r.Params(), req); err != nil {
			w.Error(err)
			return
		}
	}
	if req.Limit <= 0 || req.Limit > maxRecentLimit {
		w.Error(fmt.Errorf("%w: limit must be between 1 and %d", rpc.ErrInvalidParams, maxRecentLimit))
		return
	}
	records, err := a.history.Recent(req.Limit)
	if err != nil {
		w.Error(err)
		return
	}
	w.Write(&GetRecentTransactionsResponse{Transactions: records})
}
