package engine

import (
	"github.com/polywrap/near-engine/pkg/codec"
	"github.com/polywrap/near-engine/pkg/engine/endpoint"
	"github.com/polywrap/near-engine/pkg/near"
)

const (
	RPCEventTransactionDecoded = endpoint.NamespaceNear + "_" + endpoint.EventTransactionDecoded
)

// EventTransactionDecoded is the payload of RPCEventTransactionDecoded.
type EventTransactionDecoded struct {
	Transaction *near.Transaction `json:"transaction"`
	Hash        near.CryptoHash   `json:"hash"`
	Size        int               `json:"size"`
}

func newEventTransactionDecoded(data codec.Encodable) (*EventTransactionDecoded, error) {
	tx, ok := data.(*near.Transaction)
	if !ok {
		return nil, errUnexpectedEventData
	}
	encoded, err := tx.Encode()
	if err != nil {
		return nil, err
	}
	hash, err := tx.Hash()
	if err != nil {
		return nil, err
	}
	return &EventTransactionDecoded{
		Transaction: tx,
		Hash:        hash,
		Size:        len(encoded),
	}, nil
}
