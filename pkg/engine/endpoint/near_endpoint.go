package endpoint

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/polywrap/near-engine/pkg/codec"
	"github.com/polywrap/near-engine/pkg/engine/config"
	"github.com/polywrap/near-engine/pkg/near"
	"github.com/polywrap/near-engine/pkg/router"
	"github.com/polywrap/near-engine/pkg/rpc"
)

const (
	NamespaceNear = "near"
	// EventTransactionDecoded is published with every transaction decoded by deserializeTransaction.
	EventTransactionDecoded = "transactionDecoded"
)

// Publisher receives events emitted by the endpoints.
type Publisher interface {
	Publish(event string, data codec.Encodable) error
}

type nearEndpoint struct {
	config    *config.CodecConfig
	publisher Publisher
}

func NewNearEndpoint(config *config.CodecConfig, publisher Publisher) *nearEndpoint {
	return &nearEndpoint{
		config:    config,
		publisher: publisher,
	}
}

func (a *nearEndpoint) Namespace() string {
	return NamespaceNear
}

func (a *nearEndpoint) Get() router.EndpointHandlers {
	return map[string]router.EndpointHandler{
		"serializeTransaction":       a.HandleSerializeTransaction,
		"deserializeTransaction":     a.HandleDeserializeTransaction,
		"hashTransaction":            a.HandleHashTransaction,
		"serializeSignedTransaction": a.HandleSerializeSignedTransaction,
		"verifySignedTransaction":    a.HandleVerifySignedTransaction,
		"formatNearAmount":           a.HandleFormatNearAmount,
		"parseNearAmount":            a.HandleParseNearAmount,
	}
}

type TransactionRequest struct {
	Transaction *near.Transaction `json:"transaction"`
}

type BytesResponse struct {
	Bytes codec.Hex `json:"bytes"`
}

func (a *nearEndpoint) HandleSerializeTransaction(w router.EndpointResponseWriter, r *router.EndpointRequest) {
	req := &TransactionRequest{}
	if err := parseParams(r.Params(), req); err != nil {
		w.Error(err)
		return
	}
	if req.Transaction == nil {
		w.Error(missingParam("transaction"))
		return
	}
	encoded, err := near.SerializeTransaction(req.Transaction)
	if err != nil {
		w.Error(invalidParams(err))
		return
	}
	w.Write(&BytesResponse{Bytes: encoded})
}

type DeserializeTransactionRequest struct {
	Bytes codec.Hex `json:"bytes"`
}

func (a *nearEndpoint) HandleDeserializeTransaction(w router.EndpointResponseWriter, r *router.EndpointRequest) {
	req := &DeserializeTransactionRequest{}
	if err := parseParams(r.Params(), req); err != nil {
		w.Error(err)
		return
	}
	tx, err := near.DeserializeTransaction(req.Bytes, a.config.AllowTrailingBytes)
	if err != nil {
		w.Error(invalidParams(err))
		return
	}
	if a.publisher != nil {
		if err := a.publisher.Publish(NamespaceNear+"_"+EventTransactionDecoded, tx); err != nil {
			r.Logger().Errorf("Fail to publish decoded transaction with %s", err)
		}
	}
	w.Write(tx)
}

type HashTransactionResponse struct {
	Hash       codec.Hex `json:"hash"`
	HashBase58 string    `json:"hashBase58"`
}

func (a *nearEndpoint) HandleHashTransaction(w router.EndpointResponseWriter, r *router.EndpointRequest) {
	req := &TransactionRequest{}
	if err := parseParams(r.Params(), req); err != nil {
		w.Error(err)
		return
	}
	if req.Transaction == nil {
		w.Error(missingParam("transaction"))
		return
	}
	hash, err := req.Transaction.Hash()
	if err != nil {
		w.Error(invalidParams(err))
		return
	}
	w.Write(&HashTransactionResponse{
		Hash:       hash[:],
		HashBase58: hash.String(),
	})
}

type SignedTransactionRequest struct {
	Transaction *near.Transaction `json:"transaction"`
	Signature   *near.Signature   `json:"signature"`
}

func (req *SignedTransactionRequest) signedTransaction() (*near.SignedTransaction, error) {
	if req.Transaction == nil {
		return nil, missingParam("transaction")
	}
	if req.Signature == nil {
		return nil, missingParam("signature")
	}
	return &near.SignedTransaction{
		Transaction: *req.Transaction,
		Signature:   *req.Signature,
	}, nil
}

func (a *nearEndpoint) HandleSerializeSignedTransaction(w router.EndpointResponseWriter, r *router.EndpointRequest) {
	req := &SignedTransactionRequest{}
	if err := parseParams(r.Params(), req); err != nil {
		w.Error(err)
		return
	}
	signed, err := req.signedTransaction()
	if err != nil {
		w.Error(err)
		return
	}
	encoded, err := signed.Encode()
	if err != nil {
		w.Error(invalidParams(err))
		return
	}
	w.Write(&BytesResponse{Bytes: encoded})
}

type VerifySignedTransactionResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func (a *nearEndpoint) HandleVerifySignedTransaction(w router.EndpointResponseWriter, r *router.EndpointRequest) {
	req := &SignedTransactionRequest{}
	if err := parseParams(r.Params(), req); err != nil {
		w.Error(err)
		return
	}
	signed, err := req.signedTransaction()
	if err != nil {
		w.Error(err)
		return
	}
	if err := signed.Verify(); err != nil {
		w.Write(&VerifySignedTransactionResponse{Valid: false, Error: err.Error()})
		return
	}
	w.Write(&VerifySignedTransactionResponse{Valid: true})
}

type AmountRequest struct {
	Amount string `json:"amount"`
}

type AmountResponse struct {
	Amount string `json:"amount"`
}

func (a *nearEndpoint) HandleFormatNearAmount(w router.EndpointResponseWriter, r *router.EndpointRequest) {
	req := &AmountRequest{}
	if err := parseParams(r.Params(), req); err != nil {
		w.Error(err)
		return
	}
	formatted, err := near.FormatNearAmount(req.Amount)
	if err != nil {
		w.Error(invalidParams(err))
		return
	}
	w.Write(&AmountResponse{Amount: formatted})
}

func (a *nearEndpoint) HandleParseNearAmount(w router.EndpointResponseWriter, r *router.EndpointRequest) {
	req := &AmountRequest{}
	if err := parseParams(r.Params(), req); err != nil {
		w.Error(err)
		return
	}
	parsed, err := near.ParseNearAmount(req.Amount)
	if err != nil {
		w.Error(invalidParams(err))
		return
	}
	w.Write(&AmountResponse{Amount: parsed})
}

func parseParams(params []byte, target interface{}) error {
	if len(params) == 0 {
		return fmt.Errorf("%w: params are required", rpc.ErrInvalidParams)
	}
	if err := json.Unmarshal(params, target); err != nil {
		return invalidParams(err)
	}
	return nil
}

func invalidParams(err error) error {
	if errors.Is(err, rpc.ErrInvalidParams) {
		return err
	}
	return fmt.Errorf("%w: %w", rpc.ErrInvalidParams, err)
}

func missingParam(name string) error {
	return fmt.Errorf("%w: %s is required", rpc.ErrInvalidParams, name)
}
