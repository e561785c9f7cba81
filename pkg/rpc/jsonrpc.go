package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	jsonRPCParseError          = -32700
	jsonRPCInvalidRequestError = -32600
	jsonRPCMethodNotFoundError = -32601
	jsonRPCInvalidParamError   = -32602
	jsonRPCInternalError       = -32603
	jsonRPCInvalidRequest      = -32000
)

var (
	// ErrMethodNotFound is returned by invokers for unknown endpoints.
	ErrMethodNotFound = errors.New("method not found")
	// ErrInvalidParams is returned by endpoints which cannot use the request params.
	ErrInvalidParams = errors.New("invalid params")
)

type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	ID      json.RawMessage `json:"id,omitempty"`
	Params  json.RawMessage `json:"params"`
}

func (r *JSONRPCRequest) Validate() error {
	if r.JSONRPC != "2.0" {
		return fmt.Errorf("invalid json rpc version %s", r.JSONRPC)
	}
	if len(r.ID) > 0 {
		var id interface{}
		if err := json.Unmarshal(r.ID, &id); err != nil {
			return fmt.Errorf("invalid json rpc id %s", string(r.ID))
		}
		switch id.(type) {
		case string, float64, nil:
		default:
			return fmt.Errorf("invalid json rpc id %s", string(r.ID))
		}
	}
	if r.Method == "" {
		return fmt.Errorf("json RPC method must be specified")
	}
	return nil
}

type JSONRPCErrorResponse struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data,omitempty"`
}

type JSONRPCResponse struct {
	JSONRPC string                `json:"jsonrpc"`
	ID      json.RawMessage       `json:"id"`
	Result  json.RawMessage       `json:"result,omitempty"`
	Error   *JSONRPCErrorResponse `json:"error,omitempty"`
}

// errorCode maps endpoint errors to JSON RPC error codes.
func errorCode(err error) int {
	switch {
	case errors.Is(err, ErrMethodNotFound):
		return jsonRPCMethodNotFoundError
	case errors.Is(err, ErrInvalidParams):
		return jsonRPCInvalidParamError
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return jsonRPCInternalError
	default:
		return jsonRPCInvalidRequest
	}
}

func responseID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}
	return id
}

func getErrResponse(id json.RawMessage, err error, errCode int) []byte {
	jsonErr := &JSONRPCErrorResponse{
		Message: err.Error(),
		Code:    errCode,
	}
	resp := &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      responseID(id),
		Error:   jsonErr,
	}
	result, err := json.Marshal(resp)
	if err != nil {
		return []byte("Fail to marshal response")
	}
	return result
}

func getSuccessResponse(id json.RawMessage, result []byte) []byte {
	resp := &JSONRPCResponse{
		ID:      responseID(id),
		JSONRPC: "2.0",
		Result:  result,
	}
	result, err := json.Marshal(resp)
	if err != nil {
		return []byte("Fail to marshal response")
	}
	return result
}

// handleRequest invokes the method and returns the JSON RPC response body.
func handleRequest(ctx context.Context, invoker Invoker, req *JSONRPCRequest) ([]byte, bool) {
	result := invoker.Invoke(ctx, req.Method, req.Params)
	if err := result.Err(); err != nil {
		return getErrResponse(req.ID, err, errorCode(err)), false
	}
	resultData, err := result.JSONData()
	if err != nil {
		return getErrResponse(req.ID, err, jsonRPCInternalError), false
	}
	return getSuccessResponse(req.ID, resultData), true
}
