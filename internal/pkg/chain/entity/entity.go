package entity

import "encoding/json"

const JsonRpcVersion = "2.0"

type RpcRequest struct {
	JsonRpc string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      uint64 `json:"id"`
}

type RpcResponse[T any] struct {
	JsonRpc string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  T               `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CallMsg is the transaction object of eth_call.
type CallMsg struct {
	To   string `json:"to"`
	Data string `json:"data"`
}
