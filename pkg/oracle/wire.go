package oracle

import (
	"encoding/json"

	"github.com/arg-debug/argdap/pkg/argmodel"
)

// Wire request/response payloads for the analyzer's JSON-RPC surface
// (§6): arg_lookup, arg_state, arg_eval_int. Framed as newline-delimited
// JSON-RPC 2.0 over a net.Conn by Dial.

// LookupParams requests nodes covering a location, or — with Location
// nil — the analyzer's entry nodes.
type LookupParams struct {
	Location *argmodel.Location `json:"location,omitempty"`
	NodeID   string             `json:"nodeId,omitempty"`
}

// LookupResult is one element of an arg_lookup response.
type LookupResult struct {
	Node argmodel.NodeInfo `json:"node"`
}

// ARGNodeParams names the node a state query targets.
type ARGNodeParams struct {
	NodeID string `json:"nodeId"`
}

// ARGExprQueryParams names the node and expression an eval query targets.
type ARGExprQueryParams struct {
	NodeID     string `json:"nodeId"`
	Expression string `json:"expression"`
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      uint64      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error,omitempty"`
}
