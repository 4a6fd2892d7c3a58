package oracle

import (
	"encoding/json"
	"testing"

	"github.com/arg-debug/argdap/pkg/argmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRPCRequestRoundTrip(t *testing.T) {
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      7,
		Method:  "arg_lookup",
		Params:  LookupParams{NodeID: "A"},
	}
	buf, err := json.Marshal(req)
	require.NoError(t, err)

	var decoded struct {
		JSONRPC string       `json:"jsonrpc"`
		ID      uint64       `json:"id"`
		Method  string       `json:"method"`
		Params  LookupParams `json:"params"`
	}
	require.NoError(t, json.Unmarshal(buf, &decoded))
	assert.Equal(t, "2.0", decoded.JSONRPC)
	assert.Equal(t, uint64(7), decoded.ID)
	assert.Equal(t, "arg_lookup", decoded.Method)
	assert.Equal(t, "A", decoded.Params.NodeID)
}

func TestRPCResponseDecodesResultAndError(t *testing.T) {
	ok := []byte(`{"jsonrpc":"2.0","id":1,"result":[{"node":{"nodeId":"A"}}]}`)
	var okResp rpcResponse
	require.NoError(t, json.Unmarshal(ok, &okResp))
	assert.Nil(t, okResp.Error)

	var results []LookupResult
	require.NoError(t, json.Unmarshal(okResp.Result, &results))
	require.Len(t, results, 1)
	assert.Equal(t, "A", results[0].Node.NodeID)

	failed := []byte(`{"jsonrpc":"2.0","id":2,"error":{"code":-1,"message":"bad expression"}}`)
	var errResp rpcResponse
	require.NoError(t, json.Unmarshal(failed, &errResp))
	require.NotNil(t, errResp.Error)
	assert.Equal(t, "bad expression", errResp.Error.Message)
}

func TestLookupParamsOmitsNilLocation(t *testing.T) {
	buf, err := json.Marshal(LookupParams{NodeID: "A"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodeId":"A"}`, string(buf))
}

func TestLookupParamsEncodesLocationByValue(t *testing.T) {
	loc := argmodel.Location{File: "main.go", Line: 3}
	buf, err := json.Marshal(LookupParams{Location: &loc})
	require.NoError(t, err)
	var decoded LookupParams
	require.NoError(t, json.Unmarshal(buf, &decoded))
	require.NotNil(t, decoded.Location)
	assert.Equal(t, "main.go", decoded.Location.File)
	assert.Equal(t, 3, decoded.Location.Line)
}
