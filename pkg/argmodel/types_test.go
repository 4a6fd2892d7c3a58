package argmodel_test

import (
	"testing"

	"github.com/arg-debug/argdap/pkg/argmodel"
	"github.com/stretchr/testify/assert"
)

func TestEdgesByCFGNodeID(t *testing.T) {
	edges := []argmodel.EdgeInfo{
		{NodeID: "a", CFGNodeID: "X"},
		{NodeID: "b", CFGNodeID: "Y"},
		{NodeID: "c", CFGNodeID: "X"},
	}
	matches := argmodel.EdgesByCFGNodeID(edges, "X")
	assert.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].NodeID)
	assert.Equal(t, "c", matches[1].NodeID)

	assert.Empty(t, argmodel.EdgesByCFGNodeID(edges, "Z"))
}

func TestEdgeByNodeID(t *testing.T) {
	edges := []argmodel.EdgeInfo{
		{NodeID: "a", CFGNodeID: "X"},
		{NodeID: "b", CFGNodeID: "Y"},
	}
	edge, ok := argmodel.EdgeByNodeID(edges, "b")
	assert.True(t, ok)
	assert.Equal(t, "Y", edge.CFGNodeID)

	_, ok = argmodel.EdgeByNodeID(edges, "missing")
	assert.False(t, ok)
}

func TestIsReturnNode(t *testing.T) {
	plain := argmodel.NodeInfo{OutgoingCFG: []argmodel.EdgeInfo{{NodeID: "b"}}}
	assert.False(t, plain.IsReturnNode())

	deadEnd := argmodel.NodeInfo{}
	assert.False(t, deadEnd.IsReturnNode(), "no outgoing return edges either")

	ret := argmodel.NodeInfo{OutgoingReturn: []argmodel.EdgeInfo{{NodeID: "caller"}}}
	assert.True(t, ret.IsReturnNode())
}
