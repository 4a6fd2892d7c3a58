package stepengine_test

import (
	"github.com/arg-debug/argdap/pkg/argmodel"
	"github.com/arg-debug/argdap/pkg/oracle"
)

// fakeOracle is a mock ARG Oracle backed by an in-memory node map, used
// by the stepping engine's end-to-end scenario tests (§8). LookupByID
// applies the same return-node location patch a real oracle.Client
// does; LookupByLocation returns its fixtures exactly as stored.
type fakeOracle struct {
	nodes   map[string]argmodel.NodeInfo
	entries []argmodel.NodeInfo
	byLine  map[int][]argmodel.NodeInfo
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{
		nodes:  make(map[string]argmodel.NodeInfo),
		byLine: make(map[int][]argmodel.NodeInfo),
	}
}

func (f *fakeOracle) add(n argmodel.NodeInfo) {
	f.nodes[n.NodeID] = n
}

var _ oracle.Client = (*fakeOracle)(nil)

func (f *fakeOracle) LookupByLocation(loc *argmodel.Location) ([]argmodel.NodeInfo, error) {
	if loc == nil {
		return f.entries, nil
	}
	return f.byLine[loc.Line], nil
}

func (f *fakeOracle) LookupByID(nodeID string) (argmodel.NodeInfo, error) {
	n, ok := f.nodes[nodeID]
	if !ok {
		return argmodel.NodeInfo{}, &oracle.ErrNotFound{NodeID: nodeID}
	}
	if n.IsReturnNode() {
		n.Location.Line = n.Location.EndLine
		n.Location.Column = n.Location.EndColumn
	}
	return n, nil
}

func (f *fakeOracle) FetchState(nodeID string) (argmodel.StateTree, error) {
	return argmodel.StateTree{}, nil
}

func (f *fakeOracle) EvalInt(nodeID, expression string) (argmodel.ExprResult, error) {
	return argmodel.ExprResult{}, nil
}
