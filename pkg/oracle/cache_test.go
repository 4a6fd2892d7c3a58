package oracle_test

import (
	"testing"

	"github.com/arg-debug/argdap/pkg/argmodel"
	"github.com/arg-debug/argdap/pkg/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingClient counts calls per method so the cache's memoization can
// be verified without a real oracle process.
type countingClient struct {
	byIDCalls       int
	stateCalls      int
	evalCalls       int
	locationCalls   int
}

func (c *countingClient) LookupByLocation(loc *argmodel.Location) ([]argmodel.NodeInfo, error) {
	c.locationCalls++
	return []argmodel.NodeInfo{{NodeID: "A"}}, nil
}

func (c *countingClient) LookupByID(nodeID string) (argmodel.NodeInfo, error) {
	c.byIDCalls++
	return argmodel.NodeInfo{NodeID: nodeID}, nil
}

func (c *countingClient) FetchState(nodeID string) (argmodel.StateTree, error) {
	c.stateCalls++
	return argmodel.StateTree{Name: nodeID}, nil
}

func (c *countingClient) EvalInt(nodeID, expression string) (argmodel.ExprResult, error) {
	c.evalCalls++
	return argmodel.ExprResult{Value: 1}, nil
}

func TestCachingClientMemoizesLookupByID(t *testing.T) {
	inner := &countingClient{}
	cached := oracle.NewCachingClient(inner)

	_, err := cached.LookupByID("A")
	require.NoError(t, err)
	_, err = cached.LookupByID("A")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.byIDCalls, "second lookup hits the cache")
}

func TestCachingClientMemoizesFetchState(t *testing.T) {
	inner := &countingClient{}
	cached := oracle.NewCachingClient(inner)

	_, err := cached.FetchState("A")
	require.NoError(t, err)
	_, err = cached.FetchState("A")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.stateCalls)
}

func TestCachingClientNeverMemoizesLocationOrEval(t *testing.T) {
	inner := &countingClient{}
	cached := oracle.NewCachingClient(inner)

	_, _ = cached.LookupByLocation(nil)
	_, _ = cached.LookupByLocation(nil)
	assert.Equal(t, 2, inner.locationCalls)

	_, _ = cached.EvalInt("A", "x")
	_, _ = cached.EvalInt("A", "x")
	assert.Equal(t, 2, inner.evalCalls)
}

func TestCachingClientClearPurgesMemoization(t *testing.T) {
	inner := &countingClient{}
	cached := oracle.NewCachingClient(inner)

	_, _ = cached.LookupByID("A")
	cached.Clear()
	_, _ = cached.LookupByID("A")

	assert.Equal(t, 2, inner.byIDCalls, "Clear drops the memoized entry")
}

func TestCachingClientLookupByLocationPopulatesNodeCache(t *testing.T) {
	inner := &countingClient{}
	cached := oracle.NewCachingClient(inner)

	_, err := cached.LookupByLocation(&argmodel.Location{File: "main.go", Line: 1})
	require.NoError(t, err)

	_, err = cached.LookupByID("A")
	require.NoError(t, err)
	assert.Equal(t, 0, inner.byIDCalls, "the node surfaced by LookupByLocation is already cached")
}
