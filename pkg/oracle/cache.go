package oracle

import (
	"github.com/arg-debug/argdap/pkg/argmodel"
	lru "github.com/hashicorp/golang-lru"
)

// defaultCacheSize bounds how many distinct nodes a single stop's
// lookups can memoize before the oldest are evicted. A stop typically
// touches one node per tracked thread plus whatever a client's
// "scopes"/"variables" round trip asks for, so this is generously
// larger than any realistic thread count.
const defaultCacheSize = 256

// CachingClient wraps a Client with a bounded per-stop memoization
// layer (§9 "Ownership": caches are cleared on every stop). It never
// changes the semantics of a query, only how many times the underlying
// oracle is actually asked.
type CachingClient struct {
	inner Client
	nodes *lru.Cache
	state *lru.Cache
}

// NewCachingClient wraps inner with a fresh, empty cache.
func NewCachingClient(inner Client) *CachingClient {
	nodes, _ := lru.New(defaultCacheSize)
	state, _ := lru.New(defaultCacheSize)
	return &CachingClient{inner: inner, nodes: nodes, state: state}
}

// Clear drops every memoized node and state tree. Called by the
// stepping engine whenever it stops at a new location.
func (c *CachingClient) Clear() {
	c.nodes.Purge()
	c.state.Purge()
}

func (c *CachingClient) LookupByLocation(loc *argmodel.Location) ([]argmodel.NodeInfo, error) {
	// Location lookups are never memoized: a location lookup's result set
	// can depend on breakpoint state, not just the node graph, and is
	// only ever called once per pump step.
	nodes, err := c.inner.LookupByLocation(loc)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		c.nodes.Add(n.NodeID, n)
	}
	return nodes, nil
}

func (c *CachingClient) LookupByID(nodeID string) (argmodel.NodeInfo, error) {
	if v, ok := c.nodes.Get(nodeID); ok {
		return v.(argmodel.NodeInfo), nil
	}
	n, err := c.inner.LookupByID(nodeID)
	if err != nil {
		return argmodel.NodeInfo{}, err
	}
	c.nodes.Add(nodeID, n)
	return n, nil
}

func (c *CachingClient) FetchState(nodeID string) (argmodel.StateTree, error) {
	if v, ok := c.state.Get(nodeID); ok {
		return v.(argmodel.StateTree), nil
	}
	st, err := c.inner.FetchState(nodeID)
	if err != nil {
		return argmodel.StateTree{}, err
	}
	c.state.Add(nodeID, st)
	return st, nil
}

func (c *CachingClient) EvalInt(nodeID, expression string) (argmodel.ExprResult, error) {
	// Expression evaluation is never memoized: it is not a pure function
	// of (nodeID, expression) alone in general (the oracle may track
	// call-count side state for watch-style expressions).
	return c.inner.EvalInt(nodeID, expression)
}
