// Package argmodel holds the in-memory value types for the Abstract
// Reachability Graph produced by the analyzer: locations, nodes and the
// tagged union of edges between them.
package argmodel

// Location is a source range, relative to the analyzed project's root.
type Location struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	EndLine   int    `json:"endLine"`
	EndColumn int    `json:"endColumn"`
}

// EdgeKind tags which variant of EdgeInfo a value holds.
type EdgeKind int

const (
	CFGEdgeKind EdgeKind = iota
	EntryEdgeKind
	ReturnEdgeKind
)

// EdgeInfo is a tagged union over the three kinds of ARG edge. Every
// variant shares NodeID (the ARG successor) and CFGNodeID (the CFG
// successor); Kind selects which of the variant-only fields apply.
type EdgeInfo struct {
	Kind EdgeKind

	NodeID    string
	CFGNodeID string

	// CFGEdge-only.
	StatementDisplay string

	// EntryEdge-only.
	Function        string
	Args            []string
	CreatesNewThread bool
}

// NodeInfo is the identity of one ARG node.
type NodeInfo struct {
	NodeID    string
	CFGNodeID string
	Function  string
	Location  Location

	OutgoingCFG   []EdgeInfo
	IncomingCFG   []EdgeInfo
	OutgoingEntry []EdgeInfo
	IncomingEntry []EdgeInfo
	OutgoingReturn []EdgeInfo
}

// IsReturnNode reports whether n has no outgoing CFG edges but at least
// one outgoing return edge — the identifying shape of a function return
// node (§3).
func (n *NodeInfo) IsReturnNode() bool {
	return len(n.OutgoingCFG) == 0 && len(n.OutgoingReturn) > 0
}

// EdgesByCFGNodeID filters edges to those sharing the given CFG node id.
func EdgesByCFGNodeID(edges []EdgeInfo, cfgNodeID string) []EdgeInfo {
	var out []EdgeInfo
	for _, e := range edges {
		if e.CFGNodeID == cfgNodeID {
			out = append(out, e)
		}
	}
	return out
}

// EdgeByNodeID returns the first edge whose NodeID matches, and whether
// one was found.
func EdgeByNodeID(edges []EdgeInfo, nodeID string) (EdgeInfo, bool) {
	for _, e := range edges {
		if e.NodeID == nodeID {
			return e, true
		}
	}
	return EdgeInfo{}, false
}

// StateTree is the opaque hierarchical value returned by the oracle's
// state query; it is only consumed by variable rendering, never by the
// stepping engine.
type StateTree struct {
	// Name is the display name of this node in the tree (a variable name,
	// or a synthetic grouping like "locals").
	Name string `json:"name"`
	// Value is a pre-rendered display string for leaf values; empty for
	// interior nodes that only group children.
	Value string `json:"value,omitempty"`
	// Locked is true for values representing a held mutex, surfaced via
	// the synthetic "<locked>" key in the "All" scope (§4.4).
	Locked bool `json:"locked,omitempty"`
	// Children holds nested values (struct fields, array elements, ...).
	Children []StateTree `json:"children,omitempty"`
}

// ExprResult is the outcome of evaluating an integer-valued expression
// at a node via the oracle.
type ExprResult struct {
	Display string `json:"display"`
	Value   int64  `json:"value"`
}
