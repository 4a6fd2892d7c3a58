package stepengine

import "github.com/arg-debug/argdap/pkg/argmodel"

// findReturnSet performs a cycle-safe DFS from start along outgoingCFG
// edges, collecting the NodeIDs pointed to by the outgoingReturn edges
// of every reachable node that has at least one (§4.2.4 `findReachable`
// / `returnSet`). Visited nodes are keyed by NodeID so a cyclic ARG
// cannot loop the search forever; budget is O(ARG size) per call (§9).
func (e *Engine) findReturnSet(start *argmodel.NodeInfo) (map[string]bool, error) {
	visited := make(map[string]bool)
	returnSet := make(map[string]bool)

	var dfs func(n *argmodel.NodeInfo) error
	dfs = func(n *argmodel.NodeInfo) error {
		if visited[n.NodeID] {
			return nil
		}
		visited[n.NodeID] = true

		if len(n.OutgoingReturn) > 0 {
			for _, re := range n.OutgoingReturn {
				returnSet[re.NodeID] = true
			}
		}
		for _, ce := range n.OutgoingCFG {
			next, err := e.lookupByID(ce.NodeID, "")
			if err != nil {
				return err
			}
			if err := dfs(&next); err != nil {
				return err
			}
		}
		return nil
	}
	if err := dfs(start); err != nil {
		return nil, err
	}
	return returnSet, nil
}

// findEntryNode walks backward from n along incomingCFG edges,
// cycle-safe, until it reaches a node with no incoming CFG edges of its
// own — the entry node of n's function (§4.3). A structured CFG has a
// single entry per function, so any unvisited predecessor path
// converges on the same answer; the DFS returns the first one found.
// Returns nil (no error) if every backward path cycles without ever
// reaching a no-incoming-CFG-edges node.
func (e *Engine) findEntryNode(n *argmodel.NodeInfo) (*argmodel.NodeInfo, error) {
	visited := make(map[string]bool)

	var dfs func(cur *argmodel.NodeInfo) (*argmodel.NodeInfo, error)
	dfs = func(cur *argmodel.NodeInfo) (*argmodel.NodeInfo, error) {
		if visited[cur.NodeID] {
			return nil, nil
		}
		visited[cur.NodeID] = true

		if len(cur.IncomingCFG) == 0 {
			return cur, nil
		}
		for _, edge := range cur.IncomingCFG {
			pred, err := e.lookupByID(edge.NodeID, "")
			if err != nil {
				return nil, err
			}
			found, err := dfs(&pred)
			if err != nil {
				return nil, err
			}
			if found != nil {
				return found, nil
			}
		}
		return nil, nil
	}
	return dfs(n)
}
