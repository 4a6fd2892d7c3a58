package dap

import (
	"strings"

	"github.com/arg-debug/argdap/pkg/argmodel"
	dapproto "github.com/google/go-dap"
)

// onScopes fetches a node's state tree once per stop and memoizes it
// (§4.4), then exposes two scopes built from that single tree: "All"
// (flattened, tmp-prefix filtered, plus a synthetic "<locked>" entry
// per held mutex) and "Raw" (the tree verbatim, rooted at "(arg/state)").
func (s *Session) onScopes(req *dapproto.ScopesRequest) error {
	threadID, frameIdx := decodeFrameID(req.Arguments.FrameId)
	th, ok := s.engine.Threads.Get(threadID)
	if !ok || frameIdx < 0 || frameIdx >= len(th.Frames) {
		return internalNoThread(threadID)
	}

	resp := &dapproto.ScopesResponse{Response: newResponse(req.Request)}

	node := th.Frames[frameIdx].Node
	if node == nil {
		resp.Body.Scopes = []dapproto.Scope{}
		s.send(resp)
		return nil
	}

	tree, cached := s.nodeScopes[node.NodeID]
	if !cached {
		fetched, err := s.engine.Oracle.FetchState(node.NodeID)
		if err != nil {
			return err
		}
		tree = fetched
		s.nodeScopes[node.NodeID] = tree
	}

	allRef := s.registerVariables(flattenAllScope(tree))

	raw := s.buildRawVariable(tree)
	raw.Name = "(arg/state)"
	rawRef := s.registerVariables([]dapproto.Variable{raw})

	resp.Body.Scopes = []dapproto.Scope{
		{Name: "All", VariablesReference: allRef},
		{Name: "Raw", VariablesReference: rawRef},
	}
	s.send(resp)
	return nil
}

func (s *Session) onVariables(req *dapproto.VariablesRequest) error {
	resp := &dapproto.VariablesResponse{Response: newResponse(req.Request)}
	if vars, ok := s.variablesByRef[req.Arguments.VariablesReference]; ok {
		resp.Body.Variables = vars
	} else {
		resp.Body.Variables = []dapproto.Variable{}
	}
	s.send(resp)
	return nil
}

func (s *Session) registerVariables(vars []dapproto.Variable) int {
	ref := s.nextVarRef
	s.nextVarRef++
	s.variablesByRef[ref] = vars
	return ref
}

// flattenAllScope walks a state tree collecting every leaf value (names
// starting with "tmp" excluded) plus one synthetic "<locked>" entry per
// node flagged Locked, regardless of depth (§4.4).
func flattenAllScope(tree argmodel.StateTree) []dapproto.Variable {
	var out []dapproto.Variable
	var walk func(n argmodel.StateTree)
	walk = func(n argmodel.StateTree) {
		if n.Locked {
			out = append(out, dapproto.Variable{Name: "<locked>", Value: n.Name})
		}
		if len(n.Children) == 0 {
			if n.Name != "" && !strings.HasPrefix(n.Name, "tmp") {
				out = append(out, dapproto.Variable{Name: n.Name, Value: n.Value})
			}
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, c := range tree.Children {
		walk(c)
	}
	if out == nil {
		out = []dapproto.Variable{}
	}
	return out
}

// buildRawVariable mirrors a state tree node into a DAP Variable,
// registering a fresh variablesReference for every compound node so
// `variables` can expand it on demand.
func (s *Session) buildRawVariable(tree argmodel.StateTree) dapproto.Variable {
	v := dapproto.Variable{Name: tree.Name, Value: tree.Value}
	if len(tree.Children) == 0 {
		return v
	}
	children := make([]dapproto.Variable, len(tree.Children))
	for i, c := range tree.Children {
		children[i] = s.buildRawVariable(c)
	}
	v.VariablesReference = s.registerVariables(children)
	return v
}
