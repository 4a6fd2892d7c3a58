package stepengine

import (
	"github.com/arg-debug/argdap/pkg/argmodel"
	"github.com/arg-debug/argdap/pkg/threadstore"
)

// candidateFunc selects the outgoing edges of node that a stepping
// operation considers as possible next moves. Step-all-along's
// `candidates` selector is a function pointer over the CFG/Entry/Return
// edge variants (§9 "Tagged-union edges").
type candidateFunc func(node *argmodel.NodeInfo) []argmodel.EdgeInfo

// resolvedTarget is the outcome of matching one thread's candidates
// against the primary's chosen edge, with the destination node already
// fetched — so the apply loop below is infallible.
type resolvedTarget struct {
	edge    *argmodel.EdgeInfo // nil means "target absent"
	node    *argmodel.NodeInfo
	present bool
}

// stepAllAlong is the multi-thread matching kernel (§4.2.3). Given the
// edge the primary thread is moving along, a candidate selector, and
// whether the move pushes a new frame, it determines — for every
// tracked thread — the analogous move, preferring an exact ARG match
// and falling back to a unique CFG match, resolving each target's
// destination node via the oracle as part of this same pass, then
// applies every resolved move atomically. No thread state is mutated
// until every thread's target has been resolved without error.
func (e *Engine) stepAllAlong(primaryThreadID int, primaryEdge argmodel.EdgeInfo, candidates candidateFunc, addFrame bool) (*Stopped, error) {
	ids := e.Threads.SortedIDs()
	targets := make(map[int]resolvedTarget, len(ids))

	for _, id := range ids {
		th := e.Threads.MustGet(id)
		top := th.Top()

		if top.Node == nil {
			targets[id] = resolvedTarget{present: false}
			continue
		}

		cands := candidates(top.Node)

		var edge *argmodel.EdgeInfo
		if exact, ok := argmodel.EdgeByNodeID(cands, primaryEdge.NodeID); ok {
			edge = &exact
		} else {
			cfgMatches := argmodel.EdgesByCFGNodeID(cands, primaryEdge.CFGNodeID)
			switch len(cfgMatches) {
			case 0:
				targets[id] = resolvedTarget{present: false}
				continue
			case 1:
				edge = &cfgMatches[0]
			default:
				return nil, userf("Cannot step. Path is ambiguous for %s.", e.threadLabel(id, primaryThreadID, th))
			}
		}

		node, err := e.lookupByID(edge.NodeID, edge.Function)
		if err != nil {
			return nil, err
		}
		targets[id] = resolvedTarget{edge: edge, node: &node, present: true}
	}

	// Every target is resolved without error: apply in lockstep.
	for _, id := range ids {
		th := e.Threads.MustGet(id)
		t := targets[id]

		if !t.present {
			top := th.Top()
			if top.Node != nil {
				top.LastReachableNode = top.Node
			}
			top.Node = nil
			continue
		}

		e.observeSymbols(t.node)

		if addFrame {
			callerIdx := th.Top().LocalThreadIndex
			newIdx := callerIdx
			if t.edge.CreatesNewThread {
				newIdx = callerIdx - 1
			}
			th.PushFrame(threadstore.StackFrame{Node: t.node, LocalThreadIndex: newIdx})
		} else {
			th.Top().Node = t.node
			th.Top().Ambiguous = false
			th.Top().LastReachableNode = nil
		}
	}

	e.clearCaches()

	return &Stopped{Reason: StopStep, ThreadID: primaryThreadID, AllThreadsStopped: true}, nil
}

// threadLabel names a thread for an error message: the thread's name,
// unless id is the primary thread (§4.2.1's "unless it is the
// primary").
func (e *Engine) threadLabel(id, primaryID int, th *threadstore.ThreadState) string {
	if id == primaryID {
		return "the primary thread"
	}
	return th.Name
}
