package stepengine

import (
	"github.com/arg-debug/argdap/pkg/argmodel"
)

// StepOut implements step out (§4.2.4).
func (e *Engine) StepOut(primaryThreadID int) (*Stopped, error) {
	primary, ok := e.Threads.Get(primaryThreadID)
	if !ok {
		return nil, internalf("no thread %d", primaryThreadID)
	}

	top := primary.Top()
	if top.Node == nil {
		return nil, userf("Cannot step, current location is unavailable.")
	}
	prev, hasPrev := primary.Previous()
	if !hasPrev {
		return nil, userf("Cannot step out, already at the top of the call stack.")
	}
	if prev.Ambiguous {
		return nil, userf("Cannot step out, call stack is ambiguous.")
	}
	if prev.Node == nil || len(prev.Node.OutgoingCFG) == 0 {
		return nil, userf("Cannot step out, function never returns.")
	}
	primaryCallSiteCFG := prev.Node.CFGNodeID

	type resolution struct {
		kept   bool
		target *argmodel.NodeInfo // nil means "target absent" but still kept
	}

	ids := e.Threads.SortedIDs()
	resolved := make(map[int]resolution, len(ids))

	for _, id := range ids {
		th := e.Threads.MustGet(id)
		tprev, ok := th.Previous()
		if !ok || tprev.Ambiguous || tprev.Node == nil || tprev.Node.CFGNodeID != primaryCallSiteCFG {
			resolved[id] = resolution{kept: false}
			continue
		}

		tcur := th.Top()
		if tcur.Node == nil {
			resolved[id] = resolution{kept: true, target: nil}
			continue
		}

		sameThread := tcur.LocalThreadIndex == tprev.LocalThreadIndex

		var candidates []argmodel.EdgeInfo
		if sameThread {
			returnSet, err := e.findReturnSet(tcur.Node)
			if err != nil {
				return nil, err
			}
			for _, ce := range tprev.Node.OutgoingCFG {
				if returnSet[ce.NodeID] {
					candidates = append(candidates, ce)
				}
			}
		} else {
			candidates = tprev.Node.OutgoingCFG
		}

		switch len(candidates) {
		case 0:
			resolved[id] = resolution{kept: true, target: nil}
		case 1:
			node, err := e.lookupByID(candidates[0].NodeID, "")
			if err != nil {
				return nil, err
			}
			resolved[id] = resolution{kept: true, target: &node}
		default:
			return nil, userf("Ambiguous return path for %s", th.Name)
		}
	}

	for _, id := range ids {
		r := resolved[id]
		if !r.kept {
			e.Threads.Remove(id)
			continue
		}
		th := e.Threads.MustGet(id)
		th.PopFrame()
		newTop := th.Top()
		if r.target == nil {
			if newTop.Node != nil {
				newTop.LastReachableNode = newTop.Node
			}
			newTop.Node = nil
		} else {
			e.observeSymbols(r.target)
			newTop.Node = r.target
			newTop.LastReachableNode = nil
		}
	}

	e.clearCaches()

	return &Stopped{Reason: StopStep, ThreadID: primaryThreadID, AllThreadsStopped: true}, nil
}
