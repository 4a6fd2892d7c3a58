package stepengine

import "github.com/arg-debug/argdap/pkg/argmodel"

// StepBack implements step back (§4.2.5).
func (e *Engine) StepBack(primaryThreadID int) (*Stopped, error) {
	primary, ok := e.Threads.Get(primaryThreadID)
	if !ok {
		return nil, internalf("no thread %d", primaryThreadID)
	}
	top := primary.Top()
	if top.Node == nil {
		return nil, userf("Cannot step, current location is unavailable.")
	}
	switch len(top.Node.IncomingCFG) {
	case 1:
		// ok
	case 0:
		return nil, userf("Cannot step back, no predecessor statement.")
	default:
		return nil, userf("Cannot step back, path is ambiguous.")
	}
	targetCFG := top.Node.IncomingCFG[0].CFGNodeID

	type resolution struct {
		apply  bool
		target *argmodel.NodeInfo
	}

	ids := e.Threads.SortedIDs()
	resolved := make(map[int]resolution, len(ids))

	for _, id := range ids {
		th := e.Threads.MustGet(id)
		tTop := th.Top()

		if tTop.Node != nil {
			matches := argmodel.EdgesByCFGNodeID(tTop.Node.IncomingCFG, targetCFG)
			switch len(matches) {
			case 0:
				return nil, userf("No matching path from %s", th.Name)
			case 1:
				node, err := e.lookupByID(matches[0].NodeID, "")
				if err != nil {
					return nil, err
				}
				resolved[id] = resolution{apply: true, target: &node}
			default:
				return nil, userf("Path is ambiguous from %s", th.Name)
			}
			continue
		}

		if tTop.LastReachableNode != nil && tTop.LastReachableNode.CFGNodeID == targetCFG {
			resolved[id] = resolution{apply: true, target: tTop.LastReachableNode}
			continue
		}

		resolved[id] = resolution{apply: false}
	}

	for _, id := range ids {
		r := resolved[id]
		if !r.apply {
			continue
		}
		th := e.Threads.MustGet(id)
		e.observeSymbols(r.target)
		th.Top().Node = r.target
		th.Top().LastReachableNode = nil
	}

	e.clearCaches()

	return &Stopped{Reason: StopStep, ThreadID: primaryThreadID, AllThreadsStopped: true}, nil
}
