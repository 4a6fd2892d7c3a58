package stepengine

import (
	"fmt"

	"github.com/arg-debug/argdap/pkg/argmodel"
)

func cfgCandidates(node *argmodel.NodeInfo) []argmodel.EdgeInfo {
	return node.OutgoingCFG
}

// Next implements step over (`next`, §4.2.1).
func (e *Engine) Next(primaryThreadID int) (*Stopped, error) {
	primary, ok := e.Threads.Get(primaryThreadID)
	if !ok {
		return nil, internalf("no thread %d", primaryThreadID)
	}
	top := primary.Top()
	if top.Node == nil {
		return nil, userf("Cannot step, current location is unavailable.")
	}

	if len(top.Node.OutgoingCFG) == 0 {
		if len(top.Node.OutgoingReturn) > 0 {
			return e.StepOut(primaryThreadID)
		}
		return nil, userf("Reached last statement")
	}

	// Any tracked thread (primary or otherwise) whose topmost node
	// branches *and* can call into a function makes the move ambiguous.
	for _, id := range e.Threads.SortedIDs() {
		th := e.Threads.MustGet(id)
		tn := th.Top().Node
		if tn == nil {
			continue
		}
		if len(tn.OutgoingCFG) > 1 && len(tn.OutgoingEntry) > 0 {
			msg := fmt.Sprintf("Ambiguous path through function %s", tn.Function)
			if id != primaryThreadID {
				msg = fmt.Sprintf("%s (%s)", msg, th.Name)
			}
			return nil, userf(msg)
		}
	}

	if len(top.Node.OutgoingCFG) > 1 {
		return nil, userf("Branching control flow. Use step into target.")
	}

	return e.stepAllAlong(primaryThreadID, top.Node.OutgoingCFG[0], cfgCandidates, false)
}
