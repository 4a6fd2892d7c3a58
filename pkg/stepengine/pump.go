package stepengine

import (
	"fmt"

	"github.com/arg-debug/argdap/pkg/argmodel"
	"github.com/arg-debug/argdap/pkg/threadstore"
)

// Continue implements `continue` (§4.2.6): runToNextBreakpoint(+1).
func (e *Engine) Continue() (*Stopped, error) {
	return e.runToNextBreakpoint(1)
}

// ReverseContinue implements `reverseContinue` (§4.2.6):
// runToNextBreakpoint(-1).
func (e *Engine) ReverseContinue() (*Stopped, error) {
	return e.runToNextBreakpoint(-1)
}

// runToNextBreakpoint is the breakpoint pump (§4.2.6). It advances the
// registry's cursor by direction while in bounds, skipping breakpoints
// whose location maps to no ARG nodes (logged and advanced past),
// until it finds one that does or runs off either end.
func (e *Engine) runToNextBreakpoint(direction int) (*Stopped, error) {
	for {
		if !e.Breaks.Advance(direction) {
			return nil, Terminated{}
		}

		if e.Breaks.Len() == 0 {
			nodes, err := e.Oracle.LookupByLocation(nil)
			if err != nil {
				return nil, err
			}
			return e.stopAtNodes(nodes, StopEntry)
		}

		loc, _ := e.Breaks.Current()
		nodes, err := e.Oracle.LookupByLocation(&loc)
		if err != nil {
			return nil, err
		}

		var covering []argmodel.NodeInfo
		for _, n := range nodes {
			if n.Location.Line <= loc.Line && loc.Line <= n.Location.EndLine {
				covering = append(covering, n)
			}
		}
		if len(covering) == 0 {
			e.log.WithField("location", loc).Warn("unreachable breakpoint")
			continue
		}

		firstCFG := covering[0].CFGNodeID
		var matched []argmodel.NodeInfo
		for _, n := range covering {
			if n.CFGNodeID == firstCFG {
				matched = append(matched, n)
			}
		}
		return e.stopAtNodes(matched, StopBreakpoint)
	}
}

// stopAtNodes materializes a fresh thread per matching node,
// stack-assembled per §4.3, then reports the first one as the stopped
// thread. Every node's stack is assembled before the store is touched:
// a failure partway through (an oracle error during assembly) leaves
// the previous thread set completely untouched, matching §5's "a
// mid-operation error leaves the store untouched" for this operation
// too, not just the stepping primitives.
func (e *Engine) stopAtNodes(nodes []argmodel.NodeInfo, reason StopReason) (*Stopped, error) {
	type assembled struct {
		name   string
		frames []threadstore.StackFrame
	}

	threads := make([]assembled, len(nodes))
	for i := range nodes {
		n := nodes[i]
		e.observeSymbols(&n)
		frames, err := e.AssembleStack(&n)
		if err != nil {
			return nil, err
		}
		threads[i] = assembled{name: fmt.Sprintf("breakpoint %s", n.NodeID), frames: frames}
	}

	e.Threads.Reset()

	var firstID int
	for i, th := range threads {
		id := e.Threads.AddFrames(th.name, th.frames)
		if i == 0 {
			firstID = id
		}
	}

	e.clearCaches()

	return &Stopped{Reason: reason, ThreadID: firstID, AllThreadsStopped: true}, nil
}
