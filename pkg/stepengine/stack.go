package stepengine

import (
	"github.com/arg-debug/argdap/pkg/argmodel"
	"github.com/arg-debug/argdap/pkg/threadstore"
)

// AssembleStack builds the innermost-first stack used for DAP
// `stackTrace` (§4.3), starting from a leaf node. Repeatedly finds the
// entry node of the current top frame; if that entry node has no
// incoming entry edges, assembly stops. Otherwise, for each incoming
// entry edge a frame is pushed for the edge's source node — the
// synthetic LocalThreadIndex decrements across a createsNewThread
// edge — marked Ambiguous iff the entry node had more than one
// incoming entry edge. Assembly continues past a pushed frame only
// while there was exactly one incoming entry edge; multiple incoming
// entry edges make the newly pushed frames terminal.
func (e *Engine) AssembleStack(leaf *argmodel.NodeInfo) ([]threadstore.StackFrame, error) {
	frames := []threadstore.StackFrame{{Node: leaf, LocalThreadIndex: 0}}

	threadIdx := 0
	cur := leaf
	for {
		entry, err := e.findEntryNode(cur)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			break
		}
		if len(entry.IncomingEntry) == 0 {
			break
		}

		ambiguous := len(entry.IncomingEntry) > 1
		for _, ee := range entry.IncomingEntry {
			if ee.CreatesNewThread {
				threadIdx--
			}
			caller, err := e.lookupByID(ee.NodeID, ee.Function)
			if err != nil {
				return nil, err
			}
			callerCopy := caller
			frames = append(frames, threadstore.StackFrame{
				Node:             &callerCopy,
				Ambiguous:        ambiguous,
				LocalThreadIndex: threadIdx,
			})
		}

		if ambiguous {
			break
		}
		cur = frames[len(frames)-1].Node
	}

	return frames, nil
}
