package stepengine

import (
	"fmt"
	"sort"

	"github.com/arg-debug/argdap/pkg/argmodel"
)

// CFGBase and EntryBase encode stepInTargets ids (§4.2.2); EntryBase
// exceeds CFGBase by a wide margin so the two ranges never collide.
const (
	CFGBase   = 1000000
	EntryBase = 2000000
)

// Target is one stepInTargets entry.
type Target struct {
	ID    int
	Label string

	line, column int
	edgeIndex     int
	isEntry       bool
}

func entryCandidates(node *argmodel.NodeInfo) []argmodel.EdgeInfo {
	return node.OutgoingEntry
}

// StepInTargets enumerates the possible step-in targets for the
// topmost node of thread id's current frame (§4.2.2).
func (e *Engine) StepInTargets(threadID int) ([]Target, error) {
	th, ok := e.Threads.Get(threadID)
	if !ok {
		return nil, internalf("no thread %d", threadID)
	}
	top := th.Top()
	if top.Node == nil {
		return nil, userf("Cannot step, current location is unavailable.")
	}

	var targets []Target

	if len(top.Node.OutgoingEntry) > 0 {
		for i, ee := range top.Node.OutgoingEntry {
			kind := "call"
			if ee.CreatesNewThread {
				kind = "thread"
			}
			label := fmt.Sprintf("%s: %s(%s)", kind, ee.Function, joinArgs(ee.Args))
			loc, err := e.targetLocation(ee.NodeID, ee.Function)
			if err != nil {
				return nil, err
			}
			targets = append(targets, Target{
				ID:        EntryBase + i,
				Label:     label,
				line:      loc.Line,
				column:    loc.Column,
				edgeIndex: i,
				isEntry:   true,
			})
		}
	} else if len(top.Node.OutgoingCFG) > 1 {
		for i, ce := range top.Node.OutgoingCFG {
			label := fmt.Sprintf("branch: %s", ce.StatementDisplay)
			loc, err := e.targetLocation(ce.NodeID, "")
			if err != nil {
				return nil, err
			}
			targets = append(targets, Target{
				ID:        CFGBase + i,
				Label:     label,
				line:      loc.Line,
				column:    loc.Column,
				edgeIndex: i,
				isEntry:   false,
			})
		}
	}

	sort.SliceStable(targets, func(i, j int) bool {
		if targets[i].line != targets[j].line {
			return targets[i].line < targets[j].line
		}
		return targets[i].column < targets[j].column
	})

	return targets, nil
}

func (e *Engine) targetLocation(nodeID, functionHint string) (argmodel.Location, error) {
	n, err := e.lookupByID(nodeID, functionHint)
	if err != nil {
		return argmodel.Location{}, err
	}
	return n.Location, nil
}

func joinArgs(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += ", "
		}
		out += a
	}
	return out
}

// StepIn implements `stepIn` (§4.2.2), optionally along an explicit
// targetID produced by a prior StepInTargets call.
func (e *Engine) StepIn(threadID int, targetID *int) (*Stopped, error) {
	th, ok := e.Threads.Get(threadID)
	if !ok {
		return nil, internalf("no thread %d", threadID)
	}
	top := th.Top()
	if top.Node == nil {
		return nil, userf("Cannot step, current location is unavailable.")
	}

	if targetID != nil {
		id := *targetID
		switch {
		case id >= EntryBase:
			idx := id - EntryBase
			if idx < 0 || idx >= len(top.Node.OutgoingEntry) {
				return nil, internalf("stepIn target %d out of range", id)
			}
			return e.stepAllAlong(threadID, top.Node.OutgoingEntry[idx], entryCandidates, true)
		case id >= CFGBase:
			idx := id - CFGBase
			if idx < 0 || idx >= len(top.Node.OutgoingCFG) {
				return nil, internalf("stepIn target %d out of range", id)
			}
			return e.stepAllAlong(threadID, top.Node.OutgoingCFG[idx], cfgCandidates, false)
		default:
			return nil, internalf("stepIn target %d not recognized", id)
		}
	}

	switch len(top.Node.OutgoingEntry) {
	case 0:
		return e.Next(threadID)
	case 1:
		return e.stepAllAlong(threadID, top.Node.OutgoingEntry[0], entryCandidates, true)
	default:
		return nil, userf("Ambiguous function call")
	}
}
