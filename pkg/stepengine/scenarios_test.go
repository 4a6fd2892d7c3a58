package stepengine_test

import (
	"testing"

	"github.com/arg-debug/argdap/pkg/argmodel"
	"github.com/arg-debug/argdap/pkg/stepengine"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(o *fakeOracle) *stepengine.Engine {
	log := logrus.NewEntry(logrus.New())
	return stepengine.New(o, log)
}

// Linear step: A -cfg-> B -cfg-> C, one thread at A. `next` leaves one
// thread at B; a second `next` reaches C; a third errors.
func TestNextLinearStep(t *testing.T) {
	o := newFakeOracle()
	a := argmodel.NodeInfo{NodeID: "A", CFGNodeID: "A", OutgoingCFG: []argmodel.EdgeInfo{{NodeID: "B", CFGNodeID: "B"}}}
	b := argmodel.NodeInfo{NodeID: "B", CFGNodeID: "B", OutgoingCFG: []argmodel.EdgeInfo{{NodeID: "C", CFGNodeID: "C"}}}
	c := argmodel.NodeInfo{NodeID: "C", CFGNodeID: "C"}
	o.add(a)
	o.add(b)
	o.add(c)

	e := newTestEngine(o)
	tid := e.Threads.Add("main", &a)

	st, err := e.Next(tid)
	require.NoError(t, err)
	assert.Equal(t, stepengine.StopStep, st.Reason)
	assert.Equal(t, "B", e.Threads.MustGet(tid).Top().Node.NodeID)

	st, err = e.Next(tid)
	require.NoError(t, err)
	assert.Equal(t, "C", e.Threads.MustGet(tid).Top().Node.NodeID)

	_, err = e.Next(tid)
	require.Error(t, err)
	assert.Equal(t, "Reached last statement", err.Error())
}

// Branching control flow: `next` refuses and names stepInTargets;
// targets sort by source position, and stepping into one by id resolves
// to the expected node regardless of declaration order.
func TestStepInTargetsBranching(t *testing.T) {
	o := newFakeOracle()
	a := argmodel.NodeInfo{
		NodeID:    "A",
		CFGNodeID: "A",
		OutgoingCFG: []argmodel.EdgeInfo{
			{NodeID: "B1", CFGNodeID: "CFG_B1", StatementDisplay: "if true"},
			{NodeID: "B2", CFGNodeID: "CFG_B2", StatementDisplay: "else"},
		},
	}
	b1 := argmodel.NodeInfo{NodeID: "B1", CFGNodeID: "CFG_B1", Location: argmodel.Location{Line: 20}}
	b2 := argmodel.NodeInfo{NodeID: "B2", CFGNodeID: "CFG_B2", Location: argmodel.Location{Line: 10}}
	o.add(a)
	o.add(b1)
	o.add(b2)

	e := newTestEngine(o)
	tid := e.Threads.Add("main", &a)

	_, err := e.Next(tid)
	require.Error(t, err)
	assert.Equal(t, "Branching control flow. Use step into target.", err.Error())

	targets, err := e.StepInTargets(tid)
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, stepengine.CFGBase+1, targets[0].ID, "B2 sorts first by line")
	assert.Equal(t, stepengine.CFGBase+0, targets[1].ID)

	target := targets[0].ID
	st, err := e.StepIn(tid, &target)
	require.NoError(t, err)
	assert.Equal(t, stepengine.StopStep, st.Reason)
	assert.Equal(t, "B2", e.Threads.MustGet(tid).Top().Node.NodeID)
}

// Call and return: stepIn across a single entry edge pushes a frame;
// stepOut resolves the post-call node via the caller's own CFG
// successor filtered by the callee's reachable return set.
func TestStepInStepOutCallReturn(t *testing.T) {
	o := newFakeOracle()
	a := argmodel.NodeInfo{
		NodeID:        "A",
		CFGNodeID:     "A",
		OutgoingEntry: []argmodel.EdgeInfo{{Kind: argmodel.EntryEdgeKind, NodeID: "E", CFGNodeID: "E", Function: "f"}},
		OutgoingCFG:   []argmodel.EdgeInfo{{NodeID: "A2", CFGNodeID: "A2"}},
	}
	eNode := argmodel.NodeInfo{
		NodeID:      "E",
		CFGNodeID:   "E",
		OutgoingCFG: []argmodel.EdgeInfo{{NodeID: "R", CFGNodeID: "R"}},
	}
	r := argmodel.NodeInfo{
		NodeID:         "R",
		CFGNodeID:      "R",
		OutgoingReturn: []argmodel.EdgeInfo{{Kind: argmodel.ReturnEdgeKind, NodeID: "A2", CFGNodeID: "A2"}},
	}
	a2 := argmodel.NodeInfo{NodeID: "A2", CFGNodeID: "A2"}
	o.add(a)
	o.add(eNode)
	o.add(r)
	o.add(a2)

	e := newTestEngine(o)
	tid := e.Threads.Add("main", &a)

	st, err := e.StepIn(tid, nil)
	require.NoError(t, err)
	assert.Equal(t, stepengine.StopStep, st.Reason)
	assert.Equal(t, "E", e.Threads.MustGet(tid).Top().Node.NodeID)
	assert.Len(t, e.Threads.MustGet(tid).Frames, 2)

	st, err = e.StepOut(tid)
	require.NoError(t, err)
	assert.Equal(t, stepengine.StopStep, st.Reason)
	assert.Len(t, e.Threads.MustGet(tid).Frames, 1)
	assert.Equal(t, "A2", e.Threads.MustGet(tid).Top().Node.NodeID)
}

// Thread spawn: an entry edge with createsNewThread decrements the
// pushed frame's localThreadIndex below its caller's.
func TestStepInThreadSpawn(t *testing.T) {
	o := newFakeOracle()
	a := argmodel.NodeInfo{
		NodeID:        "A",
		CFGNodeID:     "A",
		OutgoingEntry: []argmodel.EdgeInfo{{Kind: argmodel.EntryEdgeKind, NodeID: "E", CFGNodeID: "E", Function: "worker", CreatesNewThread: true}},
	}
	eNode := argmodel.NodeInfo{NodeID: "E", CFGNodeID: "E"}
	o.add(a)
	o.add(eNode)

	e := newTestEngine(o)
	tid := e.Threads.Add("main", &a)

	st, err := e.StepIn(tid, nil)
	require.NoError(t, err)
	assert.Equal(t, stepengine.StopStep, st.Reason)

	top := e.Threads.MustGet(tid).Top()
	assert.Equal(t, "E", top.Node.NodeID)
	assert.Equal(t, -1, top.LocalThreadIndex)
}

// Parallel ambiguity: two threads share a CFG node; the primary has a
// single outgoing edge, but the non-primary's analogous CFG successors
// are duplicated, making the move ambiguous for it specifically.
func TestStepAllAlongParallelAmbiguity(t *testing.T) {
	o := newFakeOracle()
	primaryNode := argmodel.NodeInfo{
		NodeID:      "A1",
		CFGNodeID:   "CFG_A",
		OutgoingCFG: []argmodel.EdgeInfo{{NodeID: "B1", CFGNodeID: "CFG_B"}},
	}
	otherNode := argmodel.NodeInfo{
		NodeID:    "A2",
		CFGNodeID: "CFG_A",
		OutgoingCFG: []argmodel.EdgeInfo{
			{NodeID: "Bx", CFGNodeID: "CFG_B"},
			{NodeID: "By", CFGNodeID: "CFG_B"},
		},
	}
	o.add(primaryNode)
	o.add(otherNode)
	o.add(argmodel.NodeInfo{NodeID: "B1", CFGNodeID: "CFG_B"})

	e := newTestEngine(o)
	primary := e.Threads.Add("main", &primaryNode)
	e.Threads.Add("worker", &otherNode)

	_, err := e.Next(primary)
	require.Error(t, err)
	assert.Equal(t, "Cannot step. Path is ambiguous for worker.", err.Error())
}

// Breakpoint pump: two breakpoints, the second maps to no ARG nodes.
// continue stops at the first; a second continue skips the unreachable
// second breakpoint and terminates.
func TestContinueBreakpointPump(t *testing.T) {
	o := newFakeOracle()
	hit := argmodel.NodeInfo{NodeID: "N1", CFGNodeID: "CFG_N1", Location: argmodel.Location{File: "main.go", Line: 5, EndLine: 5}}
	o.add(hit)
	o.byLine[5] = []argmodel.NodeInfo{hit}
	// line 9 deliberately has no entry in o.byLine: unreachable breakpoint.

	e := newTestEngine(o)
	e.Breaks.SetLocations("main.go", []argmodel.Location{
		{File: "main.go", Line: 5, EndLine: 5},
		{File: "main.go", Line: 9, EndLine: 9},
	})

	st, err := e.Continue()
	require.NoError(t, err)
	assert.Equal(t, stepengine.StopBreakpoint, st.Reason)
	assert.Equal(t, "N1", e.Threads.MustGet(st.ThreadID).Top().Node.NodeID)

	_, err = e.Continue()
	require.Error(t, err)
	_, terminated := err.(stepengine.Terminated)
	assert.True(t, terminated, "second breakpoint is unreachable, pump runs off the end")
}
