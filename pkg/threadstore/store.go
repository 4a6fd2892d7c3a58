// Package threadstore maintains the logical set of DAP threads, each
// with its own synthetic call stack of ARG nodes (§3 Thread/Frame
// Store).
package threadstore

import (
	"fmt"
	"sort"

	"github.com/arg-debug/argdap/pkg/argmodel"
)

// frameIDMultiplier bounds per-thread stack depth to under 100,000 and
// encodes frameId = threadId*frameIDMultiplier + frameIndex (§3).
// Implementations may widen this but must document the change; we do
// not.
const frameIDMultiplier = 100000

// StackFrame is one frame of a thread's synthetic call stack.
type StackFrame struct {
	// Node is the ARG node this frame stands at. Nil means "unreachable
	// for this thread"; only the topmost frame of a thread may be nil.
	Node *argmodel.NodeInfo
	// Ambiguous is true when this frame was chosen from multiple
	// plausible callers during stack assembly (§4.3).
	Ambiguous bool
	// LocalThreadIndex is the synthetic spawn-nesting index tracked
	// during stack assembly; non-increasing from top to bottom of a
	// stack.
	LocalThreadIndex int
	// LastReachableNode is set when Node becomes nil, so that step-back
	// can re-enter the thread at the node it last stood on.
	LastReachableNode *argmodel.NodeInfo
}

// ThreadState is one logical DAP thread: a name and an ordered stack of
// frames, innermost first.
type ThreadState struct {
	Name   string
	Frames []StackFrame
}

// Store is the insertion-ordered mapping from threadId to ThreadState.
type Store struct {
	order []int
	byID  map[int]*ThreadState
	next  int
}

// New returns an empty store. Thread ids are assigned starting at 1, so
// that id 0 is never handed out and can be used as a sentinel by
// callers that need one.
func New() *Store {
	return &Store{byID: make(map[int]*ThreadState), next: 1}
}

// Reset replaces the store's contents wholesale — used by the
// breakpoint pump (§4.2.6), which replaces the thread set entirely
// rather than stepping it.
func (s *Store) Reset() {
	s.order = nil
	s.byID = make(map[int]*ThreadState)
	s.next = 1
}

// Add inserts a new thread with a single frame at node, returning its
// assigned id.
func (s *Store) Add(name string, node *argmodel.NodeInfo) int {
	id := s.next
	s.next++
	s.order = append(s.order, id)
	s.byID[id] = &ThreadState{
		Name:   name,
		Frames: []StackFrame{{Node: node, LocalThreadIndex: 0}},
	}
	return id
}

// AddFrames inserts a new thread with a pre-assembled stack.
func (s *Store) AddFrames(name string, frames []StackFrame) int {
	id := s.next
	s.next++
	s.order = append(s.order, id)
	s.byID[id] = &ThreadState{Name: name, Frames: frames}
	return id
}

// IDs returns tracked thread ids in insertion order.
func (s *Store) IDs() []int {
	out := make([]int, len(s.order))
	copy(out, s.order)
	return out
}

// SortedIDs returns tracked thread ids in ascending order, the order
// DAP's `threads` response is conventionally rendered in.
func (s *Store) SortedIDs() []int {
	out := s.IDs()
	sort.Ints(out)
	return out
}

// Get returns the thread state for id, or false if untracked.
func (s *Store) Get(id int) (*ThreadState, bool) {
	t, ok := s.byID[id]
	return t, ok
}

// MustGet returns the thread state for id, panicking if untracked; for
// use where the caller has already validated id came from this store
// (an Internal-error invariant violation otherwise, per §7).
func (s *Store) MustGet(id int) *ThreadState {
	t, ok := s.byID[id]
	if !ok {
		panic(fmt.Sprintf("threadstore: no thread %d", id))
	}
	return t
}

// Remove drops a thread entirely (used by step-out, §4.2.4, for threads
// with no target map entry).
func (s *Store) Remove(id int) {
	if _, ok := s.byID[id]; !ok {
		return
	}
	delete(s.byID, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of tracked threads.
func (s *Store) Len() int { return len(s.order) }

// EncodeFrameID implements the §3 encoding.
func EncodeFrameID(threadID, frameIndex int) int {
	return threadID*frameIDMultiplier + frameIndex
}

// DecodeFrameID is the left inverse of EncodeFrameID.
func DecodeFrameID(frameID int) (threadID, frameIndex int) {
	return frameID / frameIDMultiplier, frameID % frameIDMultiplier
}

// Top returns the topmost frame of thread id's stack.
func (t *ThreadState) Top() *StackFrame {
	return &t.Frames[0]
}

// Previous returns the frame below the top, and whether one exists.
func (t *ThreadState) Previous() (*StackFrame, bool) {
	if len(t.Frames) < 2 {
		return nil, false
	}
	return &t.Frames[1], true
}

// PushFrame pushes a new topmost frame.
func (t *ThreadState) PushFrame(f StackFrame) {
	t.Frames = append([]StackFrame{f}, t.Frames...)
}

// PopFrame removes the topmost frame.
func (t *ThreadState) PopFrame() {
	t.Frames = t.Frames[1:]
}
