// Package stepengine implements the core of the abstract debugger: the
// multi-thread edge matching kernel and the stepping primitives built
// on top of it (§4.2), stack assembly (§4.3), and the breakpoint pump
// (§4.2.6).
//
// The engine is a single-threaded cooperative state machine (§5): every
// stepping operation computes a complete move across all tracked
// threads before mutating any thread state, so a mid-operation error
// leaves the store untouched.
package stepengine

import (
	"fmt"
	"strings"

	"github.com/arg-debug/argdap/pkg/argmodel"
	"github.com/arg-debug/argdap/pkg/breakpoint"
	"github.com/arg-debug/argdap/pkg/oracle"
	"github.com/arg-debug/argdap/pkg/threadstore"
	"github.com/sirupsen/logrus"
)

// StopReason mirrors the three DAP `stopped` reasons this system emits
// (§6): entry, breakpoint, step.
type StopReason string

const (
	StopEntry      StopReason = "entry"
	StopBreakpoint StopReason = "breakpoint"
	StopStep       StopReason = "step"
)

// Stopped is emitted by every engine operation that leaves the debuggee
// stopped, carrying enough information for the DAP Adapter to build a
// `stopped` event.
type Stopped struct {
	Reason          StopReason
	ThreadID        int
	AllThreadsStopped bool
}

// Terminated is returned by the breakpoint pump when it runs off either
// end of the breakpoint list (§4.2.6).
type Terminated struct{}

func (Terminated) Error() string { return "program terminated" }

// Engine owns one session's Thread/Frame Store and Breakpoint Registry
// and drives every stepping operation against a single ARG Oracle
// Client.
type Engine struct {
	Oracle  oracle.Client
	Threads *threadstore.Store
	Breaks  *breakpoint.Registry
	Symbols *oracle.SymbolIndex

	log *logrus.Entry
}

// New constructs an Engine around the given oracle client. The caller
// is expected to pass a *oracle.CachingClient (or similar) if it wants
// per-stop memoization; the engine only depends on the oracle.Client
// interface.
func New(client oracle.Client, log *logrus.Entry) *Engine {
	return &Engine{
		Oracle:  client,
		Threads: threadstore.New(),
		Breaks:  breakpoint.New(),
		Symbols: oracle.NewSymbolIndex(),
		log:     log,
	}
}

// clearCaches drops per-stop memoization, if the wrapped oracle client
// supports it (§9 "Ownership").
func (e *Engine) clearCaches() {
	if cc, ok := e.Oracle.(*oracle.CachingClient); ok {
		cc.Clear()
	}
}

func (e *Engine) observeSymbols(n *argmodel.NodeInfo) {
	if n == nil || e.Symbols == nil {
		return
	}
	e.Symbols.Observe(n.Function)
}

// lookupByID is the sole call site every stepping primitive uses to
// resolve a node id against the oracle (§3 "SymbolIndex"). functionHint
// is the function name the caller expected to land on, if it knows one
// (an EntryEdge's Function; "" for a plain CFG/Return edge, which
// carries no function name of its own). A not-found result is enriched
// with the closest known function-name matches sharing that hint as a
// prefix, turning "no ARG node with id ..." into "no ARG node with
// id ...; did you mean: foo, foobar?" whenever the index has something
// to suggest. Never consulted on the hot stepping path otherwise — a
// successful lookup is returned untouched.
func (e *Engine) lookupByID(nodeID, functionHint string) (argmodel.NodeInfo, error) {
	node, err := e.Oracle.LookupByID(nodeID)
	if err == nil {
		return node, nil
	}
	if _, ok := err.(*oracle.ErrNotFound); ok {
		return argmodel.NodeInfo{}, userf("%s%s", err.Error(), e.suggestionSuffix(functionHint))
	}
	return argmodel.NodeInfo{}, err
}

// suggestionSuffix renders "; did you mean: foo, foobar?" for a failed
// lookup, or "" if prefix is empty or the Symbol Index has nothing
// sharing it.
func (e *Engine) suggestionSuffix(prefix string) string {
	if prefix == "" {
		return ""
	}
	suggestions := e.Symbols.Suggestions(prefix, 3)
	if len(suggestions) == 0 {
		return ""
	}
	return fmt.Sprintf("; did you mean: %s?", strings.Join(suggestions, ", "))
}
