// Package dap is the DAP Adapter (§4.4): it maps Debug Adapter Protocol
// request DTOs onto Stepping Engine operations, encodes frameIds and
// step-in-target ids per §3, and synthesizes `stopped`/`terminated`
// events.
package dap

import (
	"bufio"
	"io"
	"sync"

	"github.com/arg-debug/argdap/pkg/argmodel"
	"github.com/arg-debug/argdap/pkg/stepengine"
	"github.com/arg-debug/argdap/pkg/threadstore"
	dapproto "github.com/google/go-dap"
	"github.com/sirupsen/logrus"
)

// Session owns one DAP connection: request/response framing, sequence
// numbering, and the single Stepping Engine it drives. One Session is
// created per accepted connection (§4.5, §5): sessions never share an
// engine.
type Session struct {
	rw  *bufio.ReadWriter
	log *logrus.Entry

	engine *stepengine.Engine

	sendMu sync.Mutex

	workingDir string

	// scope/variable rendering state, cleared on every stop (§9
	// "Ownership").
	nodeScopes      map[string]argmodel.StateTree
	variablesByRef  map[int][]dapproto.Variable
	nextVarRef      int

	done chan struct{}
}

// NewSession wraps a connection in a Session. workingDir is used to
// relativize setBreakpoints source paths (§6).
func NewSession(rw io.ReadWriter, engine *stepengine.Engine, workingDir string, log *logrus.Entry) *Session {
	return &Session{
		rw:             bufio.NewReadWriter(bufio.NewReader(rw), bufio.NewWriter(rw)),
		log:            log,
		engine:         engine,
		workingDir:     workingDir,
		nodeScopes:     make(map[string]argmodel.StateTree),
		variablesByRef: make(map[int][]dapproto.Variable),
		nextVarRef:     1,
		done:           make(chan struct{}),
	}
}

// Serve reads and dispatches requests until the connection closes or a
// disconnect request completes.
func (s *Session) Serve() {
	for {
		select {
		case <-s.done:
			return
		default:
		}

		msg, err := dapproto.ReadProtocolMessage(s.rw.Reader)
		if err != nil {
			if err != io.EOF {
				s.log.WithError(err).Debug("session read error")
			}
			return
		}
		req, ok := msg.(dapproto.RequestMessage)
		if !ok {
			continue
		}
		s.dispatch(req)
	}
}

func (s *Session) send(msg dapproto.Message) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := dapproto.WriteProtocolMessage(s.rw.Writer, msg); err != nil {
		s.log.WithError(err).Warn("failed to write DAP message")
		return
	}
	s.rw.Writer.Flush()
}

func newResponse(request dapproto.Request) dapproto.Response {
	return dapproto.Response{
		ProtocolMessage: dapproto.ProtocolMessage{Seq: 0, Type: "response"},
		RequestSeq:      request.Seq,
		Success:         true,
		Command:         request.Command,
	}
}

func newEvent(event string) dapproto.Event {
	return dapproto.Event{
		ProtocolMessage: dapproto.ProtocolMessage{Seq: 0, Type: "event"},
		Event:           event,
	}
}

// clearScopeCaches drops every memoized node/variable rendering entry
// (§9 "Ownership": caches are cleared on every stop).
func (s *Session) clearScopeCaches() {
	s.nodeScopes = make(map[string]argmodel.StateTree)
	s.variablesByRef = make(map[int][]dapproto.Variable)
	s.nextVarRef = 1
}

// emitStopped sends a `stopped` event for the given engine result.
//
// Sending `stopped` before the step response completes technically
// violates the DAP ordering contract (the spec says responses precede
// events they cause) but is tolerated by every client we have observed
// in practice (§4.4). We send the response first here deliberately —
// see handlers.go — leaving this comment as the documented hook to
// invert the order if a transport-level requirement ever forces it.
func (s *Session) emitStopped(st *stepengine.Stopped) {
	s.clearScopeCaches()
	s.send(&dapproto.StoppedEvent{
		Event: newEvent("stopped"),
		Body: dapproto.StoppedEventBody{
			Reason:            string(st.Reason),
			ThreadId:          st.ThreadID,
			AllThreadsStopped: st.AllThreadsStopped,
		},
	})
}

func (s *Session) emitTerminated() {
	s.send(&dapproto.TerminatedEvent{Event: newEvent("terminated")})
}

func encodeFrameID(threadID, frameIndex int) int {
	return threadstore.EncodeFrameID(threadID, frameIndex)
}

func decodeFrameID(frameID int) (threadID, frameIndex int) {
	return threadstore.DecodeFrameID(frameID)
}
