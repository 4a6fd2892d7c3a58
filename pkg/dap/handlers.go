package dap

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/arg-debug/argdap/pkg/argmodel"
	"github.com/arg-debug/argdap/pkg/oracle"
	"github.com/arg-debug/argdap/pkg/stepengine"
	dapproto "github.com/google/go-dap"
)

// onInitialize advertises this adapter's capabilities (§6). The
// `initialized` event is deferred to onLaunch/onAttach, matching the
// DAP surface this adapter was modeled on: a client is expected to
// configure breakpoints only after it sees `initialized`, and this
// adapter has nothing to initialize before a session is under way.
func (s *Session) onInitialize(req *dapproto.InitializeRequest) error {
	resp := &dapproto.InitializeResponse{Response: newResponse(req.Request)}
	resp.Body.SupportsConfigurationDoneRequest = true
	resp.Body.SupportsStepInTargetsRequest = true
	resp.Body.SupportsStepBack = true
	s.send(resp)
	return nil
}

func (s *Session) onLaunch(req *dapproto.LaunchRequest) error {
	s.send(&dapproto.LaunchResponse{Response: newResponse(req.Request)})
	s.send(&dapproto.InitializedEvent{Event: newEvent("initialized")})
	return nil
}

// onAttach is aliased to launch (§6): this adapter never spawns a
// debuggee of its own, it only talks to an already-running oracle, so
// attach and launch carry identical semantics.
func (s *Session) onAttach(req *dapproto.AttachRequest) error {
	s.send(&dapproto.AttachResponse{Response: newResponse(req.Request)})
	s.send(&dapproto.InitializedEvent{Event: newEvent("initialized")})
	return nil
}

// onSetBreakpoints relativizes the source path to the session's working
// directory before handing it to the Breakpoint Registry (§6), then
// reports every breakpoint verified — verification against source text
// is not this adapter's job; the analyzer backend is the source of
// truth for what lines exist.
func (s *Session) onSetBreakpoints(req *dapproto.SetBreakpointsRequest) error {
	path := req.Arguments.Source.Path
	if rel, err := filepath.Rel(s.workingDir, path); err == nil && !strings.HasPrefix(rel, "..") {
		path = rel
	}

	locs := make([]argmodel.Location, len(req.Arguments.Breakpoints))
	for i, sbp := range req.Arguments.Breakpoints {
		locs[i] = argmodel.Location{File: path, Line: sbp.Line, Column: sbp.Column}
	}
	s.engine.Breaks.SetLocations(path, locs)

	resp := &dapproto.SetBreakpointsResponse{Response: newResponse(req.Request)}
	resp.Body.Breakpoints = make([]dapproto.Breakpoint, len(locs))
	for i, loc := range locs {
		resp.Body.Breakpoints[i] = dapproto.Breakpoint{
			Verified: true,
			Line:     loc.Line,
			Column:   loc.Column,
			Source:   &req.Arguments.Source,
		}
	}
	s.send(resp)
	return nil
}

// onSetExceptionBreakpoints is a documented no-op (§6, §4.4 "Supplemented
// features"): this adapter has no notion of exceptions, but answers the
// request instead of leaving the client hanging.
func (s *Session) onSetExceptionBreakpoints(req *dapproto.SetExceptionBreakpointsRequest) error {
	s.send(&dapproto.SetExceptionBreakpointsResponse{Response: newResponse(req.Request)})
	return nil
}

// onConfigurationDone triggers the first run: with no breakpoints set
// yet this lands on the synthetic `entry` stop (§4.2.6).
func (s *Session) onConfigurationDone(req *dapproto.ConfigurationDoneRequest) error {
	s.send(&dapproto.ConfigurationDoneResponse{Response: newResponse(req.Request)})

	st, err := s.engine.Continue()
	if _, ok := err.(stepengine.Terminated); ok {
		s.emitTerminated()
		return nil
	}
	if err != nil {
		return err
	}
	s.emitStopped(st)
	return nil
}

func (s *Session) onDisconnect(req *dapproto.DisconnectRequest) error {
	s.send(&dapproto.DisconnectResponse{Response: newResponse(req.Request)})
	close(s.done)
	return nil
}

// stepResult sends the response first, then the `stopped`/`terminated`
// event — see the ordering caveat documented on emitStopped.
func (s *Session) stepResult(request dapproto.Request, command string, st *stepengine.Stopped, err error) error {
	if _, ok := err.(stepengine.Terminated); ok {
		s.sendGenericResponse(request, command)
		s.emitTerminated()
		return nil
	}
	if err != nil {
		return err
	}
	s.sendGenericResponse(request, command)
	s.emitStopped(st)
	return nil
}

func (s *Session) sendGenericResponse(request dapproto.Request, command string) {
	s.send(&dapproto.Response{
		ProtocolMessage: dapproto.ProtocolMessage{Type: "response"},
		RequestSeq:      request.Seq,
		Success:         true,
		Command:         command,
	})
}

func (s *Session) onContinue(req *dapproto.ContinueRequest) error {
	st, err := s.engine.Continue()
	return s.stepResult(req.Request, req.Command, st, err)
}

func (s *Session) onReverseContinue(req *dapproto.ReverseContinueRequest) error {
	st, err := s.engine.ReverseContinue()
	return s.stepResult(req.Request, req.Command, st, err)
}

func (s *Session) onNext(req *dapproto.NextRequest) error {
	st, err := s.engine.Next(req.Arguments.ThreadId)
	return s.stepResult(req.Request, req.Command, st, err)
}

func (s *Session) onStepIn(req *dapproto.StepInRequest) error {
	var target *int
	if req.Arguments.TargetId != 0 {
		id := req.Arguments.TargetId
		target = &id
	}
	st, err := s.engine.StepIn(req.Arguments.ThreadId, target)
	return s.stepResult(req.Request, req.Command, st, err)
}

func (s *Session) onStepInTargets(req *dapproto.StepInTargetsRequest) error {
	threadID, _ := decodeFrameID(req.Arguments.FrameId)
	targets, err := s.engine.StepInTargets(threadID)
	if err != nil {
		return err
	}
	resp := &dapproto.StepInTargetsResponse{Response: newResponse(req.Request)}
	resp.Body.Targets = make([]dapproto.StepInTarget, len(targets))
	for i, t := range targets {
		resp.Body.Targets[i] = dapproto.StepInTarget{Id: t.ID, Label: t.Label}
	}
	s.send(resp)
	return nil
}

func (s *Session) onStepOut(req *dapproto.StepOutRequest) error {
	st, err := s.engine.StepOut(req.Arguments.ThreadId)
	return s.stepResult(req.Request, req.Command, st, err)
}

func (s *Session) onStepBack(req *dapproto.StepBackRequest) error {
	st, err := s.engine.StepBack(req.Arguments.ThreadId)
	return s.stepResult(req.Request, req.Command, st, err)
}

func (s *Session) onThreads(req *dapproto.ThreadsRequest) error {
	resp := &dapproto.ThreadsResponse{Response: newResponse(req.Request)}
	resp.Body.Threads = []dapproto.Thread{}
	for _, id := range s.engine.Threads.SortedIDs() {
		th := s.engine.Threads.MustGet(id)
		resp.Body.Threads = append(resp.Body.Threads, dapproto.Thread{Id: id, Name: th.Name})
	}
	s.send(resp)
	return nil
}

// onStackTrace renders a thread's synthetic stack (§4.3), prefixing
// frames that belong to a parent thread with `^`.
func (s *Session) onStackTrace(req *dapproto.StackTraceRequest) error {
	th, ok := s.engine.Threads.Get(req.Arguments.ThreadId)
	if !ok {
		return internalNoThread(req.Arguments.ThreadId)
	}

	topIdx := th.Top().LocalThreadIndex
	resp := &dapproto.StackTraceResponse{Response: newResponse(req.Request)}
	resp.Body.StackFrames = make([]dapproto.StackFrame, len(th.Frames))
	resp.Body.TotalFrames = len(th.Frames)
	for i, f := range th.Frames {
		name := "<unreachable>"
		line, col := 0, 0
		var source *dapproto.Source
		if f.Node != nil {
			name = f.Node.Function
			line, col = f.Node.Location.Line, f.Node.Location.Column
			source = &dapproto.Source{Path: f.Node.Location.File, Name: filepath.Base(f.Node.Location.File)}
			if f.LocalThreadIndex != topIdx {
				name = "^ " + name
			}
		} else if f.LastReachableNode != nil {
			name = "<unreachable past " + f.LastReachableNode.Function + ">"
		}
		resp.Body.StackFrames[i] = dapproto.StackFrame{
			Id:     encodeFrameID(req.Arguments.ThreadId, i),
			Name:   name,
			Line:   line,
			Column: col,
			Source: source,
		}
	}
	s.send(resp)
	return nil
}

func internalNoThread(id int) error {
	return &stepengine.InternalError{Message: threadNotFoundMessage(id)}
}

func threadNotFoundMessage(id int) string {
	return "no such thread " + strconv.Itoa(id)
}

func (s *Session) onEvaluate(req *dapproto.EvaluateRequest) error {
	threadID, frameIdx := decodeFrameID(req.Arguments.FrameId)
	th, ok := s.engine.Threads.Get(threadID)
	if !ok || frameIdx < 0 || frameIdx >= len(th.Frames) {
		return internalNoThread(threadID)
	}
	node := th.Frames[frameIdx].Node
	if node == nil {
		return &stepengine.UserFacingError{Message: "Cannot evaluate, current location is unavailable."}
	}

	result, err := s.engine.Oracle.EvalInt(node.NodeID, req.Arguments.Expression)
	if err != nil {
		return evalError(err)
	}

	resp := &dapproto.EvaluateResponse{Response: newResponse(req.Request)}
	resp.Body.Result = result.Display
	s.send(resp)
	return nil
}

// evalError maps an oracle.ErrUserExpression to a UserFacing error
// carrying the oracle's message verbatim (§4.4); anything else (lookup
// failures, transport errors) propagates unchanged.
func evalError(err error) error {
	if uerr, ok := err.(*oracle.ErrUserExpression); ok {
		return &stepengine.UserFacingError{Message: uerr.Message}
	}
	return err
}

// onSource always rejects (§4.4 "Supplemented features"): this adapter
// never holds source text of its own, only the path the client already
// has.
func (s *Session) onSource(req *dapproto.SourceRequest) error {
	return &stepengine.UserFacingError{
		Message: "source content is not available from this adapter; load the file at its reported path directly",
	}
}
