package dap

import (
	"errors"
	"fmt"

	"github.com/arg-debug/argdap/pkg/stepengine"
	dapproto "github.com/google/go-dap"
)

// dispatch routes one decoded DAP request to its handler and, on
// failure, turns the error into an ErrorResponse (§7).
func (s *Session) dispatch(msg dapproto.RequestMessage) {
	var request dapproto.Request
	var err error

	switch req := msg.(type) {
	case *dapproto.InitializeRequest:
		request = req.Request
		err = s.onInitialize(req)
	case *dapproto.LaunchRequest:
		request = req.Request
		err = s.onLaunch(req)
	case *dapproto.AttachRequest:
		request = req.Request
		err = s.onAttach(req)
	case *dapproto.SetBreakpointsRequest:
		request = req.Request
		err = s.onSetBreakpoints(req)
	case *dapproto.SetExceptionBreakpointsRequest:
		request = req.Request
		err = s.onSetExceptionBreakpoints(req)
	case *dapproto.ConfigurationDoneRequest:
		request = req.Request
		err = s.onConfigurationDone(req)
	case *dapproto.DisconnectRequest:
		request = req.Request
		err = s.onDisconnect(req)
	case *dapproto.ContinueRequest:
		request = req.Request
		err = s.onContinue(req)
	case *dapproto.ReverseContinueRequest:
		request = req.Request
		err = s.onReverseContinue(req)
	case *dapproto.NextRequest:
		request = req.Request
		err = s.onNext(req)
	case *dapproto.StepInRequest:
		request = req.Request
		err = s.onStepIn(req)
	case *dapproto.StepInTargetsRequest:
		request = req.Request
		err = s.onStepInTargets(req)
	case *dapproto.StepOutRequest:
		request = req.Request
		err = s.onStepOut(req)
	case *dapproto.StepBackRequest:
		request = req.Request
		err = s.onStepBack(req)
	case *dapproto.ThreadsRequest:
		request = req.Request
		err = s.onThreads(req)
	case *dapproto.StackTraceRequest:
		request = req.Request
		err = s.onStackTrace(req)
	case *dapproto.ScopesRequest:
		request = req.Request
		err = s.onScopes(req)
	case *dapproto.VariablesRequest:
		request = req.Request
		err = s.onVariables(req)
	case *dapproto.EvaluateRequest:
		request = req.Request
		err = s.onEvaluate(req)
	case *dapproto.SourceRequest:
		request = req.Request
		err = s.onSource(req)

	// Present on the DAP surface, absent from this adapter's
	// capabilities (§4.4 "Supplemented features"): each gets a clean,
	// documented rejection rather than a dropped connection.
	case *dapproto.GotoRequest:
		request, err = req.Request, notImplemented("goto")
	case *dapproto.GotoTargetsRequest:
		request, err = req.Request, notImplemented("gotoTargets")
	case *dapproto.RestartRequest:
		request, err = req.Request, notImplemented("restart")
	case *dapproto.RestartFrameRequest:
		request, err = req.Request, notImplemented("restartFrame")
	case *dapproto.TerminateRequest:
		request, err = req.Request, notImplemented("terminate")
	case *dapproto.TerminateThreadsRequest:
		request, err = req.Request, notImplemented("terminateThreads")
	case *dapproto.SetFunctionBreakpointsRequest:
		request, err = req.Request, notImplemented("setFunctionBreakpoints")
	case *dapproto.SetVariableRequest:
		request, err = req.Request, notImplemented("setVariable")
	case *dapproto.SetExpressionRequest:
		request, err = req.Request, notImplemented("setExpression")
	case *dapproto.DataBreakpointInfoRequest:
		request, err = req.Request, notImplemented("dataBreakpointInfo")
	case *dapproto.SetDataBreakpointsRequest:
		request, err = req.Request, notImplemented("setDataBreakpoints")
	case *dapproto.ReadMemoryRequest:
		request, err = req.Request, notImplemented("readMemory")
	case *dapproto.DisassembleRequest:
		request, err = req.Request, notImplemented("disassemble")
	case *dapproto.CancelRequest:
		request, err = req.Request, notImplemented("cancel")
	case *dapproto.BreakpointLocationsRequest:
		request, err = req.Request, notImplemented("breakpointLocations")
	case *dapproto.CompletionsRequest:
		request, err = req.Request, notImplemented("completions")
	case *dapproto.ExceptionInfoRequest:
		request, err = req.Request, notImplemented("exceptionInfo")
	case *dapproto.LoadedSourcesRequest:
		request, err = req.Request, notImplemented("loadedSources")

	default:
		s.log.Warnf("unrecognized request %T", msg)
		return
	}

	if err != nil {
		s.sendError(request, err)
	}
}

// errorMessageID is the id carried by every ErrorMessage this adapter
// sends. DAP reserves id ranges for specific well-known errors (e.g.
// delve's own adapter uses a handful of allocated ids); this adapter
// defines none of those and always reports the same generic id, relying
// on Format for the actual text.
const errorMessageID = 1

func notImplemented(command string) error {
	return fmt.Errorf("%s is not implemented by this adapter", command)
}

// sendError classifies err per §7 and replies with a DAP ErrorResponse
// naming it. UserFacing errors are shown verbatim; Internal errors are
// logged with context and shown as a generic server error; anything
// else (including oracle Transport failures) is logged as a warning —
// the failing request fails, but the session stays open.
func (s *Session) sendError(request dapproto.Request, err error) {
	var uerr *stepengine.UserFacingError
	var ierr *stepengine.InternalError

	message := err.Error()
	switch {
	case errors.As(err, &uerr):
		s.log.WithField("command", request.Command).Debug(uerr.Message)
	case errors.As(err, &ierr):
		s.log.WithField("command", request.Command).WithError(ierr).Error("internal error")
		message = "internal error"
	default:
		s.log.WithField("command", request.Command).WithError(err).Warn("request failed")
	}

	s.send(&dapproto.ErrorResponse{
		Response: dapproto.Response{
			ProtocolMessage: dapproto.ProtocolMessage{Type: "response"},
			RequestSeq:      request.Seq,
			Success:         false,
			Command:         request.Command,
		},
		Body: dapproto.ErrorResponseBody{
			Error: &dapproto.ErrorMessage{
				Id:     errorMessageID,
				Format: message,
			},
		},
	})
}
