// Package logflags wires the --log / --log-output / --log-dest flags
// into per-subsystem logrus loggers, mirroring delve's own
// pkg/logflags: a single comma-separated flag selects which subsystems
// log at Debug level, everything else stays at Warn.
package logflags

import (
	"fmt"
	"io"
	"os"
	"strings"

	colorable "github.com/mattn/go-colorable"
	isatty "github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

const (
	dapSubsystem       = "dap"
	stepengineSubsystem = "stepengine"
	oracleSubsystem    = "oracle"
)

var (
	dapEnabled        bool
	stepengineEnabled bool
	oracleEnabled     bool

	writer io.Writer = os.Stderr
)

// Setup parses the --log-output subsystem list and opens --log-dest
// (a path, or "" for stderr), then returns whether any subsystem was
// selected; logAll true forces every subsystem on regardless of the
// list, matching delve's `--log` with no `--log-output` behavior.
func Setup(logAll bool, logOutput, logDest string) (bool, error) {
	dapEnabled, stepengineEnabled, oracleEnabled = false, false, false

	if logDest != "" {
		f, err := os.Create(logDest)
		if err != nil {
			return false, fmt.Errorf("unable to open log destination %q: %w", logDest, err)
		}
		writer = f
	}

	if logAll {
		dapEnabled, stepengineEnabled, oracleEnabled = true, true, true
	}
	if logOutput == "" {
		return logAll, nil
	}

	any := logAll
	for _, s := range strings.Split(logOutput, ",") {
		switch strings.TrimSpace(s) {
		case dapSubsystem:
			dapEnabled, any = true, true
		case stepengineSubsystem:
			stepengineEnabled, any = true, true
		case oracleSubsystem:
			oracleEnabled, any = true, true
		default:
			return false, fmt.Errorf("unknown log subsystem %q", s)
		}
	}
	return any, nil
}

func newLogger(enabled bool, subsystem string) *logrus.Entry {
	logger := logrus.New()
	cw, isFile := writer.(*os.File)
	isTerm := isFile && isatty.IsTerminal(cw.Fd())
	logger.Formatter = &logrus.TextFormatter{
		ForceColors:   isTerm,
		FullTimestamp: true,
	}
	if isTerm {
		logger.Out = colorable.NewColorable(cw)
	} else {
		logger.Out = writer
	}
	logger.Level = logrus.WarnLevel
	if enabled {
		logger.Level = logrus.DebugLevel
	}
	return logger.WithField("layer", subsystem)
}

// DAPLogger returns the logger for the DAP Adapter (request/response
// tracing, §4.4).
func DAPLogger() *logrus.Entry { return newLogger(dapEnabled, dapSubsystem) }

// StepEngineLogger returns the logger for the Stepping Engine (§4.2,
// §4.3): breakpoint pump skips.
func StepEngineLogger() *logrus.Entry { return newLogger(stepengineEnabled, stepengineSubsystem) }

// OracleLogger returns the logger for the ARG Oracle Client (§4.1):
// one entry per wire request.
func OracleLogger() *logrus.Entry { return newLogger(oracleEnabled, oracleSubsystem) }
