package main

import (
	"io"
	"net"
	"os"

	"github.com/arg-debug/argdap/pkg/config"
	"github.com/arg-debug/argdap/pkg/dap"
	"github.com/arg-debug/argdap/pkg/logflags"
	"github.com/arg-debug/argdap/pkg/oracle"
	"github.com/arg-debug/argdap/pkg/stepengine"
	"github.com/spf13/cobra"
)

type serveFlags struct {
	listen                   string
	oracleAddr               string
	log                      bool
	logDest                  string
	logOutput                string
	checkLocalConnectionUser bool
}

func newServeCommand() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start a DAP server backed by an ARG analyzer oracle",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.listen, "listen", "", "DAP listen address (host:port); empty serves a single session over stdio")
	cmd.Flags().StringVar(&flags.oracleAddr, "oracle", "localhost:9190", "analyzer oracle dial address")
	cmd.Flags().BoolVar(&flags.log, "log", false, "enable all logging subsystems")
	cmd.Flags().StringVar(&flags.logDest, "log-dest", "", "log output file path (default stderr)")
	cmd.Flags().StringVar(&flags.logOutput, "log-output", "", "comma separated list of logging subsystems: dap, stepengine, oracle")
	cmd.Flags().BoolVar(&flags.checkLocalConnectionUser, "check-local-connection-user", true, "refuse connections whose peer address is not loopback (the peer's OS user is not checked)")

	return cmd
}

func runServe(cmd *cobra.Command, flags serveFlags) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}

	listen := config.MergeString(flags.listen, cmd.Flags().Changed("listen"), settings.ListenAddr)
	oracleAddr := config.MergeString(flags.oracleAddr, cmd.Flags().Changed("oracle"), settings.OracleAddr)
	logOutput := config.MergeString(flags.logOutput, cmd.Flags().Changed("log-output"), settings.LogOutput)
	logDest := config.MergeString(flags.logDest, cmd.Flags().Changed("log-dest"), settings.LogDest)
	checkUser := config.MergeBool(flags.checkLocalConnectionUser, cmd.Flags().Changed("check-local-connection-user"), settings.CheckLocalConnectionUser)

	if _, err := logflags.Setup(flags.log, logOutput, logDest); err != nil {
		return err
	}

	if listen == "" {
		return serveSession(oracleAddr, stdioConn{})
	}

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return err
	}
	defer ln.Close()

	dapLog := logflags.DAPLogger()
	dapLog.Infof("listening on %s", listen)

	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		if checkUser && !sameMachineUser(conn) {
			dapLog.Warn("rejected non-loopback connection")
			conn.Close()
			continue
		}
		go func() {
			defer conn.Close()
			if err := serveSession(oracleAddr, conn); err != nil {
				dapLog.WithError(err).Warn("session ended")
			}
		}()
	}
}

func serveSession(oracleAddr string, rw io.ReadWriter) error {
	oracleLog := logflags.OracleLogger()
	client, err := oracle.Dial("tcp", oracleAddr, oracleLog)
	if err != nil {
		return err
	}
	cached := oracle.NewCachingClient(client)

	engineLog := logflags.StepEngineLogger()
	engine := stepengine.New(cached, engineLog)

	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	session := dap.NewSession(rw, engine, wd, logflags.DAPLogger())
	session.Serve()
	return nil
}

// sameMachineUser reports whether the peer's address is loopback. It
// does not look up which OS user owns the peer's socket, so every
// loopback connection passes, whatever user opened it.
func sameMachineUser(conn net.Conn) bool {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return false
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// stdioConn adapts os.Stdin/os.Stdout into the io.ReadWriter a Session
// expects, for the single-session-over-stdio mode editors launch an
// adapter in directly.
type stdioConn struct{}

func (stdioConn) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioConn) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
