package oracle

import (
	"bufio"
	"encoding/json"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arg-debug/argdap/pkg/argmodel"
	"github.com/sirupsen/logrus"
)

// Client is the ARG Oracle Client (§4.1): a remote query facade over the
// analyzer backend, exposing lookup-by-id, lookup-by-location, state
// fetch and expression evaluation. Implementations must apply the
// return-node location patch described in §4.1 before handing a
// NodeInfo back to a caller.
type Client interface {
	LookupByLocation(loc *argmodel.Location) ([]argmodel.NodeInfo, error)
	LookupByID(nodeID string) (argmodel.NodeInfo, error)
	FetchState(nodeID string) (argmodel.StateTree, error)
	EvalInt(nodeID, expression string) (argmodel.ExprResult, error)
}

// conn is the real Client, talking newline-delimited JSON-RPC 2.0 to the
// analyzer over a net.Conn.
type conn struct {
	log *logrus.Entry

	mu     sync.Mutex
	nc     net.Conn
	w      *bufio.Writer
	r      *bufio.Reader
	nextID uint64

	readTimeout time.Duration
}

// Dial connects to an analyzer oracle at addr over the given network
// ("tcp" or "unix").
func Dial(network, addr string, log *logrus.Entry) (Client, error) {
	nc, err := net.DialTimeout(network, addr, 5*time.Second)
	if err != nil {
		return nil, &ErrUnavailable{Cause: err}
	}
	return &conn{
		log:         log,
		nc:          nc,
		w:           bufio.NewWriter(nc),
		r:           bufio.NewReader(nc),
		readTimeout: 30 * time.Second,
	}, nil
}

func (c *conn) call(method string, params interface{}, out interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := atomic.AddUint64(&c.nextID, 1)
	req := rpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: params}

	c.log.WithField("method", method).Debug("oracle request")

	buf, err := json.Marshal(req)
	if err != nil {
		return &ErrUnavailable{Cause: err}
	}
	buf = append(buf, '\n')

	if c.nc != nil {
		c.nc.SetWriteDeadline(time.Now().Add(c.readTimeout))
	}
	if _, err := c.w.Write(buf); err != nil {
		return &ErrUnavailable{Cause: err}
	}
	if err := c.w.Flush(); err != nil {
		return &ErrUnavailable{Cause: err}
	}

	if c.nc != nil {
		c.nc.SetReadDeadline(time.Now().Add(c.readTimeout))
	}
	line, err := c.r.ReadBytes('\n')
	if err != nil {
		return &ErrUnavailable{Cause: err}
	}

	var resp rpcResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return &ErrUnavailable{Cause: err}
	}
	if resp.Error != nil {
		return &ErrRejected{Message: resp.Error.Message}
	}
	if out != nil {
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return &ErrUnavailable{Cause: err}
		}
	}
	return nil
}

func (c *conn) LookupByLocation(loc *argmodel.Location) ([]argmodel.NodeInfo, error) {
	var results []LookupResult
	if err := c.call("arg_lookup", LookupParams{Location: loc}, &results); err != nil {
		return nil, err
	}
	nodes := make([]argmodel.NodeInfo, len(results))
	for i, r := range results {
		nodes[i] = patchReturnLocation(r.Node)
	}
	return nodes, nil
}

func (c *conn) LookupByID(nodeID string) (argmodel.NodeInfo, error) {
	var results []LookupResult
	if err := c.call("arg_lookup", LookupParams{NodeID: nodeID}, &results); err != nil {
		return argmodel.NodeInfo{}, err
	}
	switch len(results) {
	case 0:
		return argmodel.NodeInfo{}, &ErrNotFound{NodeID: nodeID}
	case 1:
		return patchReturnLocation(results[0].Node), nil
	default:
		return argmodel.NodeInfo{}, &ErrAmbiguous{NodeID: nodeID, Count: len(results)}
	}
}

func (c *conn) FetchState(nodeID string) (argmodel.StateTree, error) {
	var tree argmodel.StateTree
	if err := c.call("arg_state", ARGNodeParams{NodeID: nodeID}, &tree); err != nil {
		return argmodel.StateTree{}, err
	}
	return tree, nil
}

func (c *conn) EvalInt(nodeID, expression string) (argmodel.ExprResult, error) {
	var result argmodel.ExprResult
	err := c.call("arg_eval_int", ARGExprQueryParams{NodeID: nodeID, Expression: expression}, &result)
	if rejected, ok := err.(*ErrRejected); ok {
		return argmodel.ExprResult{}, &ErrUserExpression{Message: rejected.Message}
	}
	if err != nil {
		return argmodel.ExprResult{}, err
	}
	return result, nil
}

// patchReturnLocation narrows the display location of a return node
// (no outgoing CFG edges, at least one outgoing return edge) to the end
// of its original range. Idempotent: applying it twice to an
// already-patched node is a no-op, since Location is then already
// collapsed to its own end.
func patchReturnLocation(n argmodel.NodeInfo) argmodel.NodeInfo {
	if !n.IsReturnNode() {
		return n
	}
	n.Location.Line = n.Location.EndLine
	n.Location.Column = n.Location.EndColumn
	return n
}
