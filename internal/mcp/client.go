package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/fabroche/transcription-to-notion/internal/errinfo"
	"github.com/fabroche/transcription-to-notion/internal/logging"
)

const (
	jsonRPCVersion  = "2.0"
	protocolVersion = "2024-11-05"
	clientName      = "transcription-backend"
	clientVersion   = "1.0.0"

	maxMessageSize   = 12 * 1024 * 1024
	handshakeTimeout = 30 * time.Second
)

// Client owns the single shared connection to the external notebook
// tool server: a subprocess speaking line-delimited JSON-RPC on stdio.
// It connects lazily on first use and stays up until an explicit
// Disconnect or the process dies. Concurrent callers share the one
// connection; requests are matched to responses by id.
type Client struct {
	mu         sync.Mutex
	cond       *sync.Cond
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	pending    map[int]chan response
	nextID     int
	connected  bool
	connecting bool

	command     string
	args        []string
	callTimeout time.Duration
	logger      *slog.Logger
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcNotification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcErrorBody   `json:"error,omitempty"`
}

type rpcErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type response struct {
	result json.RawMessage
	err    error
}

func NewClient(command string, args []string, callTimeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.Nop()
	}
	c := &Client{
		pending:     make(map[int]chan response),
		nextID:      1,
		command:     strings.TrimSpace(command),
		args:        args,
		callTimeout: callTimeout,
		logger:      logger,
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Connect establishes the connection, launching the server process and
// running the initialize handshake. It is idempotent; concurrent
// callers wait for a single in-flight attempt.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	for c.connecting {
		c.cond.Wait()
	}
	if c.connected {
		c.mu.Unlock()
		return nil
	}
	c.connecting = true
	c.mu.Unlock()

	err := c.start(ctx)

	c.mu.Lock()
	c.connecting = false
	c.connected = err == nil
	c.cond.Broadcast()
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("mcp.connect_failed", "command", c.command, "error", err.Error())
		return errinfo.ConnectionFailed("failed to connect to the notebook tool server", err)
	}
	c.logger.Info("mcp.connected", "command", c.command)
	return nil
}

// Connected reports the connection state without side effects.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Invoke performs one tool call, connecting first if needed. Each call
// carries its own timeout; there is no retry.
func (c *Client) Invoke(ctx context.Context, tool string, args map[string]any) (ToolResult, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	callCtx := ctx
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}
	c.logger.Debug("mcp.invoke", "tool", tool, "args", logging.TrimArgs(args))
	if args == nil {
		args = map[string]any{}
	}
	raw, err := c.call(callCtx, "tools/call", map[string]any{
		"name":      tool,
		"arguments": args,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.logger.Warn("mcp.invoke_timeout", "tool", tool)
			return nil, errinfo.InvocationTimeout(tool, err)
		}
		c.logger.Warn("mcp.invoke_failed", "tool", tool, "error", err.Error())
		return nil, errinfo.InvocationFailed(tool, err)
	}
	var result ToolResult
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, errinfo.InvocationFailed(tool, fmt.Errorf("decode result: %w", err))
		}
	}
	if result.IsError() {
		toolErr := &ToolError{Tool: tool, Message: result.FirstText()}
		c.logger.Warn("mcp.tool_error", "tool", tool, "message", logging.TrimValue(toolErr.Message))
		return nil, errinfo.InvocationFailed(tool, toolErr)
	}
	return result, nil
}

// Disconnect releases the transport. Idempotent; in-flight calls fail
// with ErrNotConnected.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	if !c.connected && c.cmd == nil {
		c.mu.Unlock()
		return nil
	}
	cmd := c.cmd
	c.cmd = nil
	c.stdin = nil
	c.connected = false
	pending := c.pending
	c.pending = make(map[int]chan response)
	c.mu.Unlock()

	for _, ch := range pending {
		ch <- response{err: ErrNotConnected}
		close(ch)
	}
	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}
	c.logger.Info("mcp.disconnected")
	return nil
}

func (c *Client) start(ctx context.Context) error {
	if c.command == "" {
		return errors.New("no server command configured")
	}
	cmd := exec.Command(c.command, c.args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}

	c.mu.Lock()
	c.cmd = cmd
	c.stdin = stdin
	c.mu.Unlock()

	go c.readLoop(cmd, bufio.NewReaderSize(stdout, 64*1024))
	go c.stderrLoop(stderr)
	go c.waitLoop(cmd)

	if err := c.handshake(ctx); err != nil {
		c.teardown(cmd)
		return fmt.Errorf("initialize handshake: %w", err)
	}
	return nil
}

func (c *Client) handshake(ctx context.Context) error {
	hsCtx, cancel := context.WithTimeout(ctx, handshakeTimeout)
	defer cancel()
	_, err := c.call(hsCtx, "initialize", map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo": map[string]any{
			"name":    clientName,
			"version": clientVersion,
		},
	})
	if err != nil {
		return err
	}
	return c.notify("notifications/initialized", nil)
}

func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	c.mu.Lock()
	stdin := c.stdin
	if stdin == nil {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}
	id := c.nextID
	c.nextID++
	respCh := make(chan response, 1)
	c.pending[id] = respCh
	c.mu.Unlock()

	payload, err := json.Marshal(rpcRequest{JSONRPC: jsonRPCVersion, ID: id, Method: method, Params: params})
	if err != nil {
		c.removePending(id)
		return nil, err
	}
	if _, err := stdin.Write(append(payload, '\n')); err != nil {
		c.removePending(id)
		c.mu.Lock()
		cmd := c.cmd
		c.mu.Unlock()
		c.handleProcessExit(cmd, err)
		return nil, ErrNotConnected
	}

	select {
	case resp := <-respCh:
		return resp.result, resp.err
	case <-ctx.Done():
		c.removePending(id)
		return nil, ctx.Err()
	}
}

func (c *Client) notify(method string, params any) error {
	c.mu.Lock()
	stdin := c.stdin
	c.mu.Unlock()
	if stdin == nil {
		return ErrNotConnected
	}
	payload, err := json.Marshal(rpcNotification{JSONRPC: jsonRPCVersion, Method: method, Params: params})
	if err != nil {
		return err
	}
	_, err = stdin.Write(append(payload, '\n'))
	return err
}

func (c *Client) readLoop(cmd *exec.Cmd, reader *bufio.Reader) {
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			c.handleProcessExit(cmd, err)
			return
		}
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		if len(line) > maxMessageSize {
			c.handleProcessExit(cmd, errors.New("message too large"))
			return
		}
		var resp rpcResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			c.logger.Warn("mcp.invalid_json", "error", err.Error())
			continue
		}
		if resp.ID == 0 {
			// Server-initiated notification; nothing waits on these.
			continue
		}
		c.mu.Lock()
		ch := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.mu.Unlock()
		if ch == nil {
			continue
		}
		if resp.Error != nil {
			ch <- response{err: &RemoteError{Code: resp.Error.Code, Message: resp.Error.Message}}
		} else {
			ch <- response{result: resp.Result}
		}
		close(ch)
	}
}

func (c *Client) stderrLoop(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		c.logger.Debug("mcp.server_stderr", "message", line)
	}
}

func (c *Client) waitLoop(cmd *exec.Cmd) {
	_ = cmd.Wait()
	c.handleProcessExit(cmd, errors.New("process exited"))
}

func (c *Client) handleProcessExit(cmd *exec.Cmd, err error) {
	c.mu.Lock()
	if c.cmd != cmd || cmd == nil {
		c.mu.Unlock()
		return
	}
	c.cmd = nil
	c.stdin = nil
	c.connected = false
	pending := c.pending
	c.pending = make(map[int]chan response)
	c.mu.Unlock()

	for _, ch := range pending {
		ch <- response{err: ErrNotConnected}
		close(ch)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		c.logger.Warn("mcp.connection_lost", "error", err.Error())
	}
}

func (c *Client) teardown(cmd *exec.Cmd) {
	c.handleProcessExit(cmd, nil)
	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}
}

func (c *Client) removePending(id int) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}
