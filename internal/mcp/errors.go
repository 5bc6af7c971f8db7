package mcp

import (
	"errors"
	"fmt"
)

var ErrNotConnected = errors.New("mcp server not connected")

// RemoteError is a JSON-RPC level error returned by the tool server.
type RemoteError struct {
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code == 0 {
		return e.Message
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// ToolError is a tool-level failure: the server answered the call but
// flagged the result as an error.
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	if e.Message == "" {
		return "tool " + e.Tool + " failed"
	}
	return "tool " + e.Tool + " failed: " + e.Message
}
