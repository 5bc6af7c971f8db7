package mcp

import (
	"context"
	"sync"
)

// FakeCall records one Invoke made against a Fake.
type FakeCall struct {
	Tool string
	Args map[string]any
}

// Fake is a scripted stand-in for the Client, used by package tests
// that exercise orchestration without a live tool server. Results are
// queued per tool name; the last result repeats once the queue drains.
type Fake struct {
	mu      sync.Mutex
	results map[string][]ToolResult
	errs    map[string]error
	calls   []FakeCall

	connected     bool
	connects      int
	disconnects   int
	ConnectErr    error
	DisconnectErr error
}

func NewFake() *Fake {
	return &Fake{
		results: make(map[string][]ToolResult),
		errs:    make(map[string]error),
	}
}

// Stub queues results for a tool.
func (f *Fake) Stub(tool string, results ...ToolResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[tool] = append(f.results[tool], results...)
}

// StubError makes every call to a tool fail.
func (f *Fake) StubError(tool string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[tool] = err
}

func (f *Fake) Invoke(_ context.Context, tool string, args map[string]any) (ToolResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = true
	f.calls = append(f.calls, FakeCall{Tool: tool, Args: args})
	if err := f.errs[tool]; err != nil {
		return nil, err
	}
	queue := f.results[tool]
	if len(queue) == 0 {
		return ToolResult{}, nil
	}
	next := queue[0]
	if len(queue) > 1 {
		f.results[tool] = queue[1:]
	}
	return next, nil
}

func (f *Fake) Connect(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	if f.ConnectErr != nil {
		return f.ConnectErr
	}
	f.connected = true
	return nil
}

func (f *Fake) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects++
	if f.DisconnectErr != nil {
		return f.DisconnectErr
	}
	f.connected = false
	return nil
}

func (f *Fake) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

// Calls returns every recorded invocation in order.
func (f *Fake) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsFor filters recorded invocations by tool name.
func (f *Fake) CallsFor(tool string) []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []FakeCall
	for _, call := range f.calls {
		if call.Tool == tool {
			out = append(out, call)
		}
	}
	return out
}

// Connects reports how many Connect attempts were made.
func (f *Fake) Connects() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects
}

// Disconnects reports how many Disconnect calls were made.
func (f *Fake) Disconnects() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disconnects
}
