// Package luastage adapts externally supplied Lua scripts into view
// transform stages.
//
// A script evaluates to a function(tokens, hints) -> tokens. Tokens
// cross the boundary as Lua tables; the returned sequence is rebuilt
// into a stream and validated by the chain like any other stage
// output, so a misbehaving script cannot corrupt the mapping. Its
// output is simply discarded for the frame.
package luastage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/dshills/viewpipe/internal/view/core"
)

// DefaultTimeout bounds a single script application.
const DefaultTimeout = 100 * time.Millisecond

// Script errors.
var (
	// ErrNoFunction is returned when the script does not evaluate to
	// a function.
	ErrNoFunction = errors.New("script did not return a transform function")

	// ErrBadToken is returned when the script produces a table that
	// cannot be decoded as a token.
	ErrBadToken = errors.New("script returned a malformed token")
)

// Stage is a Lua-scripted transform stage. The script is compiled
// once; every application runs in a fresh interpreter state, which
// keeps stages pure functions of their inputs.
type Stage struct {
	name    string
	proto   *lua.FunctionProto
	timeout time.Duration
}

// Option configures a Stage.
type Option func(*Stage)

// WithTimeout sets the per-application execution timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Stage) { s.timeout = d }
}

// New compiles a Lua script into a transform stage.
func New(name, script string, opts ...Option) (*Stage, error) {
	chunk, err := parse.Parse(strings.NewReader(script), name)
	if err != nil {
		return nil, fmt.Errorf("parsing stage script %s: %w", name, err)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, fmt.Errorf("compiling stage script %s: %w", name, err)
	}

	s := &Stage{
		name:    name,
		proto:   proto,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name implements transform.Stage.
func (s *Stage) Name() string { return s.name }

// Apply implements transform.Stage.
func (s *Stage) Apply(stream core.ViewStream, hints core.LayoutHints) (core.ViewStream, error) {
	L := lua.NewState()
	defer L.Close()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	L.SetContext(ctx)

	// Evaluate the script to obtain the transform function.
	L.Push(L.NewFunctionFromProto(s.proto))
	if err := L.PCall(0, 1, nil); err != nil {
		return core.ViewStream{}, fmt.Errorf("stage script %s: %w", s.name, err)
	}
	fn, ok := L.Get(-1).(*lua.LFunction)
	L.Pop(1)
	if !ok {
		return core.ViewStream{}, ErrNoFunction
	}

	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true},
		tokensToLua(L, stream.Tokens), hintsToLua(L, hints)); err != nil {
		return core.ViewStream{}, fmt.Errorf("stage script %s: %w", s.name, err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	table, ok := ret.(*lua.LTable)
	if !ok {
		return core.ViewStream{}, ErrBadToken
	}
	tokens, err := tokensFromLua(table)
	if err != nil {
		return core.ViewStream{}, err
	}

	return core.NewStream(tokens, stream.SourceLen), nil
}
