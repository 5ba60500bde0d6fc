package luastage

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/viewpipe/internal/view/core"
)

// tokensToLua converts a token sequence to a Lua array of tables.
func tokensToLua(L *lua.LState, tokens []core.Token) *lua.LTable {
	arr := L.NewTable()
	for _, t := range tokens {
		arr.Append(tokenToLua(L, t))
	}
	return arr
}

// tokenToLua converts one token to a Lua table.
func tokenToLua(L *lua.LState, t core.Token) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("kind", lua.LString(t.Kind.String()))
	switch t.Kind {
	case core.KindText:
		tbl.RawSetString("content", lua.LString(t.Content))
	case core.KindSpace:
		tbl.RawSetString("count", lua.LNumber(t.Count))
	case core.KindBreak:
		tbl.RawSetString("break_kind", lua.LString(t.Break.String()))
		tbl.RawSetString("injected", lua.LBool(t.Injected))
	}
	if t.Anchor.Valid() {
		tbl.RawSetString("anchor", lua.LNumber(t.Anchor))
	}
	return tbl
}

// hintsToLua converts layout hints to a Lua table.
func hintsToLua(L *lua.LState, h core.LayoutHints) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("compose_width", lua.LNumber(h.ComposeWidth))
	tbl.RawSetString("max_width", lua.LNumber(h.MaxWidth))
	guides := L.NewTable()
	for _, g := range h.ColumnGuides {
		guides.Append(lua.LNumber(g))
	}
	tbl.RawSetString("column_guides", guides)
	return tbl
}

// tokensFromLua decodes a Lua array of token tables.
func tokensFromLua(arr *lua.LTable) ([]core.Token, error) {
	var tokens []core.Token
	var convErr error

	arr.ForEach(func(k, v lua.LValue) {
		if convErr != nil {
			return
		}
		tbl, ok := v.(*lua.LTable)
		if !ok {
			convErr = fmt.Errorf("%w: element %s is not a table", ErrBadToken, k.String())
			return
		}
		t, err := tokenFromLua(tbl)
		if err != nil {
			convErr = err
			return
		}
		tokens = append(tokens, t)
	})

	if convErr != nil {
		return nil, convErr
	}
	return tokens, nil
}

// tokenFromLua decodes one token table.
func tokenFromLua(tbl *lua.LTable) (core.Token, error) {
	anchor := core.NoAnchor
	if av, ok := tbl.RawGetString("anchor").(lua.LNumber); ok {
		anchor = core.Anchor(av)
	}

	kind, ok := tbl.RawGetString("kind").(lua.LString)
	if !ok {
		return core.Token{}, fmt.Errorf("%w: missing kind", ErrBadToken)
	}

	switch string(kind) {
	case "text":
		content, ok := tbl.RawGetString("content").(lua.LString)
		if !ok {
			return core.Token{}, fmt.Errorf("%w: text token missing content", ErrBadToken)
		}
		return core.TextToken(string(content), anchor), nil
	case "newline":
		return core.NewlineToken(anchor), nil
	case "space":
		count := 1
		if cv, ok := tbl.RawGetString("count").(lua.LNumber); ok {
			count = int(cv)
		}
		return core.SpaceToken(count, anchor), nil
	case "break":
		bk := core.BreakSoft
		if bv, ok := tbl.RawGetString("break_kind").(lua.LString); ok && bv == "hard" {
			bk = core.BreakHard
		}
		injected := false
		if iv, ok := tbl.RawGetString("injected").(lua.LBool); ok {
			injected = bool(iv)
		}
		return core.BreakToken(bk, injected, anchor), nil
	default:
		return core.Token{}, fmt.Errorf("%w: unknown kind %q", ErrBadToken, string(kind))
	}
}
