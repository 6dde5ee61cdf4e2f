package lua

import (
	"github.com/dshills/indentscope/internal/easing"
	"github.com/dshills/indentscope/internal/scope"
	lua "github.com/yuin/gopher-lua"
)

// ModuleName is the name scripts require.
const ModuleName = "indentscope"

// Host is the editor side of the module.
type Host interface {
	// Setup applies settings.
	Setup(settings map[string]any) error

	// Scope resolves a scope in the active document. A zero line means the
	// cursor position. col is a 0-indexed display column. opts are
	// call-level setting overrides and may be nil.
	Scope(line, col int, opts map[string]any) (scope.Scope, error)

	// Draw draws the scope at the cursor.
	Draw() error

	// Undraw removes the shown scope.
	Undraw() error
}

// Animation defaults used by gen_animation and timings.
const (
	defaultEasing   = "in-out"
	defaultDuration = 20.0
	defaultUnit     = "step"
)

var shapes = []string{"none", "linear", "quadratic", "cubic", "quartic", "exponential"}

// Loader returns the module loader for host.
func Loader(host Host) lua.LGFunction {
	return func(L *lua.LState) int {
		mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
			"setup": func(L *lua.LState) int {
				settings := ToGoMap(L.OptTable(1, L.NewTable()))
				if err := host.Setup(settings); err != nil {
					L.RaiseError("setup: %s", err.Error())
				}
				return 0
			},
			"get_scope": func(L *lua.LState) int {
				line := L.OptInt(1, 0)
				col := L.OptInt(2, 0)
				opts := ToGoMap(L.OptTable(3, L.NewTable()))
				sc, err := host.Scope(line, col, opts)
				if err != nil {
					L.RaiseError("get_scope: %s", err.Error())
				}
				L.Push(scopeTable(L, sc))
				return 1
			},
			"draw": func(L *lua.LState) int {
				if err := host.Draw(); err != nil {
					L.RaiseError("draw: %s", err.Error())
				}
				return 0
			},
			"undraw": func(L *lua.LState) int {
				if err := host.Undraw(); err != nil {
					L.RaiseError("undraw: %s", err.Error())
				}
				return 0
			},
			"timings": timings,
		})

		gen := L.NewTable()
		for _, shape := range shapes {
			L.SetField(gen, shape, L.NewFunction(genAnimation(shape)))
		}
		L.SetField(mod, "gen_animation", gen)

		L.Push(mod)
		return 1
	}
}

// genAnimation returns a function building an animation spec table.
func genAnimation(shape string) lua.LGFunction {
	return func(L *lua.LState) int {
		opts := L.OptTable(1, L.NewTable())
		e := optString(opts, "easing", defaultEasing)
		d := optNumber(opts, "duration", defaultDuration)
		u := optString(opts, "unit", defaultUnit)
		if _, err := easing.ParseSpec(shape, e, u, d); err != nil {
			L.ArgError(1, err.Error())
		}

		t := L.NewTable()
		t.RawSetString("shape", lua.LString(shape))
		t.RawSetString("easing", lua.LString(e))
		t.RawSetString("duration", lua.LNumber(d))
		t.RawSetString("unit", lua.LString(u))
		L.Push(t)
		return 1
	}
}

// timings returns the waits in milliseconds before steps 1..n of spec.
func timings(L *lua.LState) int {
	spec := L.CheckTable(1)
	n := L.CheckInt(2)

	parsed, err := easing.ParseSpec(
		optString(spec, "shape", "linear"),
		optString(spec, "easing", defaultEasing),
		optString(spec, "unit", defaultUnit),
		optNumber(spec, "duration", defaultDuration),
	)
	if err != nil {
		L.ArgError(1, err.Error())
	}
	f, err := easing.Make(parsed)
	if err != nil {
		L.ArgError(1, err.Error())
	}
	L.Push(ToLuaValue(L, easing.Schedule(f, n)))
	return 1
}

func scopeTable(L *lua.LState, sc scope.Scope) *lua.LTable {
	body := L.NewTable()
	body.RawSetString("top", lua.LNumber(sc.Body.Top))
	body.RawSetString("bottom", lua.LNumber(sc.Body.Bottom))
	body.RawSetString("indent", lua.LNumber(sc.Body.Indent))
	body.RawSetString("incomplete", lua.LBool(sc.Body.Incomplete))

	border := L.NewTable()
	if sc.Border.HasTop {
		border.RawSetString("top", lua.LNumber(sc.Border.Top))
	}
	if sc.Border.HasBottom {
		border.RawSetString("bottom", lua.LNumber(sc.Border.Bottom))
	}
	if !sc.Border.Empty() {
		border.RawSetString("indent", lua.LNumber(sc.Border.Indent))
	}

	ref := L.NewTable()
	ref.RawSetString("line", lua.LNumber(sc.Reference.Line))
	ref.RawSetString("column", lua.LNumber(min(sc.Reference.Column, 1<<31)))
	ref.RawSetString("indent", lua.LNumber(sc.Reference.Indent))

	t := L.NewTable()
	t.RawSetString("buf_id", lua.LString(sc.Document))
	t.RawSetString("body", body)
	t.RawSetString("border", border)
	t.RawSetString("reference", ref)
	t.RawSetString("draw_indent", lua.LNumber(scope.DrawIndent(sc)))
	return t
}

func optString(t *lua.LTable, key, def string) string {
	if s, ok := t.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return def
}

func optNumber(t *lua.LTable, key string, def float64) float64 {
	if n, ok := t.RawGetString(key).(lua.LNumber); ok {
		return float64(n)
	}
	return def
}
