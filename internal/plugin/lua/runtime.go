package lua

import (
	"fmt"
	"os"

	"github.com/dshills/indentscope/internal/config/layer"
	"github.com/dshills/indentscope/internal/scope"
	lua "github.com/yuin/gopher-lua"
)

// Runtime is a state with the indentscope module bound to a host.
type Runtime struct {
	*State
}

// NewRuntime creates a sandboxed state whose module talks to host.
func NewRuntime(host Host, opts ...StateOption) *Runtime {
	s := NewState(opts...)
	s.Preload(ModuleName, Loader(host))
	return &Runtime{State: s}
}

// configHost collects setup() calls while a configuration file runs.
type configHost struct {
	settings map[string]any
}

func (h *configHost) Setup(settings map[string]any) error {
	h.settings = layer.DeepMerge(h.settings, settings)
	return nil
}

func (h *configHost) Scope(int, int, map[string]any) (scope.Scope, error) {
	return scope.Scope{}, ErrNoHost
}

func (h *configHost) Draw() error   { return ErrNoHost }
func (h *configHost) Undraw() error { return ErrNoHost }

// Configure runs a configuration script and returns the settings passed
// to setup(), with a returned table merged on top.
func Configure(path string, opts ...StateOption) (map[string]any, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	host := &configHost{settings: make(map[string]any)}
	rt := NewRuntime(host, opts...)
	defer rt.Close()

	top := rt.L.GetTop()
	if err := rt.DoFile(path); err != nil {
		return nil, fmt.Errorf("running %s: %w", path, err)
	}

	if rt.L.GetTop() > top {
		ret := rt.L.Get(top + 1)
		rt.L.SetTop(top)
		if ret != lua.LNil {
			m := ToGoMap(ret)
			if m == nil {
				return nil, fmt.Errorf("running %s: script must return a table or nothing", path)
			}
			host.settings = layer.DeepMerge(host.settings, m)
		}
	}
	return host.settings, nil
}
