package layer

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

var (
	// ErrLayerNotFound is returned when a named layer does not exist.
	ErrLayerNotFound = errors.New("layer not found")

	// ErrReadOnly is returned when a read-only layer is modified.
	ErrReadOnly = errors.New("layer is read-only")
)

// Manager manages configuration layers and provides merged access.
type Manager struct {
	mu     sync.RWMutex
	layers []*Layer       // sorted by priority, ascending
	merged map[string]any // cache of the merged layers
	dirty  bool
}

// NewManager creates a new layer manager.
func NewManager() *Manager {
	return &Manager{dirty: true}
}

// AddLayer adds a layer, replacing any layer with the same name.
func (m *Manager) AddLayer(layer *Layer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.indexOf(layer.Name); i >= 0 {
		m.layers = slices.Delete(m.layers, i, i+1)
	}
	m.layers = append(m.layers, layer)
	slices.SortStableFunc(m.layers, func(a, b *Layer) int {
		return a.Priority - b.Priority
	})
	m.dirty = true
}

// RemoveLayer removes a layer by name.
// Returns true if the layer was found and removed.
func (m *Manager) RemoveLayer(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(name)
	if i < 0 {
		return false
	}
	m.layers = slices.Delete(m.layers, i, i+1)
	m.dirty = true
	return true
}

// GetLayer returns a layer by name, or nil.
func (m *Manager) GetLayer(name string) *Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.indexOf(name); i >= 0 {
		return m.layers[i]
	}
	return nil
}

// Layers returns a copy of all layers sorted by priority.
func (m *Manager) Layers() []*Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.layers)
}

// Merge combines all layers into a single configuration map.
// The result is cached until a layer changes.
func (m *Manager) Merge() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneMap(m.mergedData())
}

// MergeWith merges the managed layers and extra, without storing extra.
// An extra layer hides a managed layer of the same name.
func (m *Manager) MergeWith(extra ...*Layer) map[string]any {
	if len(extra) == 0 {
		return m.Merge()
	}

	m.mu.RLock()
	all := slices.DeleteFunc(slices.Clone(m.layers), func(l *Layer) bool {
		return slices.ContainsFunc(extra, func(e *Layer) bool { return e.Name == l.Name })
	})
	m.mu.RUnlock()
	all = append(all, extra...)

	slices.SortStableFunc(all, func(a, b *Layer) int {
		return a.Priority - b.Priority
	})
	result := make(map[string]any)
	for _, layer := range all {
		result = DeepMerge(result, layer.Data)
	}
	return result
}

// mergedData refreshes the cache if dirty and returns it.
// Must be called with the write lock held.
func (m *Manager) mergedData() map[string]any {
	if m.dirty || m.merged == nil {
		result := make(map[string]any)
		for _, layer := range m.layers {
			result = DeepMerge(result, layer.Data)
		}
		m.merged = result
		m.dirty = false
	}
	return m.merged
}

// Get returns the effective value for a setting path and the name of the
// layer providing it.
func (m *Manager) Get(path string) (any, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.layers) - 1; i >= 0; i-- {
		if val, ok := GetByPath(m.layers[i].Data, path); ok {
			return val, m.layers[i].Name, true
		}
	}
	return nil, "", false
}

// Set sets a value in a named layer.
func (m *Manager) Set(name, path string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	layer, err := m.writable(name)
	if err != nil {
		return err
	}
	if layer.Data == nil {
		layer.Data = make(map[string]any)
	}
	SetByPath(layer.Data, path, value)
	layer.ModTime = time.Now()
	m.dirty = true
	return nil
}

// UpdateLayer replaces a layer's data entirely.
func (m *Manager) UpdateLayer(name string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	layer, err := m.writable(name)
	if err != nil {
		return err
	}
	layer.Data = cloneMap(data)
	layer.ModTime = time.Now()
	m.dirty = true
	return nil
}

func (m *Manager) writable(name string) (*Layer, error) {
	i := m.indexOf(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrLayerNotFound, name)
	}
	if m.layers[i].ReadOnly {
		return nil, fmt.Errorf("%w: %s", ErrReadOnly, name)
	}
	return m.layers[i], nil
}

func (m *Manager) indexOf(name string) int {
	return slices.IndexFunc(m.layers, func(l *Layer) bool { return l.Name == name })
}
