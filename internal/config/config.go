package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/dshills/indentscope/internal/config/layer"
	"github.com/dshills/indentscope/internal/config/loader"
	"github.com/dshills/indentscope/internal/config/watcher"
	"go.uber.org/zap"
)

// Layer names used by Config.
const (
	layerDefaults = "defaults"
	layerSetup    = "setup"
	layerArgs     = "arguments"
	filePrefix    = "file:"
)

// ScriptLoader evaluates a configuration script and returns its settings.
type ScriptLoader func(path string) (map[string]any, error)

// ChangeEvent describes a configuration change. Document is empty for
// changes that apply to every document.
type ChangeEvent struct {
	Document string
	Paths    []string
}

// ChangeHandler is called after the configuration changed.
type ChangeHandler func(ChangeEvent)

// Option configures a Config.
type Option func(*Config)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.logger = l.Named("config")
		}
	}
}

// WithScriptLoader registers a loader for files with the given extension.
func WithScriptLoader(ext string, fn ScriptLoader) Option {
	return func(c *Config) {
		c.scripts[strings.ToLower(ext)] = fn
	}
}

// Config is the layered configuration: builtin defaults, user files,
// setup calls, arguments, per-document overrides and per-call overrides.
type Config struct {
	mu       sync.RWMutex
	layers   *layer.Manager
	docs     map[string]*layer.Layer
	files    []string
	scripts  map[string]ScriptLoader
	handlers []ChangeHandler
	logger   *zap.Logger
}

// New creates a configuration holding only the builtin defaults.
func New(opts ...Option) *Config {
	c := &Config{
		layers:  layer.NewManager(),
		docs:    make(map[string]*layer.Layer),
		scripts: make(map[string]ScriptLoader),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	defaults := layer.NewLayerWithData(layerDefaults, layer.SourceBuiltin, Defaults())
	defaults.ReadOnly = true
	c.layers.AddLayer(defaults)
	return c
}

// LoadFile loads a user configuration file. Later files override earlier
// ones. The file is validated against the layers already present.
func (c *Config) LoadFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	data, err := c.readFile(abs)
	if err != nil {
		return err
	}

	l := layer.NewLayerWithData(filePrefix+abs, layer.SourceUser, data)
	l.Path = abs
	if err := c.apply(l); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	c.mu.Lock()
	if !slices.Contains(c.files, abs) {
		c.files = append(c.files, abs)
	}
	c.mu.Unlock()
	c.logger.Info("config loaded", zap.String("path", abs))
	return nil
}

// Files returns the loaded configuration files in load order.
func (c *Config) Files() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.files)
}

func (c *Config) readFile(path string) (map[string]any, error) {
	ext := strings.ToLower(filepath.Ext(path))

	c.mu.RLock()
	script, ok := c.scripts[ext]
	c.mu.RUnlock()

	var (
		data map[string]any
		err  error
	)
	if ok {
		data, err = script(path)
	} else {
		var l loader.Loader
		if l, err = loader.ForPath(path); err != nil {
			return nil, err
		}
		data, err = l.LoadFrom(path)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	return data, err
}

// Setup applies settings given at runtime, above user files and below
// arguments. Successive calls merge.
func (c *Config) Setup(data map[string]any) error {
	merged := make(map[string]any)
	if prev := c.layers.GetLayer(layerSetup); prev != nil {
		merged = layer.DeepMerge(merged, prev.Data)
	}
	merged = layer.DeepMerge(merged, normalizeKeys(data))

	l := layer.NewLayerWithData(layerSetup, layer.SourceUser, merged)
	l.Priority = layer.PriorityUser + 1
	return c.apply(l)
}

// SetArgs replaces the arguments layer. Keys may be dotted paths.
func (c *Config) SetArgs(data map[string]any) error {
	return c.apply(layer.NewLayerWithData(layerArgs, layer.SourceArgs, normalizeKeys(data)))
}

// apply validates the configuration with l in place, installs l and
// notifies handlers of the changed paths.
func (c *Config) apply(l *layer.Layer) error {
	if _, err := Decode(c.layers.MergeWith(l)); err != nil {
		return err
	}

	before := c.layers.Merge()
	c.layers.AddLayer(l)
	c.notify(ChangeEvent{Paths: layer.DiffMaps(before, c.layers.Merge())})
	return nil
}

// SetDocument replaces the overrides of one document.
func (c *Config) SetDocument(doc string, data map[string]any) error {
	l := layer.NewLayerWithData("doc:"+doc, layer.SourceDocument, normalizeKeys(data))
	if _, err := Decode(c.layers.MergeWith(l)); err != nil {
		return err
	}

	c.mu.Lock()
	var before map[string]any
	if prev, ok := c.docs[doc]; ok {
		before = prev.Data
	}
	c.docs[doc] = l
	c.mu.Unlock()

	c.notify(ChangeEvent{Document: doc, Paths: layer.DiffMaps(before, l.Data)})
	return nil
}

// SetDocumentValue sets one override of a document.
func (c *Config) SetDocumentValue(doc, path string, value any) error {
	data := make(map[string]any)
	c.mu.RLock()
	if prev, ok := c.docs[doc]; ok {
		data = prev.Clone().Data
	}
	c.mu.RUnlock()

	layer.SetByPath(data, path, value)
	return c.SetDocument(doc, data)
}

// ClearDocument drops the overrides of a document.
func (c *Config) ClearDocument(doc string) {
	c.mu.Lock()
	prev, ok := c.docs[doc]
	delete(c.docs, doc)
	c.mu.Unlock()

	if ok {
		c.notify(ChangeEvent{Document: doc, Paths: layer.DiffMaps(prev.Data, nil)})
	}
}

// Settings returns the effective settings for a document with call-level
// overrides on top. doc may be empty and call may be nil.
func (c *Config) Settings(doc string, call map[string]any) (Settings, error) {
	var extra []*layer.Layer
	c.mu.RLock()
	if l, ok := c.docs[doc]; ok {
		extra = append(extra, l)
	}
	c.mu.RUnlock()
	if len(call) > 0 {
		extra = append(extra, layer.NewLayerWithData("call", layer.SourceCall, normalizeKeys(call)))
	}
	return Decode(c.layers.MergeWith(extra...))
}

// Origin returns the name of the layer providing a global setting.
func (c *Config) Origin(path string) (string, bool) {
	_, name, ok := c.layers.Get(path)
	return name, ok
}

// OnChange registers a change handler. Handlers may run on any goroutine.
func (c *Config) OnChange(h ChangeHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, h)
}

func (c *Config) notify(ev ChangeEvent) {
	if len(ev.Paths) == 0 {
		return
	}
	slices.Sort(ev.Paths)

	c.mu.RLock()
	handlers := slices.Clone(c.handlers)
	c.mu.RUnlock()

	c.logger.Debug("config changed", zap.String("doc", ev.Document), zap.Strings("paths", ev.Paths))
	for _, h := range handlers {
		h(ev)
	}
}

// Watch reloads loaded files when they change until ctx is done.
// A file that fails to load keeps its previous values.
func (c *Config) Watch(ctx context.Context, opts ...watcher.Option) error {
	w, err := watcher.New(append([]watcher.Option{watcher.WithLogger(c.logger)}, opts...)...)
	if err != nil {
		return err
	}
	for _, f := range c.Files() {
		if err := w.Add(f); err != nil {
			_ = w.Close()
			return fmt.Errorf("watching %s: %w", f, err)
		}
	}

	w.OnChange(func(ev watcher.Event) {
		if ev.Op == watcher.OpRemove || ev.Op == watcher.OpRename {
			c.logger.Warn("config file removed, keeping values", zap.String("path", ev.Path))
			return
		}
		if err := c.LoadFile(ev.Path); err != nil {
			c.logger.Warn("config reload failed", zap.String("path", ev.Path), zap.Error(err))
		}
	})

	go func() {
		<-ctx.Done()
		_ = w.Close()
	}()
	return nil
}

// normalizeKeys expands dotted keys into nested maps.
func normalizeKeys(data map[string]any) map[string]any {
	return layer.UnflattenMap(layer.FlattenMap(data))
}
