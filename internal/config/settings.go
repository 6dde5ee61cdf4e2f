package config

import (
	"errors"
	"time"

	"github.com/dshills/indentscope/internal/easing"
	"github.com/dshills/indentscope/internal/scope"
	"github.com/go-viper/mapstructure/v2"
	"github.com/rivo/uniseg"
)

// Settings is the decoded effective configuration.
type Settings struct {
	// Symbol is the marker drawn in the scope column.
	Symbol string `mapstructure:"symbol"`

	// Disable turns the engine off.
	Disable bool `mapstructure:"disable"`

	Draw    DrawSettings   `mapstructure:"draw"`
	Options OptionSettings `mapstructure:"options"`
}

// DrawSettings control when and how a scope is drawn.
type DrawSettings struct {
	// Delay is the wait in milliseconds before a reveal starts.
	Delay int `mapstructure:"delay"`

	// Priority is the marker priority.
	Priority int `mapstructure:"priority"`

	// SkipIncomplete suppresses scopes truncated by options.n_lines.
	SkipIncomplete bool `mapstructure:"skip_incomplete"`

	Animation AnimationSettings `mapstructure:"animation"`
}

// AnimationSettings name an easing profile.
type AnimationSettings struct {
	Shape    string  `mapstructure:"shape"`
	Easing   string  `mapstructure:"easing"`
	Duration float64 `mapstructure:"duration"`
	Unit     string  `mapstructure:"unit"`
}

// OptionSettings control scope computation.
type OptionSettings struct {
	Border         string `mapstructure:"border"`
	IndentAtCursor bool   `mapstructure:"indent_at_cursor"`
	TryAsBorder    bool   `mapstructure:"try_as_border"`
	NLines         int    `mapstructure:"n_lines"`
}

// Defaults returns the builtin configuration map.
func Defaults() map[string]any {
	return map[string]any{
		"symbol":  "╎",
		"disable": false,
		"draw": map[string]any{
			"delay":           100,
			"priority":        2,
			"skip_incomplete": true,
			"animation": map[string]any{
				"shape":    "linear",
				"easing":   "in-out",
				"duration": 20.0,
				"unit":     "step",
			},
		},
		"options": map[string]any{
			"border":           "both",
			"indent_at_cursor": true,
			"try_as_border":    false,
			"n_lines":          scope.DefaultNLines,
		},
	}
}

// DefaultSettings returns the builtin settings.
func DefaultSettings() Settings {
	s, err := Decode(Defaults())
	if err != nil {
		panic(err)
	}
	return s
}

// Decode decodes a merged configuration map and validates the result.
// Unknown keys are rejected.
func Decode(data map[string]any) (Settings, error) {
	var s Settings
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &s,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Settings{}, err
	}
	if err := dec.Decode(data); err != nil {
		return Settings{}, &ValidationError{Message: err.Error()}
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks every setting.
func (s Settings) Validate() error {
	if uniseg.StringWidth(s.Symbol) != 1 {
		return &ValidationError{Path: "symbol", Message: "must be one display column wide", Value: s.Symbol}
	}
	if s.Draw.Delay < 0 {
		return &ValidationError{Path: "draw.delay", Message: "must not be negative", Value: s.Draw.Delay}
	}
	if _, err := s.AnimationSpec(); err != nil {
		var cerr *easing.ConfigError
		if errors.As(err, &cerr) {
			return &ValidationError{Path: "draw.animation." + cerr.Field, Message: "invalid", Value: cerr.Value}
		}
		return &ValidationError{Path: "draw.animation", Message: err.Error()}
	}
	if _, err := scope.ParseBorderPolicy(s.Options.Border); err != nil {
		return &ValidationError{Path: "options.border", Message: "must be both, top, bottom or none", Value: s.Options.Border}
	}
	return nil
}

// ScopeOptions returns the scope computation options.
func (s Settings) ScopeOptions() (scope.Options, error) {
	border, err := scope.ParseBorderPolicy(s.Options.Border)
	if err != nil {
		return scope.Options{}, err
	}
	return scope.Options{
		Border:         border,
		IndentAtCursor: s.Options.IndentAtCursor,
		TryAsBorder:    s.Options.TryAsBorder,
		NLines:         s.Options.NLines,
	}, nil
}

// AnimationSpec returns the configured easing spec.
func (s Settings) AnimationSpec() (easing.Spec, error) {
	a := s.Draw.Animation
	return easing.ParseSpec(a.Shape, a.Easing, a.Unit, a.Duration)
}

// Animation returns the configured timing function.
func (s Settings) Animation() (easing.Func, error) {
	spec, err := s.AnimationSpec()
	if err != nil {
		return nil, err
	}
	return easing.Make(spec)
}

// Delay returns draw.delay as a duration.
func (s Settings) Delay() time.Duration {
	return time.Duration(s.Draw.Delay) * time.Millisecond
}
