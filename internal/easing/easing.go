package easing

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidSpec is wrapped by all spec validation errors.
var ErrInvalidSpec = errors.New("invalid animation spec")

// Func returns the wait in milliseconds before step, 1 <= step <= total.
type Func func(step, total int) float64

// Shape is the timing family.
type Shape uint8

const (
	// ShapeNone never waits.
	ShapeNone Shape = iota
	// ShapePower waits proportionally to k^Power.
	ShapePower
	// ShapeGeometric waits grow geometrically.
	ShapeGeometric
)

// Easing is the direction of acceleration.
type Easing uint8

const (
	// In accelerates: long waits first.
	In Easing = iota
	// Out decelerates: short waits first.
	Out
	// InOut is slow at both ends.
	InOut
)

// String returns the configuration name.
func (e Easing) String() string {
	switch e {
	case In:
		return "in"
	case Out:
		return "out"
	case InOut:
		return "in-out"
	default:
		return "unknown"
	}
}

// Unit tells how Duration is interpreted.
type Unit uint8

const (
	// PerStep makes Duration the mean wait per step.
	PerStep Unit = iota
	// Total makes Duration the whole animation time.
	Total
)

// String returns the configuration name.
func (u Unit) String() string {
	switch u {
	case PerStep:
		return "step"
	case Total:
		return "total"
	default:
		return "unknown"
	}
}

// MaxPower is the largest supported power for ShapePower.
const MaxPower = 3

// Spec configures a timing profile.
type Spec struct {
	Shape    Shape
	Power    int
	Easing   Easing
	Duration float64
	Unit     Unit
}

// ConfigError describes a rejected Spec field.
type ConfigError struct {
	Field string
	Value any
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %v", ErrInvalidSpec, e.Field, e.Value)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidSpec
}

// Validate checks the spec without building a profile.
func (s Spec) Validate() error {
	switch s.Shape {
	case ShapeNone, ShapeGeometric:
	case ShapePower:
		if s.Power < 0 || s.Power > MaxPower {
			return &ConfigError{Field: "power", Value: s.Power}
		}
	default:
		return &ConfigError{Field: "shape", Value: s.Shape}
	}
	if s.Easing > InOut {
		return &ConfigError{Field: "easing", Value: s.Easing}
	}
	if s.Unit > Total {
		return &ConfigError{Field: "unit", Value: s.Unit}
	}
	if math.IsNaN(s.Duration) || math.IsInf(s.Duration, 0) || s.Duration < 0 {
		return &ConfigError{Field: "duration", Value: s.Duration}
	}
	return nil
}

// Make builds the timing function for spec.
func Make(spec Spec) (Func, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	switch spec.Shape {
	case ShapePower:
		return arithmeticPowers(spec), nil
	case ShapeGeometric:
		return geometricPowers(spec), nil
	default:
		return None(), nil
	}
}

// None returns a profile that never waits.
func None() Func {
	return func(int, int) float64 { return 0 }
}

// Linear waits the same time before every step.
func Linear(e Easing, duration float64, unit Unit) Spec {
	return Spec{Shape: ShapePower, Power: 0, Easing: e, Duration: duration, Unit: unit}
}

// Quadratic waits proportionally to the step index.
func Quadratic(e Easing, duration float64, unit Unit) Spec {
	return Spec{Shape: ShapePower, Power: 1, Easing: e, Duration: duration, Unit: unit}
}

// Cubic waits proportionally to the squared step index.
func Cubic(e Easing, duration float64, unit Unit) Spec {
	return Spec{Shape: ShapePower, Power: 2, Easing: e, Duration: duration, Unit: unit}
}

// Quartic waits proportionally to the cubed step index.
func Quartic(e Easing, duration float64, unit Unit) Spec {
	return Spec{Shape: ShapePower, Power: 3, Easing: e, Duration: duration, Unit: unit}
}

// Exponential waits grow geometrically.
func Exponential(e Easing, duration float64, unit Unit) Spec {
	return Spec{Shape: ShapeGeometric, Easing: e, Duration: duration, Unit: unit}
}

// ParseSpec builds a Spec from configuration names.
// Shapes are none, linear, quadratic, cubic, quartic and exponential.
func ParseSpec(shape, easing, unit string, duration float64) (Spec, error) {
	e, err := ParseEasing(easing)
	if err != nil {
		return Spec{}, err
	}
	u, err := ParseUnit(unit)
	if err != nil {
		return Spec{}, err
	}

	var spec Spec
	switch strings.ToLower(strings.TrimSpace(shape)) {
	case "none":
		spec = Spec{Shape: ShapeNone, Easing: e, Duration: duration, Unit: u}
	case "linear":
		spec = Linear(e, duration, u)
	case "quadratic":
		spec = Quadratic(e, duration, u)
	case "cubic":
		spec = Cubic(e, duration, u)
	case "quartic":
		spec = Quartic(e, duration, u)
	case "exponential":
		spec = Exponential(e, duration, u)
	default:
		return Spec{}, &ConfigError{Field: "shape", Value: shape}
	}
	return spec, spec.Validate()
}

// ParseEasing parses in, out or in-out.
func ParseEasing(s string) (Easing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in":
		return In, nil
	case "out":
		return Out, nil
	case "in-out", "inout", "in_out":
		return InOut, nil
	default:
		return In, &ConfigError{Field: "easing", Value: s}
	}
}

// ParseUnit parses step or total.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "step":
		return PerStep, nil
	case "total":
		return Total, nil
	default:
		return PerStep, &ConfigError{Field: "unit", Value: s}
	}
}

// Schedule returns the waits before steps 1..total.
func Schedule(f Func, total int) []float64 {
	if total <= 0 {
		return nil
	}
	waits := make([]float64, total)
	for s := 1; s <= total; s++ {
		waits[s-1] = f(s, total)
	}
	return waits
}

// totalTime converts the configured duration into the whole animation time.
func totalTime(spec Spec, n int) float64 {
	if spec.Unit == Total {
		return spec.Duration
	}
	return spec.Duration * float64(n)
}
