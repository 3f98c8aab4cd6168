// Package lut resamples curves and gradients into fixed-resolution lookup
// tables with O(1) interpolated evaluation.
//
// A table is immutable once built and may be read from any number of
// goroutines. Release marks it dead; evaluating a released table panics.
package lut

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/chewxy/math32"
	"github.com/gekko3d/particlemesh/meshrt/core"
)

const (
	// DefaultResolution is used for enabled lifetime curves.
	DefaultResolution = 256
	// MinResolution is the smallest valid table and what disabled curves use.
	MinResolution = 2
)

var ErrTooFewSamples = errors.New("lut: at least 2 samples required")

// LUT is a table of N samples of a function over [0,1].
type LUT[T any] struct {
	samples  []T
	last     int
	lerp     func(a, b T, r float32) T
	released atomic.Bool
}

func build[T any](n int, eval func(t float32) T, lerp func(a, b T, r float32) T) (*LUT[T], error) {
	if n < MinResolution {
		return nil, fmt.Errorf("%w (got %d)", ErrTooFewSamples, n)
	}
	step := 1 / float32(n-1)
	samples := make([]T, n)
	for i := range samples {
		samples[i] = eval(float32(i) * step)
	}
	// pin the end exactly; i*step can land a hair under 1
	samples[n-1] = eval(1)
	return &LUT[T]{samples: samples, last: n - 1, lerp: lerp}, nil
}

// NewCurve samples a scalar curve n times.
func NewCurve(c core.Curve, n int) (*LUT[float32], error) {
	return build(n, c.Evaluate, lerpFloat)
}

// NewGradient samples a color gradient n times.
func NewGradient(g core.Gradient, n int) (*LUT[core.Color32], error) {
	return build(n, g.Evaluate, core.Color32.Lerp)
}

func lerpFloat(a, b, r float32) float32 { return a + (b-a)*r }

// Evaluate looks up t, clamped to [0,1], interpolating between the two
// bracketing samples.
func (l *LUT[T]) Evaluate(t float32) T {
	if l.released.Load() {
		panic("lut: Evaluate called on a released table")
	}
	// also maps NaN to 0
	if !(t > 0) {
		t = 0
	} else if t > 1 {
		t = 1
	}
	fi := t * float32(l.last)
	f := math32.Floor(fi)
	i := int(f)
	if i >= l.last {
		return l.samples[l.last]
	}
	return l.lerp(l.samples[i], l.samples[i+1], fi-f)
}

// Len is the number of samples.
func (l *LUT[T]) Len() int { return len(l.samples) }

// Sample returns the i-th stored sample.
func (l *LUT[T]) Sample(i int) T { return l.samples[i] }

// Release drops the samples. Releasing twice panics.
func (l *LUT[T]) Release() {
	if !l.released.CompareAndSwap(false, true) {
		panic("lut: table released twice")
	}
	l.samples = nil
}

// Released reports whether Release has been called.
func (l *LUT[T]) Released() bool { return l.released.Load() }
