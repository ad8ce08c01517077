// SPDX-License-Identifier: MIT

// Package matrix: functional configuration of the numeric policy.
// This file defines:
//   - Option / Options (functional options with internal state),
//   - documented defaults (constants),
//   - WithX constructors with strong validation (panic on nonsensical values),
//   - gatherOptions helper (internal) that applies setters over the defaults.
//
// Design goals:
//   - Deterministic behavior: no global state, no implicit randomness.
//   - No dead switches: each flag impacts behavior and is covered by tests.
//   - Safe by construction: panic only on invalid parameters (programmer error).
//
// Notes:
//   - Pivot tolerance: the default is exact-zero comparison. A pivot is
//     degenerate only when every candidate in its column is exactly 0.
//     WithPivotTolerance(eps) widens that to |pivot| <= eps, which absorbs
//     floating-point residue such as 1e-17 left behind by earlier eliminations.
//   - validateNaNInf controls whether NewDenseFromRows/Set reject NaN/±Inf.
//     With validation off, non-finite values flow through the kernels and
//     surface as NaN in the output.
package matrix

import "math"

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultPivotTolerance is the magnitude at or below which a pivot
	// candidate counts as zero. Zero means exact comparison.
	DefaultPivotTolerance = 0.0

	// DefaultValidateNaNInf toggles strict finite-value validation on ingestion and Set.
	DefaultValidateNaNInf = true
)

const panicToleranceInvalid = "matrix: WithPivotTolerance: eps must be finite, non-negative"

// Option mutates Options; pass any number to the kernels and facades.
type Option func(*Options)

// Options is the resolved numeric policy for one call.
type Options struct {
	eps            float64 // >= 0; DefaultPivotTolerance
	validateNaNInf bool    // DefaultValidateNaNInf
}

// WithPivotTolerance treats pivot candidates with |v| <= eps as zero.
// Panics if eps is negative, NaN or ±Inf (programmer error).
// Complexity: O(1).
func WithPivotTolerance(eps float64) Option {
	if math.IsNaN(eps) || math.IsInf(eps, 0) || eps < 0 {
		panic(panicToleranceInvalid)
	}

	return func(o *Options) { o.eps = eps }
}

// WithValidateNaNInf enables finite-only ingestion (the default).
func WithValidateNaNInf() Option {
	return func(o *Options) { o.validateNaNInf = true }
}

// WithNoValidateNaNInf lets NaN/±Inf into the matrix; they propagate to the result.
func WithNoValidateNaNInf() Option {
	return func(o *Options) { o.validateNaNInf = false }
}

// PivotTolerance reports the effective pivot tolerance.
func (o Options) PivotTolerance() float64 { return o.eps }

// ValidateNaNInf reports whether finite-only ingestion is on.
func (o Options) ValidateNaNInf() bool { return o.validateNaNInf }

// NewOptions resolves a sequence of setters over the defaults.
// Exposed for callers that want to inspect the effective policy.
func NewOptions(opts ...Option) Options {
	return gatherOptions(opts...)
}

// gatherOptions applies user-provided Option setters on top of defaults.
// Setters run in order; last-writer-wins.
// Complexity: O(k) for k=len(user).
func gatherOptions(user ...Option) Options {
	o := Options{
		eps:            DefaultPivotTolerance,
		validateNaNInf: DefaultValidateNaNInf,
	}
	for _, set := range user {
		if set != nil {
			set(&o)
		}
	}

	return o
}
