// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nmf

import (
	"github.com/born-ml/tnmf/internal/backend"
	"github.com/born-ml/tnmf/internal/conv"
	"github.com/born-ml/tnmf/internal/nmf"
	"github.com/born-ml/tnmf/internal/tensor"
	"github.com/born-ml/tnmf/internal/transform"
)

// Engine owns the tensors of one factorization.
type Engine = nmf.Engine

// Config holds the parameters of a factorization.
//
// The zero Config has no sparsity and no refit pass; start from
// DefaultConfig() for a sparse, refitted factorization.
type Config = nmf.Config

// Defaults applied to zero-valued Config fields.
const (
	DefaultNumAtoms        = nmf.DefaultNumAtoms
	DefaultNumIterations   = nmf.DefaultNumIterations
	DefaultRefitIterations = nmf.DefaultRefitIterations
	DefaultLogInterval     = nmf.DefaultLogInterval
)

// Progress describes the engine after one iteration.
type Progress = nmf.Progress

// State is the lifecycle state of an Engine.
type State = nmf.State

// Engine states.
const (
	Uninitialized = nmf.Uninitialized
	Initialized   = nmf.Initialized
	Iterating     = nmf.Iterating
	Refitting     = nmf.Refitting
	Done          = nmf.Done
)

// Variant supplies the placement policy of a factorization.
type Variant = nmf.Variant

// Sparse is classical sparse NMF (one placement per atom).
type Sparse = nmf.Sparse

// ShiftInvariant places atoms at every shift.
type ShiftInvariant = nmf.ShiftInvariant

// Padding selects the placement convention.
type Padding = conv.Padding

// Placement conventions.
const (
	// Full keeps placements where the atom lies inside the signal.
	Full = conv.Full
	// Valid keeps every placement overlapping the signal.
	Valid = conv.Valid
)

// BackendKind selects the gradient backend.
type BackendKind = backend.Kind

// Gradient backends.
const (
	Contraction = backend.Contraction
	Convolution = backend.Convolution
)

// Layout describes the tensor shapes of one factorization problem.
type Layout = backend.Layout

// TransformSet is an ordered sequence of placement transforms.
type TransformSet = transform.Set

// Errors.
var (
	ErrInvalidConfig      = nmf.ErrInvalidConfig
	ErrInvalidInput       = nmf.ErrInvalidInput
	ErrNotInitialized     = nmf.ErrNotInitialized
	ErrStop               = nmf.ErrStop
	ErrNotImplemented     = nmf.ErrNotImplemented
	ErrUnsupportedPadding = conv.ErrUnsupportedPadding
	ErrUnknownBackend     = backend.ErrUnknownKind
)

// DefaultConfig returns the configuration of a sparse, refitted
// factorization with the default sizes.
func DefaultConfig() Config {
	return nmf.DefaultConfig()
}

// New creates an engine for the given variant.
func New(variant Variant, cfg Config) (*Engine, error) {
	return nmf.New(variant, cfg)
}

// NewSparse creates an engine for classical sparse NMF.
func NewSparse(cfg Config) (*Engine, error) {
	return nmf.NewSparse(cfg)
}

// NewShiftInvariant creates an engine for shift-invariant NMF.
func NewShiftInvariant(cfg Config) (*Engine, error) {
	return nmf.NewShiftInvariant(cfg)
}

// ParsePadding parses "full" or "valid".
func ParsePadding(s string) (Padding, error) {
	return conv.ParsePadding(s)
}

// ParseBackend parses "contraction" or "convolution".
func ParseBackend(s string) (BackendKind, error) {
	return backend.ParseKind(s)
}

// PlacementCount returns the number of placements of an atom within a
// sample.
func PlacementCount(sample, atom tensor.Shape, padding Padding) (int, error) {
	return nmf.PlacementCount(sample, atom, padding)
}
