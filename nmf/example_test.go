// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nmf_test

import (
	"context"
	"fmt"
	"log"

	"github.com/born-ml/tnmf/nmf"
	"github.com/born-ml/tnmf/tensor"
)

func ExampleNewShiftInvariant() {
	v, err := tensor.FromSignals([][]float64{
		{0, 1, 3, 2, 0, 0, 0, 1, 3, 2},
		{1, 3, 2, 0, 0, 1, 3, 2, 0, 0},
		{0, 0, 0, 1, 3, 2, 0, 0, 0, 0},
	})
	if err != nil {
		log.Fatal(err)
	}

	cfg := nmf.DefaultConfig()
	cfg.AtomShape = tensor.Shape{3}
	cfg.NumAtoms = 2
	cfg.NumIterations = 50

	e, err := nmf.NewShiftInvariant(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if err := e.Fit(context.Background(), v); err != nil {
		log.Fatal(err)
	}

	set, err := e.Transforms()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("state:", e.State())
	fmt.Println("dictionary:", e.W().Shape())
	fmt.Println("activations:", e.H().Shape())
	fmt.Println("transforms:", set.Len())
	// Output:
	// state: done
	// dictionary: (2, 1, 3)
	// activations: (3, 2, 8)
	// transforms: 8
}

func ExamplePlacementCount() {
	full, _ := nmf.PlacementCount(tensor.Shape{5}, tensor.Shape{3}, nmf.Full)
	valid, _ := nmf.PlacementCount(tensor.Shape{5}, tensor.Shape{3}, nmf.Valid)
	fmt.Println(full, valid)
	// Output: 3 7
}
