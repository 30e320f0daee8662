// Package main provides the tnmf command line tool.
//
// Usage:
//
//	tnmf version
//	tnmf fit -input signals.csv -atom 16 -atoms 4 -out results/
//
// The input CSV holds one signal per row. fit writes the dictionary to
// W.csv (one atom per row) and the activations to H.csv (one row per
// sample and atom).
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/born-ml/tnmf/nmf"
	"github.com/born-ml/tnmf/tensor"
	"github.com/dustin/go-humanize"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("tnmf %s\n", version)
	case "fit":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := runFit(ctx, os.Args[2:], os.Stdout); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return
			}
			log.Fatal(err)
		}
	default:
		usage(os.Stderr)
		os.Exit(2)
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "tnmf %s - transform-invariant non-negative matrix factorization\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  version    Show version")
	fmt.Fprintln(w, "  fit        Factorize the signals of a CSV file (tnmf fit -h for flags)")
}

// runFit parses the fit flags, runs the factorization and writes the results.
func runFit(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("fit", flag.ContinueOnError)
	input := fs.String("input", "", "CSV file with one signal per row (required)")
	outDir := fs.String("out", ".", "Directory for W.csv and H.csv")
	variant := fs.String("variant", "shift", "Factorization variant: shift or sparse")
	atom := fs.Int("atom", 0, "Atom length (required for -variant shift)")
	atoms := fs.Int("atoms", nmf.DefaultNumAtoms, "Number of atoms")
	iterations := fs.Int("iter", nmf.DefaultNumIterations, "Main loop iterations")
	refitIterations := fs.Int("refit-iter", nmf.DefaultRefitIterations, "Refit iterations")
	sparsity := fs.Float64("sparsity", 0.1, "Sparsity weight on the activations")
	refit := fs.Bool("refit", true, "Re-estimate activations without sparsity after the main loop")
	eps := fs.Float64("eps", 1e-9, "Denominator stabilizer")
	backendName := fs.String("backend", "contraction", "Gradient backend: contraction or convolution")
	paddingName := fs.String("padding", "full", "Placement convention: full or valid")
	seed := fs.Int64("seed", 0, "Random seed")
	workers := fs.Int("workers", 0, "Worker goroutines (0 = one per CPU)")
	verbose := fs.Bool("v", false, "Log progress")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return errors.New("fit: -input is required")
	}

	kind, err := nmf.ParseBackend(*backendName)
	if err != nil {
		return err
	}
	padding, err := nmf.ParsePadding(*paddingName)
	if err != nil {
		return err
	}

	cfg := nmf.Config{
		NumAtoms:        *atoms,
		SparsityH:       *sparsity,
		RefitH:          *refit,
		NumIterations:   *iterations,
		RefitIterations: *refitIterations,
		Eps:             *eps,
		Padding:         padding,
		Backend:         kind,
		Seed:            *seed,
		Workers:         *workers,
	}
	if *atom > 0 {
		cfg.AtomShape = tensor.Shape{*atom}
	}
	if *verbose {
		cfg.Logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	var e *nmf.Engine
	switch *variant {
	case "shift":
		e, err = nmf.NewShiftInvariant(cfg)
	case "sparse":
		e, err = nmf.NewSparse(cfg)
	default:
		return fmt.Errorf("fit: unknown variant %q", *variant)
	}
	if err != nil {
		return err
	}

	v, err := loadSignals(*input)
	if err != nil {
		return err
	}
	if err := e.Fit(ctx, v); err != nil {
		return err
	}

	wPath := filepath.Join(*outDir, "W.csv")
	hPath := filepath.Join(*outDir, "H.csv")
	if err := writeRows(wPath, e.W()); err != nil {
		return err
	}
	if err := writeRows(hPath, e.H()); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "variant:    %s (%s backend, %s padding)\n", *variant, e.BackendName(), padding)
	fmt.Fprintf(stdout, "signals:    %v\n", v.Shape())
	layout := e.Layout()
	t := layout.Plan.NumPositions()
	fmt.Fprintf(stdout, "transforms: %d (%s dense)\n", t, humanize.Bytes(denseTransformBytes(layout)))
	fmt.Fprintf(stdout, "iterations: %d + %d refit\n", e.Iterations(), e.RefitIterations())
	fmt.Fprintf(stdout, "energy:     %.6g\n", e.Energy())
	fmt.Fprintf(stdout, "wrote %s, %s\n", wPath, hPath)
	return nil
}

// denseTransformBytes returns the size of the [t, d, h] float64 transform
// tensor of a layout without building it.
func denseTransformBytes(layout nmf.Layout) uint64 {
	return uint64(layout.Plan.NumPositions()) * uint64(layout.SignalDim()) * uint64(layout.AtomDim()) * 8
}

func loadSignals(path string) (*tensor.Tensor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := readSignals(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tensor.FromSignals(rows)
}

// readSignals parses one signal per CSV record. Lines starting with '#' are
// comments.
func readSignals(r io.Reader) ([][]float64, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	var rows [][]float64
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make([]float64, len(record))
		for i, field := range record {
			x, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %d: %w", len(rows)+1, i+1, err)
			}
			row[i] = x
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, errors.New("no signals")
	}
	return rows, nil
}

// writeRows writes t as a CSV with one row per index of its first two axes.
func writeRows(path string, t *tensor.Tensor) error {
	shape := t.Shape()
	rows := shape[0] * shape[1]
	cols := t.NumElements() / rows

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(f)
	data := t.Data()
	record := make([]string, cols)
	for r := 0; r < rows; r++ {
		for c := range record {
			record[c] = strconv.FormatFloat(data[r*cols+c], 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			f.Close()
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
