package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kbukum/graphx/dag"
	"github.com/kbukum/graphx/errors"
)

// stdinPath binds an input to standard input.
const stdinPath = "-"

type binding struct {
	name string
	path string
}

// parseBindings reads name=path flags. A bare path binds to fallback when
// the graph has exactly one input.
func parseBindings(args []string, fallback string) ([]binding, error) {
	seen := make(map[string]bool, len(args))
	out := make([]binding, 0, len(args))
	for _, arg := range args {
		name, path, ok := strings.Cut(arg, "=")
		if !ok {
			name, path = fallback, arg
		}
		if name == "" {
			return nil, errors.InvalidInput("input", fmt.Sprintf("%q: expected name=path", arg))
		}
		if path == "" {
			return nil, errors.InvalidInput("input", fmt.Sprintf("%q: empty path", arg))
		}
		if seen[name] {
			return nil, errors.InvalidInput("input", fmt.Sprintf("%q bound twice", name))
		}
		seen[name] = true
		out = append(out, binding{name: name, path: path})
	}
	return out, nil
}

// bindInputs checks every file concurrently and returns the graph inputs.
// At most one input may read standard input.
func bindInputs(ctx context.Context, args []string, fallback string, stdin io.Reader) (dag.Inputs, error) {
	bindings, err := parseBindings(args, fallback)
	if err != nil {
		return nil, err
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)
	stdinUsers := 0
	for _, b := range bindings {
		if b.path == stdinPath {
			stdinUsers++
			continue
		}
		g.Go(func() error { return checkFile(b) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if stdinUsers > 1 {
		return nil, errors.InvalidInput("input", "only one input can read standard input")
	}

	inputs := make(dag.Inputs, len(bindings))
	for _, b := range bindings {
		if b.path == stdinPath {
			inputs[b.name] = dag.Lines(stdin)
			continue
		}
		inputs[b.name] = dag.File(b.path)
	}
	return inputs, nil
}

func checkFile(b binding) error {
	f, err := os.Open(b.path)
	if err != nil {
		return errors.InvalidInput("input", fmt.Sprintf("%s: %v", b.name, err)).WithCause(err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return errors.InvalidInput("input", fmt.Sprintf("%s: %v", b.name, err)).WithCause(err)
	}
	if info.IsDir() {
		return errors.InvalidInput("input", fmt.Sprintf("%s: %s is a directory", b.name, b.path))
	}
	return nil
}
