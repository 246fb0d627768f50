package dag

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/graphx/errors"
	"github.com/kbukum/graphx/ops"
	"github.com/kbukum/graphx/record"
	"github.com/kbukum/graphx/validation"
)

// JobLoader loads job definitions by name.
type JobLoader interface {
	Load(name string) (*Job, error)
}

// FileJobLoader loads jobs from YAML files on disk.
type FileJobLoader struct {
	dirs []string
}

// NewFileJobLoader creates a loader that searches the given directories for job YAML files.
func NewFileJobLoader(dirs ...string) JobLoader {
	return &FileJobLoader{dirs: dirs}
}

// Load searches for {name}.yaml and {name}.yml in each directory, then in
// its subdirectories.
func (l *FileJobLoader) Load(name string) (*Job, error) {
	for _, dir := range l.dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, name+ext)
			if _, err := os.Stat(path); err == nil {
				return LoadJob(path)
			}

			matches, _ := filepath.Glob(filepath.Join(dir, "*", name+ext))
			if len(matches) > 0 {
				return LoadJob(matches[0])
			}
		}
	}
	return nil, fmt.Errorf("dag: job %q not found in %v", name, l.dirs)
}

// LoadJob reads a job definition from a YAML file.
func LoadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dag: reading job: %w", err)
	}
	job, err := ParseJob(data)
	if err != nil {
		return nil, fmt.Errorf("dag: parsing %s: %w", path, err)
	}
	return job, nil
}

// ParseJob decodes a job definition. Unknown fields are rejected.
func ParseJob(data []byte) (*Job, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var job Job
	if err := dec.Decode(&job); err != nil {
		return nil, errors.Validation(err.Error()).WithCause(err)
	}
	return &job, nil
}

// BuildJob turns a job definition into a graph and returns the chain named
// by job.Output. Functions are looked up in registry. References between
// chains that form a cycle fail with CYCLIC_GRAPH.
func BuildJob(job *Job, registry *Registry) (Chain, error) {
	if err := validateJob(job); err != nil {
		return Chain{}, err
	}

	defs := make(map[string]NodeDef, len(job.Nodes))
	names := make([]string, 0, len(job.Nodes))
	for _, nd := range job.Nodes {
		defs[nd.Name] = nd
		names = append(names, nd.Name)
	}

	var edges []Edge[string]
	for i, nd := range job.Nodes {
		type ref struct{ field, name string }
		var refs []ref
		if nd.From != "" {
			refs = append(refs, ref{fmt.Sprintf("nodes[%d].from", i), nd.From})
		}
		for j, op := range nd.Ops {
			if op.Join != "" {
				refs = append(refs, ref{fmt.Sprintf("nodes[%d].ops[%d].join", i, j), op.Join})
			}
		}
		for _, r := range refs {
			if _, ok := defs[r.name]; !ok {
				return Chain{}, errors.InvalidInput(r.field, fmt.Sprintf("unknown chain %q", r.name))
			}
			edges = append(edges, Edge[string]{From: r.name, To: nd.Name})
		}
	}

	levels, err := BuildLevels(names, edges)
	if err != nil {
		return Chain{}, err
	}

	g := NewGraph()
	chains := make(map[string]Chain, len(names))
	for _, level := range levels {
		for _, name := range level {
			c, err := buildNode(g, defs[name], chains, registry)
			if err != nil {
				return Chain{}, err
			}
			chains[name] = c
		}
	}
	return chains[job.Output], nil
}

func buildNode(g *Graph, nd NodeDef, chains map[string]Chain, registry *Registry) (Chain, error) {
	var c Chain
	if nd.Input != "" {
		c = g.Input(nd.Input)
	} else {
		c = g.From(chains[nd.From])
	}

	for _, op := range nd.Ops {
		switch op.kind() {
		case "map":
			fn, ok := registry.Mapper(op.Map)
			if !ok {
				return Chain{}, errors.UnknownFunction(FuncMapper, op.Map)
			}
			c = c.AddNamedMap(op.Map, fn)
		case "sort":
			c = c.AddSort(op.Sort, op.Reverse)
		case "fold":
			fn, ok := registry.Folder(op.Fold)
			if !ok {
				return Chain{}, errors.UnknownFunction(FuncFolder, op.Fold)
			}
			var initial *record.Record
			if op.Initial != nil {
				r := record.FromMap(op.Initial)
				initial = &r
			}
			c = c.AddNamedFold(op.Fold, fn, initial)
		case "reduce":
			fn, ok := registry.Reducer(op.Reduce)
			if !ok {
				return Chain{}, errors.UnknownFunction(FuncReducer, op.Reduce)
			}
			c = c.AddNamedReduce(op.Reduce, fn, op.Keys)
		case "join":
			strategy := ops.Inner
			if op.Strategy != "" {
				st, err := ops.ParseStrategy(op.Strategy)
				if err != nil {
					return Chain{}, err
				}
				strategy = st
			}
			c = c.AddJoin(chains[op.Join], op.Keys, strategy)
		}
	}
	return c.Named(nd.Name), nil
}

// validateJob checks the struct tags, then the rules spanning fields.
func validateJob(job *Job) error {
	if job == nil {
		return errors.Validation("job is nil")
	}
	if err := validation.Validate(job); err != nil {
		return err
	}

	v := validation.New()
	seen := make(map[string]bool, len(job.Nodes))
	for i, nd := range job.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)
		v.Custom(!seen[nd.Name], field+".name", fmt.Sprintf("duplicate chain name %q", nd.Name))
		seen[nd.Name] = true
		v.Exclusive(field, map[string]string{"input": nd.Input, "from": nd.From})

		for j, op := range nd.Ops {
			opField := fmt.Sprintf("%s.ops[%d]", field, j)
			v.Exclusive(opField, op.types())
			if op.Reduce != "" {
				v.NotEmpty(opField+".keys", len(op.Keys))
			}
		}
	}
	v.Custom(seen[job.Output], "output", fmt.Sprintf("unknown chain %q", job.Output))
	return v.Err()
}
