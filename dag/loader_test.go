package dag

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/graphx/errors"
	"github.com/kbukum/graphx/record"
)

func testRegistry() *Registry {
	reg := NewRegistry()
	reg.RegisterMapper("split_text", splitText)
	reg.RegisterMapper("identity", identity)
	reg.RegisterReducer("count_rows", countRows)
	reg.RegisterFolder("sum_count", func(state, rec record.Record) (record.Record, error) {
		total, _ := state.GetInt("count")
		n, _ := rec.GetInt("count")
		state.Set("count", total+n)
		return state, nil
	})
	return reg
}

const wordCountJob = `
name: word-count
output: totals
nodes:
  - name: counts
    input: docs
    ops:
      - map: split_text
      - sort: [text]
      - reduce: count_rows
        keys: [text]
  - name: totals
    from: counts
    ops:
      - fold: sum_count
        initial: {count: 0}
`

func TestParseJob(t *testing.T) {
	job, err := ParseJob([]byte(wordCountJob))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Name != "word-count" || job.Output != "totals" || len(job.Nodes) != 2 {
		t.Fatalf("unexpected job: %+v", job)
	}
	if diff := cmp.Diff([]string{"text"}, job.Nodes[0].Ops[2].Keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestParseJob_UnknownField(t *testing.T) {
	_, err := ParseJob([]byte("name: x\noutput: y\nnodes: []\nmode: batch\n"))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestBuildJob_Runs(t *testing.T) {
	job, err := ParseJob([]byte(wordCountJob))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := BuildJob(job, testRegistry())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Name() != "totals" {
		t.Fatalf("expected the output chain, got %q", out.Name())
	}

	res := mustRun(t, quietEngine(), out, Inputs{
		"docs": Lines(strings.NewReader("{\"text\":\"a b a\"}\n{\"text\":\"c\"}\n")),
	})
	assertRows(t, record.Table{record.New("count", 4)}, res.Table)
	if _, ok := res.Node("counts"); !ok {
		t.Fatalf("expected counts in the node results, got %+v", res.Nodes)
	}
}

func TestBuildJob_Join(t *testing.T) {
	job := &Job{
		Name:   "join",
		Output: "joined",
		Nodes: []NodeDef{
			{Name: "joined", Input: "users", Ops: []OpDef{
				{Sort: []string{"id"}},
				{Join: "docs", Keys: []string{"id"}, Strategy: "Outer"},
			}},
			{Name: "docs", Input: "docs", Ops: []OpDef{{Sort: []string{"id"}}}},
		},
	}
	out, err := BuildJob(job, testRegistry())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := mustRun(t, quietEngine(), out, Inputs{
		"users": Table(record.Table{record.New("id", 1, "name", "a")}),
		"docs":  Table(record.Table{record.New("id", 2, "v", "x")}),
	})
	want := record.Table{
		record.New("id", 1, "name", "a", "v", nil),
		record.New("id", 2, "name", nil, "v", "x"),
	}
	assertRows(t, want, res.Table)
}

func TestBuildJob_Errors(t *testing.T) {
	node := func(name, input, from string, ops ...OpDef) NodeDef {
		return NodeDef{Name: name, Input: input, From: from, Ops: ops}
	}

	cases := []struct {
		name string
		job  *Job
		code errors.ErrorCode
		msg  string
	}{
		{
			name: "nil job",
			job:  nil,
			code: errors.ErrCodeInvalidInput,
		},
		{
			name: "missing name",
			job:  &Job{Output: "a", Nodes: []NodeDef{node("a", "in", "")}},
			code: errors.ErrCodeInvalidInput,
			msg:  "name: is required",
		},
		{
			name: "no nodes",
			job:  &Job{Name: "j", Output: "a"},
			code: errors.ErrCodeInvalidInput,
			msg:  "nodes: must have at least 1 items",
		},
		{
			name: "input and from",
			job:  &Job{Name: "j", Output: "b", Nodes: []NodeDef{node("a", "in", ""), node("b", "in", "a")}},
			code: errors.ErrCodeInvalidInput,
			msg:  "nodes[1]: sets more than one of: from, input",
		},
		{
			name: "two operation types",
			job:  &Job{Name: "j", Output: "a", Nodes: []NodeDef{node("a", "in", "", OpDef{Map: "identity", Sort: []string{"k"}})}},
			code: errors.ErrCodeInvalidInput,
			msg:  "nodes[0].ops[0]: sets more than one of: map, sort",
		},
		{
			name: "reduce without keys",
			job:  &Job{Name: "j", Output: "a", Nodes: []NodeDef{node("a", "in", "", OpDef{Reduce: "count_rows"})}},
			code: errors.ErrCodeInvalidInput,
			msg:  "nodes[0].ops[0].keys: must not be empty",
		},
		{
			name: "duplicate names",
			job:  &Job{Name: "j", Output: "a", Nodes: []NodeDef{node("a", "in", ""), node("a", "in", "")}},
			code: errors.ErrCodeInvalidInput,
			msg:  "duplicate chain name",
		},
		{
			name: "unknown output",
			job:  &Job{Name: "j", Output: "zzz", Nodes: []NodeDef{node("a", "in", "")}},
			code: errors.ErrCodeInvalidInput,
			msg:  "output: unknown chain",
		},
		{
			name: "unknown reference",
			job:  &Job{Name: "j", Output: "a", Nodes: []NodeDef{node("a", "", "zzz")}},
			code: errors.ErrCodeInvalidInput,
			msg:  "unknown chain \"zzz\"",
		},
		{
			name: "unknown function",
			job:  &Job{Name: "j", Output: "a", Nodes: []NodeDef{node("a", "in", "", OpDef{Map: "nope"})}},
			code: errors.ErrCodeUnknownFunction,
		},
		{
			name: "unknown strategy",
			job: &Job{Name: "j", Output: "a", Nodes: []NodeDef{
				node("a", "in", "", OpDef{Join: "b", Keys: []string{"k"}, Strategy: "cross"}),
				node("b", "in", ""),
			}},
			code: errors.ErrCodeInvalidStrategy,
		},
		{
			name: "from cycle",
			job: &Job{Name: "j", Output: "a", Nodes: []NodeDef{
				node("a", "", "b"),
				node("b", "", "a"),
			}},
			code: errors.ErrCodeCyclicGraph,
		},
		{
			name: "join cycle",
			job: &Job{Name: "j", Output: "c", Nodes: []NodeDef{
				node("a", "", "c"),
				node("b", "in", "", OpDef{Join: "a", Keys: []string{"k"}}),
				node("c", "", "b"),
			}},
			code: errors.ErrCodeCyclicGraph,
		},
		{
			name: "self join",
			job:  &Job{Name: "j", Output: "a", Nodes: []NodeDef{node("a", "in", "", OpDef{Join: "a"})}},
			code: errors.ErrCodeCyclicGraph,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildJob(tc.job, testRegistry())
			if !errors.Is(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
			if tc.msg != "" && !strings.Contains(err.Error(), tc.msg) {
				t.Fatalf("expected message containing %q, got %q", tc.msg, err.Error())
			}
		})
	}
}

func TestLoadJob_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "word-count.yaml")
	if err := os.WriteFile(path, []byte(wordCountJob), 0o644); err != nil {
		t.Fatal(err)
	}
	job, err := LoadJob(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Name != "word-count" {
		t.Fatalf("unexpected job name %q", job.Name)
	}

	if _, err := LoadJob(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestFileJobLoader(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "jobs")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "word-count.yml"), []byte(wordCountJob), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewFileJobLoader(dir)
	job, err := loader.Load("word-count")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Output != "totals" {
		t.Fatalf("unexpected output %q", job.Output)
	}
	if _, err := loader.Load("missing"); err == nil {
		t.Fatal("expected error for an unknown job")
	}
}

func TestRegistry_List(t *testing.T) {
	reg := testRegistry()
	if diff := cmp.Diff([]string{"identity", "split_text"}, reg.List(FuncMapper)); diff != "" {
		t.Fatalf("mappers mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"count_rows"}, reg.List(FuncReducer)); diff != "" {
		t.Fatalf("reducers mismatch (-want +got):\n%s", diff)
	}
	if got := reg.List("unknown"); len(got) != 0 {
		t.Fatalf("expected no functions, got %v", got)
	}
	if _, ok := reg.Folder("sum_count"); !ok {
		t.Fatal("expected sum_count to be registered")
	}
}

func TestBuildJob_ExplainSharesReferencedChains(t *testing.T) {
	job := &Job{
		Name:   "shared",
		Output: "out",
		Nodes: []NodeDef{
			{Name: "base", Input: "docs", Ops: []OpDef{{Map: "identity"}, {Sort: []string{"id"}}}},
			{Name: "out", From: "base", Ops: []OpDef{{Join: "base", Keys: []string{"id"}}}},
		},
	}
	out, err := BuildJob(job, testRegistry())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	plan, err := Explain(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Levels[0][0].Name != "base" || plan.Levels[0][0].Consumers != 2 {
		t.Fatalf("expected base to be shared by 2, got %+v", plan.Levels[0][0])
	}
}
