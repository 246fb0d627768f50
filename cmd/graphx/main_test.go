package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/graphx/errors"
)

type output struct {
	stdout string
	stderr string
}

func execute(t *testing.T, stdin string, args ...string) (output, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--log-level", "disabled", "--no-color"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return output{stdout: stdout.String(), stderr: stderr.String()}, err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const wordCountOutput = `{"text":"cat","count":1}
{"text":"the","count":2}
`

func TestRun_WordCountFromStdin(t *testing.T) {
	out, err := execute(t, `{"text":"the the cat"}`+"\n", "run", "word-count", "--input", "docs=-")
	require.NoError(t, err)
	assert.Equal(t, wordCountOutput, out.stdout)
	assert.Contains(t, out.stderr, "ok word-count: 2 records")
}

func TestRun_BarePathBindsSingleInput(t *testing.T) {
	path := writeFile(t, t.TempDir(), "docs.jsonl", `{"text":"the the cat"}`+"\n")
	out, err := execute(t, "", "run", "word-count", "-i", path)
	require.NoError(t, err)
	assert.Equal(t, wordCountOutput, out.stdout)
}

func TestRun_SharedStdinInput(t *testing.T) {
	docs := `{"doc_id":1,"text":"a b"}` + "\n" + `{"doc_id":2,"text":"a c"}` + "\n"
	out, err := execute(t, docs, "run", "inverted-index", "-i", "-", "--nodes")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out.stdout), "\n"), 4)
	assert.Contains(t, out.stderr, "tokens")
	assert.Contains(t, out.stderr, "computed 1 served 2")
}

func TestRun_RoadSpeedToFile(t *testing.T) {
	dir := t.TempDir()
	times := writeFile(t, dir, "times.jsonl",
		`{"edge_id":1,"enter_time":"20171020T110000.000000","leave_time":"20171020T120000.000000"}`+"\n")
	lengths := writeFile(t, dir, "lengths.jsonl", `{"edge_id":1,"start":[0,0],"end":[0,1]}`+"\n")
	dest := filepath.Join(dir, "speed.jsonl")

	out, err := execute(t, "", "run", "road-speed", "-i", "times="+times, "-i", "lengths="+lengths, "-o", dest)
	require.NoError(t, err)
	assert.Empty(t, out.stdout)
	assert.Contains(t, out.stderr, "written")

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var row map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &row))
	assert.Equal(t, "Fri", row["weekday"])
	assert.InDelta(t, 111.09, row["speed"], 0.01)
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	times := writeFile(t, dir, "times.jsonl", "")

	cases := []struct {
		name  string
		stdin string
		args  []string
		code  errors.ErrorCode
		exit  int
	}{
		{"unknown algorithm", "", []string{"run", "nope"}, errors.ErrCodeInvalidInput, 2},
		{"missing file", "", []string{"run", "word-count", "-i", filepath.Join(dir, "missing.jsonl")}, errors.ErrCodeInvalidInput, 2},
		{"directory input", "", []string{"run", "word-count", "-i", dir}, errors.ErrCodeInvalidInput, 2},
		{"ambiguous bare path", "", []string{"run", "road-speed", "-i", times}, errors.ErrCodeInvalidInput, 2},
		{"input bound twice", "", []string{"run", "word-count", "-i", "docs=-", "-i", "docs=-"}, errors.ErrCodeInvalidInput, 2},
		{"unbound input", "", []string{"run", "road-speed", "-i", "times=" + times}, errors.ErrCodeUnknownInput, 2},
		{"bad run id", "", []string{"run", "word-count", "-i", "-", "--run-id", "x"}, errors.ErrCodeInvalidInput, 2},
		{"malformed record", "not json\n", []string{"run", "word-count", "-i", "-"}, errors.ErrCodeInvalidRecord, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, tc.stdin, tc.args...)
			require.Error(t, err)
			assert.Equal(t, tc.code, errors.CodeOf(err), "error: %v", err)
			assert.Equal(t, tc.exit, exitCode(err))
		})
	}
}

func TestRun_FailureSummary(t *testing.T) {
	out, err := execute(t, "not json\n", "run", "word-count", "-i", "-")
	require.Error(t, err)
	assert.Contains(t, out.stderr, "failed word-count")
	assert.Contains(t, out.stderr, "word_count")
	assert.Empty(t, out.stdout)
}

func TestRun_RunID(t *testing.T) {
	const id = "2f1b7c2e-59c1-4d5e-9a39-0c6f1f0b8a11"
	out, err := execute(t, `{"text":"a"}`+"\n", "run", "word-count", "-i", "-", "--run-id", id)
	require.NoError(t, err)
	assert.Contains(t, out.stderr, id)
}

func TestJob_Bundled(t *testing.T) {
	out, err := execute(t, `{"text":"the the cat"}`+"\n", "job", "word-count", "-i", "-")
	require.NoError(t, err)
	assert.Equal(t, wordCountOutput, out.stdout)
}

func TestJob_File(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "unique.yaml", `
name: unique-words
output: words
nodes:
  - name: words
    input: docs
    ops:
      - map: split_words
      - sort: [text]
      - reduce: count_words
        keys: [text]
      - fold: count_docs
        initial: {docs_count: 0}
`)
	docs := writeFile(t, dir, "docs.jsonl", `{"text":"b a b c"}`+"\n")

	out, err := execute(t, "", "job", path, "-i", "docs="+docs)
	require.NoError(t, err)
	assert.Equal(t, `{"docs_count":3}`+"\n", out.stdout)
	assert.Contains(t, out.stderr, "ok unique-words")

	out, err = execute(t, "", "job", "unique", "--jobs-dir", dir, "-i", "docs="+docs)
	require.NoError(t, err)
	assert.Equal(t, `{"docs_count":3}`+"\n", out.stdout)
}

func TestJob_Errors(t *testing.T) {
	dir := t.TempDir()
	unknownFn := writeFile(t, dir, "bad.yaml", "name: bad\noutput: a\nnodes:\n  - name: a\n    input: docs\n    ops:\n      - map: nope\n")

	_, err := execute(t, "", "job", "does-not-exist")
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.CodeOf(err))

	_, err = execute(t, "", "job", unknownFn, "-i", "-")
	assert.Equal(t, errors.ErrCodeUnknownFunction, errors.CodeOf(err))
}

func TestPlan(t *testing.T) {
	out, err := execute(t, "", "plan", "pmi")
	require.NoError(t, err)
	assert.Contains(t, out.stdout, "plan pmi:")
	assert.Contains(t, out.stdout, "tokens <- input:docs (shared by 3)")

	out, err = execute(t, "", "plan", "road-speed")
	require.NoError(t, err)
	assert.Contains(t, out.stdout, "inputs [lengths, times]")

	_, err = execute(t, "", "plan", "nope")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	out, err := execute(t, "", "list")
	require.NoError(t, err)
	for _, want := range []string{"word-count", "inverted-index", "pmi", "road-speed", "split_words", "count_docs"} {
		assert.Contains(t, out.stdout, want)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.stdout, "graphx "))

	out, err = execute(t, "", "version", "--json")
	require.NoError(t, err)
	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out.stdout), &info))
	assert.Contains(t, info, "version")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "graphx.yml", "environment: bogus\n")

	_, err := execute(t, "", "--config", bad, "list")
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.CodeOf(err))

	_, err = execute(t, "", "--config", filepath.Join(dir, "missing.yml"), "list")
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.CodeOf(err))

	good := writeFile(t, dir, "ok.yml", "engine:\n  verbose: true\n  release_memo: false\n")
	_, err = execute(t, "", "--config", good, "list")
	assert.NoError(t, err)
}

func TestParseBindings(t *testing.T) {
	got, err := parseBindings([]string{"a=x.jsonl", "y.jsonl"}, "b")
	require.NoError(t, err)
	assert.Equal(t, []binding{{name: "a", path: "x.jsonl"}, {name: "b", path: "y.jsonl"}}, got)

	_, err = parseBindings([]string{"y.jsonl"}, "")
	assert.Error(t, err)
	_, err = parseBindings([]string{"a="}, "")
	assert.Error(t, err)
}
