package algorithms

import (
	"embed"
	"fmt"
	"path"
	"strings"

	"github.com/kbukum/graphx/dag"
)

//go:embed jobs/*.yaml
var jobFiles embed.FS

// JobNames lists the bundled YAML jobs.
func JobNames() []string {
	entries, _ := jobFiles.ReadDir("jobs")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	return names
}

// LoadJob parses a bundled YAML job.
func LoadJob(name string) (*dag.Job, error) {
	data, err := jobFiles.ReadFile("jobs/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("algorithms: job %q not found", name)
	}
	return dag.ParseJob(data)
}

// EmbeddedJobLoader serves the bundled jobs.
type EmbeddedJobLoader struct{}

// Load implements dag.JobLoader.
func (EmbeddedJobLoader) Load(name string) (*dag.Job, error) { return LoadJob(name) }
