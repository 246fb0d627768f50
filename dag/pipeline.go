package dag

import "strings"

// Job is a YAML-defined graph of chains.
type Job struct {
	// Name is the job identifier.
	Name string `yaml:"name" validate:"required"`
	// Output names the chain whose table the job produces.
	Output string `yaml:"output" validate:"required"`
	// Nodes defines the job's chains.
	Nodes []NodeDef `yaml:"nodes" validate:"min=1,dive"`
}

// NodeDef defines one chain of a job. Exactly one of Input and From is set.
type NodeDef struct {
	// Name is the unique chain name within the job.
	Name string `yaml:"name" validate:"required"`
	// Input names the external input the chain reads.
	Input string `yaml:"input,omitempty"`
	// From names the chain whose output the chain reads.
	From string `yaml:"from,omitempty"`
	// Ops lists the chain's operations in order.
	Ops []OpDef `yaml:"ops,omitempty" validate:"dive"`
}

// OpDef defines one operation. Exactly one of Map, Sort, Fold, Reduce and
// Join is set:
//
//	ops:
//	  - map: split_words
//	  - sort: [word]
//	    reverse: true
//	  - reduce: count_rows
//	    keys: [word]
//	  - fold: sum_counts
//	    initial: {count: 0}
//	  - join: documents
//	    keys: [doc_id]
//	    strategy: left
type OpDef struct {
	// Map is a registered mapper.
	Map string `yaml:"map,omitempty"`
	// Sort lists the sort keys.
	Sort    []string `yaml:"sort,omitempty"`
	Reverse bool     `yaml:"reverse,omitempty"`
	// Fold is a registered folder, starting from Initial.
	Fold    string         `yaml:"fold,omitempty"`
	Initial map[string]any `yaml:"initial,omitempty"`
	// Reduce is a registered reducer grouping by Keys.
	Reduce string `yaml:"reduce,omitempty"`
	// Join names the chain joined on Keys; this chain is the left side.
	Join     string   `yaml:"join,omitempty"`
	Keys     []string `yaml:"keys,omitempty"`
	Strategy string   `yaml:"strategy,omitempty"`
}

// types maps every operation type to its setting in the definition.
func (o OpDef) types() map[string]string {
	return map[string]string{
		"map":    o.Map,
		"sort":   strings.Join(o.Sort, ","),
		"fold":   o.Fold,
		"reduce": o.Reduce,
		"join":   o.Join,
	}
}

// kind returns the single operation type set, or "".
func (o OpDef) kind() string {
	kind := ""
	for k, v := range o.types() {
		if v != "" {
			if kind != "" {
				return ""
			}
			kind = k
		}
	}
	return kind
}
