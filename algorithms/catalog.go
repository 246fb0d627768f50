package algorithms

import (
	"slices"
	"strings"

	"github.com/kbukum/graphx/dag"
)

// Input names used by the catalog.
const (
	InputDocs    = "docs"
	InputTimes   = "times"
	InputLengths = "lengths"
)

// Algorithm is a named, ready-to-run graph.
type Algorithm struct {
	Name        string
	Description string
	// Inputs lists the input names the graph reads, in the order Build
	// expects them.
	Inputs []string
	Build  func(g *dag.Graph) dag.Chain
}

var catalog = []Algorithm{
	{
		Name:        "word-count",
		Description: "count words of the text column",
		Inputs:      []string{InputDocs},
		Build:       func(g *dag.Graph) dag.Chain { return WordCount(g, InputDocs) },
	},
	{
		Name:        "inverted-index",
		Description: "top 3 documents per word by tf-idf",
		Inputs:      []string{InputDocs},
		Build:       func(g *dag.Graph) dag.Chain { return InvertedIndex(g, InputDocs) },
	},
	{
		Name:        "pmi",
		Description: "top 10 words per document by pointwise mutual information",
		Inputs:      []string{InputDocs},
		Build:       func(g *dag.Graph) dag.Chain { return PMI(g, InputDocs) },
	},
	{
		Name:        "road-speed",
		Description: "average road speed per weekday and hour",
		Inputs:      []string{InputTimes, InputLengths},
		Build:       func(g *dag.Graph) dag.Chain { return RoadSpeed(g, InputTimes, InputLengths) },
	},
}

// Catalog returns the built-in algorithms ordered by name.
func Catalog() []Algorithm {
	out := slices.Clone(catalog)
	slices.SortFunc(out, func(a, b Algorithm) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Lookup finds a built-in algorithm by name.
func Lookup(name string) (Algorithm, bool) {
	i := slices.IndexFunc(catalog, func(a Algorithm) bool { return a.Name == name })
	if i < 0 {
		return Algorithm{}, false
	}
	return catalog[i], true
}

// Register adds the functions used by the built-in algorithms to reg so
// that YAML jobs can refer to them by name.
func Register(reg *dag.Registry) {
	reg.RegisterMapper("split_words", splitWords)
	reg.RegisterMapper("tokenize", docTokenizer(1))
	reg.RegisterMapper("tokenize_long", docTokenizer(5))
	reg.RegisterMapper("tf_idf", tfIDF)
	reg.RegisterMapper("pmi", pointwiseMI)
	reg.RegisterMapper("time_and_distance", timeAndDistance)

	reg.RegisterReducer("count_words", countWords)
	reg.RegisterReducer("first", firstOfGroup)
	reg.RegisterReducer("idf", inverseDocFrequency)
	reg.RegisterReducer("term_frequency", termFrequency(ColTF))
	reg.RegisterReducer("term_frequency_doc", termFrequency(ColTFDoc))
	reg.RegisterReducer("top3", lastReversed(3))
	reg.RegisterReducer("top10", lastReversed(10))
	reg.RegisterReducer("repeated", repeatedWords)
	reg.RegisterReducer("frequency", overallFrequency)
	reg.RegisterReducer("speed", averageSpeed)

	reg.RegisterFolder("count_docs", counter(ColDocsCount))
	reg.RegisterFolder("count_total_words", counter(ColTotalWords))
}

// NewRegistry returns a registry holding the built-in functions.
func NewRegistry() *dag.Registry {
	reg := dag.NewRegistry()
	Register(reg)
	return reg
}
