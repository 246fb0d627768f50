package algorithms

import (
	"github.com/kbukum/graphx/dag"
	"github.com/kbukum/graphx/ops"
	"github.com/kbukum/graphx/record"
)

// WordCount counts the words in the text column of input. The result holds
// {text, count} rows ordered by count, words with equal counts in
// alphabetical order.
func WordCount(g *dag.Graph, input string) dag.Chain {
	return g.Input(input).
		AddNamedMap("split_words", splitWords).
		AddSort([]string{ColText}, false).
		AddNamedReduce("count_words", countWords, []string{ColText}).
		AddSort([]string{ColCount}, false).
		Named("word_count")
}

// InvertedIndex ranks documents per word by tf-idf and keeps the three
// best documents of every word. input holds {doc_id, text} rows; the
// result holds {word, doc_id, tf_idf} rows ordered by word.
func InvertedIndex(g *dag.Graph, input string) dag.Chain {
	docs := g.Input(input)
	tokens := docs.AddNamedMap("tokenize", docTokenizer(1)).Named("tokens")

	initial := record.New(ColDocsCount, 0)
	docsCount := docs.
		AddNamedFold("count_docs", counter(ColDocsCount), &initial).
		Named("docs_count")

	idf := g.From(tokens).
		AddSort([]string{ColDocID, ColWord}, false).
		AddNamedReduce("first", firstOfGroup, []string{ColDocID, ColWord}).
		AddJoin(docsCount, nil, ops.Outer).
		AddSort([]string{ColWord}, false).
		AddNamedReduce("idf", inverseDocFrequency, []string{ColWord}).
		Named("idf")

	return g.From(tokens).
		AddSort([]string{ColDocID}, false).
		AddNamedReduce("term_frequency", termFrequency(ColTF), []string{ColDocID}).
		AddSort([]string{ColWord}, false).
		AddJoin(idf, []string{ColWord}, ops.Inner).
		AddNamedMap("tf_idf", tfIDF).
		AddSort([]string{ColWord, ColTFIDF}, false).
		AddNamedReduce("top3", lastReversed(3), []string{ColWord}).
		Named("inverted_index")
}

// PMI ranks the words of every document by pointwise mutual information
// against the whole corpus and keeps the ten best words per document. Only
// words longer than four runes that occur at least twice are considered.
// The result holds {doc_id, word, pmi} rows ordered by doc_id.
func PMI(g *dag.Graph, input string) dag.Chain {
	tokens := g.Input(input).
		AddNamedMap("tokenize_long", docTokenizer(5)).
		AddSort([]string{ColWord}, false).
		AddNamedReduce("repeated", repeatedWords, []string{ColWord}).
		Named("tokens")

	initial := record.New(ColTotalWords, 0)
	total := g.From(tokens).
		AddNamedFold("count_words", counter(ColTotalWords), &initial).
		Named("total_words")

	frequency := g.From(tokens).
		AddJoin(total, nil, ops.Outer).
		AddSort([]string{ColWord}, false).
		AddNamedReduce("frequency", overallFrequency, []string{ColWord}).
		Named("word_frequency")

	return g.From(tokens).
		AddSort([]string{ColDocID}, false).
		AddNamedReduce("term_frequency", termFrequency(ColTFDoc), []string{ColDocID}).
		AddSort([]string{ColWord}, false).
		AddJoin(frequency, []string{ColWord}, ops.Inner).
		AddNamedMap("pmi", pointwiseMI).
		AddSort([]string{ColDocID, ColPMI}, false).
		AddNamedReduce("top10", lastReversed(10), []string{ColDocID}).
		Named("pmi")
}
