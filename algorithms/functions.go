package algorithms

import (
	"context"
	"fmt"
	"math"

	"github.com/kbukum/graphx/record"
	"github.com/kbukum/graphx/stream"
)

// Column names shared by the algorithms.
const (
	ColText       = "text"
	ColCount      = "count"
	ColDocID      = "doc_id"
	ColWord       = "word"
	ColDocsCount  = "docs_count"
	ColIDF        = "idf"
	ColTF         = "tf"
	ColTFIDF      = "tf_idf"
	ColTotalWords = "total_words_count"
	ColOTF        = "otf"
	ColTFDoc      = "tf_doc"
	ColPMI        = "pmi"
	ColEdgeID     = "edge_id"
	ColStart      = "start"
	ColEnd        = "end"
	ColEnterTime  = "enter_time"
	ColLeaveTime  = "leave_time"
	ColWeekday    = "weekday"
	ColHour       = "hour"
	ColTimeLapse  = "time_lapse"
	ColDistance   = "distance"
	ColSpeed      = "speed"
)

// collect drains a reduce group. Reducers run inside a pull that already
// honours the run's context.
func collect(group stream.Iterator[record.Record]) ([]record.Record, error) {
	return stream.Collect(context.Background(), group)
}

func fail(err error) stream.Iterator[record.Record] {
	return stream.Fail[record.Record](err)
}

// --- word count ---

func splitWords(r record.Record) stream.Iterator[record.Record] {
	text, err := r.GetString(ColText)
	if err != nil {
		return fail(err)
	}
	return stream.Generate(func(yield func(record.Record) bool) error {
		for _, tok := range Tokenize(text) {
			if !yield(record.New(ColText, tok, ColCount, 1)) {
				return nil
			}
		}
		return nil
	})
}

func countWords(group stream.Iterator[record.Record]) stream.Iterator[record.Record] {
	rows, err := collect(group)
	if err != nil || len(rows) == 0 {
		return fail(err)
	}
	return stream.Of(record.New(ColText, rows[0].Value(ColText), ColCount, len(rows)))
}

// --- shared text functions ---

// docTokenizer splits the text of a document into {doc_id, word} rows.
func docTokenizer(minRunes int) func(record.Record) stream.Iterator[record.Record] {
	return func(r record.Record) stream.Iterator[record.Record] {
		text, err := r.GetString(ColText)
		if err != nil {
			return fail(err)
		}
		docID := r.Value(ColDocID)
		tokens := tokenize(text, minRunes)
		out := make([]record.Record, len(tokens))
		for i, tok := range tokens {
			out[i] = record.New(ColDocID, docID, ColWord, tok)
		}
		return stream.FromSlice(out)
	}
}

func firstOfGroup(group stream.Iterator[record.Record]) stream.Iterator[record.Record] {
	rows, err := collect(group)
	if err != nil || len(rows) == 0 {
		return fail(err)
	}
	return stream.Of(rows[0])
}

// counter folds a running count into column.
func counter(column string) func(state, rec record.Record) (record.Record, error) {
	return func(state, _ record.Record) (record.Record, error) {
		n, err := state.GetInt(column)
		if err != nil {
			return state, err
		}
		state.Set(column, n+1)
		return state, nil
	}
}

// termFrequency emits, for the words of one document, the share of each
// word among the document's words, in order of first occurrence.
func termFrequency(column string) func(stream.Iterator[record.Record]) stream.Iterator[record.Record] {
	return func(group stream.Iterator[record.Record]) stream.Iterator[record.Record] {
		rows, err := collect(group)
		if err != nil || len(rows) == 0 {
			return fail(err)
		}
		counts := make(map[string]int)
		var order []string
		for _, row := range rows {
			w, err := row.GetString(ColWord)
			if err != nil {
				return fail(err)
			}
			if counts[w] == 0 {
				order = append(order, w)
			}
			counts[w]++
		}
		docID := rows[len(rows)-1].Value(ColDocID)
		out := make([]record.Record, len(order))
		for i, w := range order {
			out[i] = record.New(ColDocID, docID, ColWord, w, column, float64(counts[w])/float64(len(rows)))
		}
		return stream.FromSlice(out)
	}
}

// lastReversed keeps the last n rows of a group, last first.
func lastReversed(n int) func(stream.Iterator[record.Record]) stream.Iterator[record.Record] {
	return func(group stream.Iterator[record.Record]) stream.Iterator[record.Record] {
		rows, err := collect(group)
		if err != nil {
			return fail(err)
		}
		start := max(len(rows)-n, 0)
		out := make([]record.Record, 0, len(rows)-start)
		for i := len(rows) - 1; i >= start; i-- {
			out = append(out, rows[i])
		}
		return stream.FromSlice(out)
	}
}

// --- inverted index ---

func inverseDocFrequency(group stream.Iterator[record.Record]) stream.Iterator[record.Record] {
	rows, err := collect(group)
	if err != nil || len(rows) == 0 {
		return fail(err)
	}
	last := rows[len(rows)-1]
	docs, err := last.GetFloat(ColDocsCount)
	if err != nil {
		return fail(err)
	}
	idf := math.Log(docs / float64(len(rows)))
	return stream.Of(record.New(ColWord, last.Value(ColWord), ColIDF, idf))
}

func tfIDF(r record.Record) stream.Iterator[record.Record] {
	tf, err := r.GetFloat(ColTF)
	if err != nil {
		return fail(err)
	}
	idf, err := r.GetFloat(ColIDF)
	if err != nil {
		return fail(err)
	}
	return stream.Of(record.New(ColWord, r.Value(ColWord), ColDocID, r.Value(ColDocID), ColTFIDF, tf*idf))
}

// --- PMI ---

// repeatedWords keeps the rows of words seen at least twice.
func repeatedWords(group stream.Iterator[record.Record]) stream.Iterator[record.Record] {
	rows, err := collect(group)
	if err != nil {
		return fail(err)
	}
	if len(rows) < 2 {
		return stream.Empty[record.Record]()
	}
	return stream.FromSlice(rows)
}

func overallFrequency(group stream.Iterator[record.Record]) stream.Iterator[record.Record] {
	rows, err := collect(group)
	if err != nil || len(rows) == 0 {
		return fail(err)
	}
	last := rows[len(rows)-1]
	total, err := last.GetFloat(ColTotalWords)
	if err != nil {
		return fail(err)
	}
	if total == 0 {
		return fail(fmt.Errorf("word %v: no words counted", last.Value(ColWord)))
	}
	return stream.Of(record.New(ColWord, last.Value(ColWord), ColOTF, float64(len(rows))/total))
}

func pointwiseMI(r record.Record) stream.Iterator[record.Record] {
	tf, err := r.GetFloat(ColTFDoc)
	if err != nil {
		return fail(err)
	}
	otf, err := r.GetFloat(ColOTF)
	if err != nil {
		return fail(err)
	}
	return stream.Of(record.New(ColDocID, r.Value(ColDocID), ColWord, r.Value(ColWord), ColPMI, math.Log(tf/otf)))
}
