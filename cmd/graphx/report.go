package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/kbukum/graphx/dag"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow)
	dimColor  = color.New(color.Faint)
)

// printSummary writes the outcome of a run to w, normally stderr.
func printSummary(w io.Writer, res *dag.Result, written int64, runErr error, nodes bool) {
	status := okColor.Sprint("ok")
	if runErr != nil {
		status = failColor.Sprint("failed")
	}
	fmt.Fprintf(w, "%s %s: %s records", status, res.Job, humanize.Comma(int64(len(res.Table))))
	if written > 0 {
		fmt.Fprintf(w, ", %s written", humanize.Bytes(uint64(written)))
	}
	fmt.Fprintf(w, " in %s %s\n", res.Duration.Round(time.Microsecond), dimColor.Sprintf("(run %s)", res.RunID))

	for _, d := range res.Diagnostics {
		times := ""
		if d.Count > 1 {
			times = fmt.Sprintf(" x%s", humanize.Comma(int64(d.Count)))
		}
		fmt.Fprintf(w, "  %s %s at %s step %d (%s)%s: %s\n",
			warnColor.Sprint("warning"), d.Err.Code, d.Node, d.Step, d.Operation, times, d.Err.Message)
	}

	if !nodes && runErr == nil {
		return
	}
	for _, n := range res.Nodes {
		state := n.Status
		switch n.Status {
		case dag.StatusCompleted:
			state = okColor.Sprint(n.Status)
		case dag.StatusFailed:
			state = failColor.Sprint(n.Status)
		}
		fmt.Fprintf(w, "  %-20s %s computed %d served %d %s records %s\n",
			n.Name, state, n.Computed, n.Served, humanize.Comma(int64(n.Records)), n.Duration.Round(time.Microsecond))
	}
}
