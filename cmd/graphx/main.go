// Command graphx runs dataflow graphs over JSON-lines files.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/kbukum/graphx/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("error:"), err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps user mistakes to 2 and everything else to 1.
func exitCode(err error) int {
	switch errors.CodeOf(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeUnknownInput, errors.ErrCodeUnknownFunction,
		errors.ErrCodeInvalidStrategy, errors.ErrCodeCyclicGraph:
		return 2
	}
	return 1
}
