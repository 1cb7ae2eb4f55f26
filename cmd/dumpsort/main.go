// Command dumpsort splits PostgreSQL plain-text dumps into per-table files
// with sorted COPY data, or sorts a single `\.`-terminated range of a file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "dumpsort:", err)
		stop()
		os.Exit(1)
	}
}
