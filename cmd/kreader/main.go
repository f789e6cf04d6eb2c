// Command kreader reads a fixed set of Kafka partitions to the end, prints the
// values to stdout and checkpoints progress so the next run resumes where this
// one stopped.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "kreader:", err)
		return 1
	}
	return 0
}
