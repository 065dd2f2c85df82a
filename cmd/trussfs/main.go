// Command trussfs exercises a local trussfs context from the shell: directory
// listings, archive inspection, change watching and the line prompt.
//
// Usage:
//
//	trussfs ls --meta .
//	trussfs archive ls --detailed bundle.zip
//	trussfs archive cat bundle.zip docs/readme.md
//	trussfs watch -r src
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(os.Stdin, os.Stdout)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "trussfs:", err)
		}
		os.Exit(1)
	}
}
