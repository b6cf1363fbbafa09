// tinyirc - A small terminal IRC client.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tinyirc/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "tinyirc: %v\n", err)
		os.Exit(1)
	}
}
