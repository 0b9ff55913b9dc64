package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mbolis/ankietio/commands"
	"github.com/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := commands.Run(ctx, os.Args[1:], os.Stdin, os.Stdout)
	switch {
	case err == nil:
		return
	case errors.Is(err, commands.ErrReported):
		stop()
		os.Exit(1)
	case errors.Is(err, commands.ErrUsage):
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(2)
	}
	fmt.Fprintln(os.Stderr, err)
	stop()
	os.Exit(1)
}
