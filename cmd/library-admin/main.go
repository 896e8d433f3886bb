// Command library-admin runs maintenance and back-office tasks against the
// library store without going through the HTTP API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sethvargo/go-envconfig"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, envconfig.OsLookuper(), os.Args[1:])
	stop()
	if err != nil {
		os.Exit(1)
	}
}
