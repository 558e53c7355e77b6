// Command depthdet inspects and runs the depth-aware object detector on the
// CPU backend.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

const version = "v0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cobra.CheckErr(NewCLI().ExecuteContext(ctx))
}
