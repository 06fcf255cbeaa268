package main

import (
	"fmt"
	"os"

	"weekspend/internal/cli"
)

func main() {
	ctx, stop := cli.SignalContext()
	err := cli.NewReportCommand(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
