package main

import (
	"context"
	"fmt"
	"os"

	"github.com/GriffinCanCode/rtpipe/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "rtpipe:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
