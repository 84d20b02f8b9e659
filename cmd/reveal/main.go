// Command reveal authors and resolves scroll-triggered entrance animations.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/reveal/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
