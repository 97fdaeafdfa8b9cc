// Command asksort ranks a list of items by asking pairwise questions.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/asksort/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
