package main

import (
	"os"

	"github.com/moolen/depgraph/cmd/depgraph/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(commands.ExitCodeFor(err))
	}
}
