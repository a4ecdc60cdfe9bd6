package main

import (
	"os"

	"keygate/cmd/keygate/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
