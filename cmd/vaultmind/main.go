package main

import (
	"os"

	"github.com/vaultmind-ai/vaultmind/cmd/vaultmind/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
