package main

import (
	"os"

	"github.com/cardstream-dev/cardstream/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
