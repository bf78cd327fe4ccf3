package main

import (
	"os"

	"github.com/mongoose-kitchen/mongoose/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
