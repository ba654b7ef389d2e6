package main

import (
	"os"

	"github.com/oikonomos-dev/oikonomos/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
