package main

import (
	"os"

	"github.com/locatio-dev/locatio/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
