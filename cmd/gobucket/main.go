package main

import (
	"os"

	"github.com/TimurManjosov/gobucket/cmd/gobucket/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
