package main

import (
	"os"

	"github.com/wonny/realdeal/cmd/realdeal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
