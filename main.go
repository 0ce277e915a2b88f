package main

import (
	"os"

	"github.com/pathfinder-ai/pathfinder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
