package main

import (
	"os"

	"github.com/Nicolas5241/TheCalcularoty/cmd/lcc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
