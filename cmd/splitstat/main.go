package main

import (
	"os"

	"github.com/splitstat/splitstat/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
