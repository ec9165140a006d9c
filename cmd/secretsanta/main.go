package main

import (
	"os"

	"github.com/shreya0626/secret-santa/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
