package main

import (
	"os"

	"github.com/docload/docload/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
