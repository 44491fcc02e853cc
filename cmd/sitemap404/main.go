package main

import (
	"os"

	"github.com/rojanmagar2001/sitemap404/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
