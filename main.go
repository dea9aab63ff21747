package main

import (
	"os"

	"github.com/3leaps/cefcheck/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
