// Package main provides the entry point for tracklog-cli, the offline tool
// for reading and writing tracklog snapshot stores.
package main

import (
	"fmt"
	"os"

	"github.com/yndnr/tracklog-go/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
