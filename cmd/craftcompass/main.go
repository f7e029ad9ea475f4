// Package main provides the craftcompass CLI.
package main

import (
	"os"

	"github.com/Novaotic/craft-compass/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
