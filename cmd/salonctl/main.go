// Package main is the entry point for the salonctl CLI binary.
package main

import (
	"os"

	cli "salonhub/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
