// Package main provides the entry point for the amanweb CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/amanweb/cmd/amanweb/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
