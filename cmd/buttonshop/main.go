// Package main is the entry point for the buttonshop server and its
// maintenance commands.
package main

import (
	"log/slog"
	"os"

	"buttonshop/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		slog.Error("buttonshop failed", "error", err)
		os.Exit(1)
	}
}
