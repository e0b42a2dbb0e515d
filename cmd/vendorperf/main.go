// Package main provides the vendorperf CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/vendorperf/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
