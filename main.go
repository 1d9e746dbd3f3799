// Package main is the entry point for the rtpproxy audio extraction toolkit.
package main

import (
	"fmt"
	"os"

	"github.com/igorolhovskiy/rtpproxy/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
