// Package main is the single-binary entrypoint for the Tether engine.
package main

import "github.com/tether-app/tether/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
