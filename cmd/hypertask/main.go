// Package main is the single-binary entrypoint for the HyperTask client.
// One binary covers the CLI, the local gateway, and the project engine.
package main

import "github.com/hypertask-network/hypertask/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
