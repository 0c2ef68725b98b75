package main

import "claudebuild/internal/cli"

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	cli.Execute(Version)
}
