// Package main is the entry point for the modmeta CLI.
package main

import (
	"modmeta/cli/cmd"
)

func main() {
	cmd.Execute()
}
