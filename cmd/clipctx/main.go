// Package main is the entry point for the clipctx CLI tool.
package main

import (
	"github.com/snipkit/clipctx/internal/cmd"
)

func main() {
	cmd.Execute()
}
