//go:build !darwin && !linux && !freebsd

package parser

import (
	"fmt"
	"runtime"

	sitter "github.com/smacker/go-tree-sitter"
)

func loadSharedGrammar(path, symbol string) (*sitter.Language, error) {
	return nil, fmt.Errorf("shared grammar libraries are not supported on %s", runtime.GOOS)
}
