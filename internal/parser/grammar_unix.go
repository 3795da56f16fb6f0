//go:build darwin || linux || freebsd

package parser

import (
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"
	sitter "github.com/smacker/go-tree-sitter"
)

// loadSharedGrammar opens a compiled grammar library and calls its
// tree_sitter_<symbol> entry point. The handle is never closed: the language
// it returns stays in use for the life of the process.
func loadSharedGrammar(path, symbol string) (*sitter.Language, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("dlopen: %w", err)
	}

	name := "tree_sitter_" + symbol
	sym, err := purego.Dlsym(handle, name)
	if err != nil {
		_ = purego.Dlclose(handle)
		return nil, fmt.Errorf("lookup %s: %w", name, err)
	}

	var langFunc func() uintptr
	purego.RegisterFunc(&langFunc, sym)

	ptr := langFunc()
	if ptr == 0 {
		_ = purego.Dlclose(handle)
		return nil, fmt.Errorf("%s returned no language", name)
	}
	return sitter.NewLanguage(unsafe.Pointer(ptr)), nil
}
