// Package extract locates the declarations that lexically enclose a position
// in a parsed source file and turns them into display names.
//
// The work happens in two steps. Locate finds the deepest node at a position
// and walks its ancestors, recording the innermost function, implementation
// block and type declaration plus every enclosing module. Resolve reads names
// off those nodes and composes them into an Info record.
package extract

import "strconv"

// Separator joins qualified names: Type::function and outer::inner modules.
const Separator = "::"

// Keys used in Info.Extra.
const (
	ExtraHasImpl      = "has_impl"
	ExtraHasType      = "has_type"
	ExtraModuleDepth  = "module_depth"
	ExtraModuleSource = "module_source"
)

// Module sources recorded under ExtraModuleSource.
const (
	ModuleFromAST  = "ast"
	ModuleFromPath = "path"
)

// Info is the structural context of a position. Every field is optional; an
// empty string means "not determined".
type Info struct {
	// FunctionName is the enclosing function, qualified as Type::function when
	// the type is known and the raw name carries no qualifier of its own.
	FunctionName string `json:"function_name,omitempty" yaml:"function_name,omitempty"`
	// ClassName is the bare name of the enclosing type or impl subject, with
	// generic arguments removed.
	ClassName string `json:"class_name,omitempty" yaml:"class_name,omitempty"`
	// ModuleName is the module path, outermost first, joined with Separator.
	ModuleName string `json:"module_name,omitempty" yaml:"module_name,omitempty"`
	// Extra carries diagnostic flags.
	Extra map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// IsEmpty reports whether no structural field was determined.
func (i Info) IsEmpty() bool {
	return i.FunctionName == "" && i.ClassName == "" && i.ModuleName == ""
}

// WithFallbackModule returns a copy of i whose ModuleName is set to module
// when i has none. The copy records where the module came from.
func (i Info) WithFallbackModule(module string) Info {
	if i.ModuleName != "" || module == "" {
		return i
	}
	out := i
	out.ModuleName = module
	out.Extra = make(map[string]string, len(i.Extra)+1)
	for k, v := range i.Extra {
		out.Extra[k] = v
	}
	out.Extra[ExtraModuleSource] = ModuleFromPath
	return out
}

func diagnostics(c Chain) map[string]string {
	extra := map[string]string{
		ExtraHasImpl:     strconv.FormatBool(c.Impl != nil),
		ExtraHasType:     strconv.FormatBool(c.Type != nil),
		ExtraModuleDepth: strconv.Itoa(len(c.Modules)),
	}
	return extra
}
