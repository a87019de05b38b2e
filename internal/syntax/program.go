package syntax

// ParsedProgram is the output of a front end: type declarations and function
// declarations, each in written order with unique names.
//
// Funcs[BuiltinFuncsStart:] are synthesized builtins; everything before is
// user code. A program without builtins has BuiltinFuncsStart == len(Funcs).
type ParsedProgram struct {
	Types             []TyDecl
	Funcs             []*FuncDecl
	BuiltinFuncsStart int
}
