// Package loader decodes a TOML program description into a
// syntax.ParsedProgram.
//
// A description is a list of [[type]] and [[func]] tables:
//
//	[[type]]
//	kind = "struct"
//	name = "Node"
//	attrs = ["@repr C"]
//	fields = [{ name = "next", type = "&Node" }, { type = "u32" }]
//
//	[[type]]
//	kind = "pun"
//	name = "Word"
//	  [[type.block]]
//	  when = "lang(c, cpp)"
//	    [[type.block.type]]
//	    kind = "alias"
//	    name = "Word"
//	    target = "u32"
//
//	[[func]]
//	name = "walk"
//	inputs = [{ name = "head", type = "&Node" }]
//	outputs = [{ type = "u32" }]
//
// Type references are written as name, &T, [T; N] or (). Unnamed fields,
// inputs and outputs get the generated names field{i}, arg{i} and out{i}.
// All errors are *diag.Error values whose spans point into the file.
package loader
