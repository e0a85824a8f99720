// Command qlgen generates a QL library from a class schema.
//
// Usage:
//
//	qlgen [flags] <command>
//
// The generate command writes the class definitions, the stubs, the import
// list, the parent relation and the tests of the library. Settings are read
// from qlgen.yaml, discovered by walking up from the working directory to
// the repository root, and can be overridden with QLGEN_ environment
// variables and command flags.
package main

func main() {
	Execute()
}
