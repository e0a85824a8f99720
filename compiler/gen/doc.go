// Package gen generates a QL library from a class schema.
//
// Every schema class is mapped to relational tables and rendered as three
// kinds of QL artifacts: a generated definition, a user-extendable stub
// and, for the classes selected by the test hierarchy, test queries.
//
// # Architecture
//
// A generation run follows this flow:
//
//	Schema (load.Class)
//	        ↓
//	   Graph (NewGraph: relational mapping, table checks)
//	        ↓
//	   ImportPaths / ResolveImports
//	        ↓
//	   Renderer (definitions, stubs, import list, parent relation)
//	        ↓
//	   Hierarchy (tested classes and their properties)
//	        ↓
//	   Renderer (tests), Cleanup, Formatter
//
// # Stubs
//
// A stub is generated once and then belongs to the user. Stubs starting
// with GeneratedMarker are still owned by the generator and are rewritten
// on every run, unless their content was modified, in which case the run
// fails with a StubError. Removing the marker hands the stub over to the
// user and it is never touched again.
//
// # Error Handling
//
// The package uses structured error types:
//
//   - SchemaError: invalid schema or table name collision
//   - ConfigError: configuration errors
//   - ReferenceError: reference to an unknown class
//   - StubError: modified stub still marked as generated
//   - FormatError: failed formatter run
//   - GenerationError: file system errors during generation
//
// Example error handling:
//
//	if err := gen.Generate(ctx, cfg); err != nil {
//		switch {
//		case gen.IsStubError(err):
//			// remove the marker or revert the stub
//		case errors.Is(err, gen.ErrInvalidSchema):
//			// fix the schema
//		}
//	}
package gen
