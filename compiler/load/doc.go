// Package load reads class schemas used by the generator.
//
// A schema is a YAML mapping from class names to class bodies. Inside a
// class body the reserved keys configure the class and every other key
// declares a property:
//
//	Element:
//	  _pragma: qltest_skip
//	Expr:
//	  _extends: Element
//	  _dir: expr
//	  type: Type?
//	Call:
//	  _extends: [Expr]
//	  _dir: expr
//	  name: string
//	  is_implicit: predicate
//	  labels:
//	    type: string*
//	    pragma: qltest_skip
//	  _children:
//	    arguments: Expr*
//
// A property type ending with "?" is optional, one ending with "*" is
// repeated and the literal "predicate" declares a predicate property.
// Properties declared under _children are edges to child elements.
package load
