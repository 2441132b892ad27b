// Package lang implements a small functional templating language that mixes
// variables, integer and string literals, function literals, calls, and
// let-bindings with HTML-like tags.
//
// Source text is parsed by a hand-written recursive descent parser into a
// tree of [Node] values, each annotated with the half-open character range it
// was parsed from and an identity that is unique within the parse. The tree is
// evaluated by a tree-walking evaluator that returns a [Value] together with a
// [Trace] of Start and End events for every node it visits, suitable for
// stepping through an evaluation after the fact.
//
// # Grammar
//
// Informal EBNF:
//
//	Expression   → Definition | FunctionCall
//	Definition   → 'let' Identifier '=' Expression 'in' Expression
//	FunctionCall → Atom ( '(' ArgList? ')' )*
//	ArgList      → Expression ( ',' Expression )*
//	Atom         → Int | String | Function | Variable | Tag | '{' Expression '}'
//	Int          → digit+
//	String       → '"' <any character except '"'>* '"'
//	Function     → 'func' '(' ( Identifier ( ',' Identifier )* )? ')'
//	               '{' Expression '}'
//	Variable     → Identifier
//	Tag          → '<' Identifier '>' ( Tag | '{' Expression '}' )*
//	               '</' Identifier '>'
//	Identifier   → letter ( letter | '_' )*
//
// Whitespace between tokens is insignificant. The keywords let, in, and func
// are reserved.
//
// # Example
//
//	let page = func(title, body) {
//	  <html>
//	    <head><title>{ title }</title></head>
//	    <body>{ body }</body>
//	  </html>
//	} in page("Hello", <p>{ "1 < 2" }</p>)
//
// evaluates to the Html value
//
//	<html><head><title>Hello</title></head><body><p>1 &lt; 2</p></body></html>
//
// # Values
//
// Evaluation produces one of four value types: String, Int, Function, and
// Html. Strings placed inside a tag are HTML-escaped; Html is emitted
// verbatim. Any other value inside a tag is a type error.
//
// # Scoping
//
// Scoping is dynamic. A function value carries only its parameter names and
// body; when it is called, the body is evaluated in the caller's environment
// extended with the parameter bindings. Environments are immutable overlays,
// so a let-binding or call never affects sibling evaluations.
package lang
