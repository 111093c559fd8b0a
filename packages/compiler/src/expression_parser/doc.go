// Package expression_parser lexes and parses Angular template expressions
// into a lossless concrete syntax tree.
//
// Every input character ends up in exactly one token leaf, whitespace and
// comments included, so a tree always prints back to its source. Malformed
// input never aborts a parse: the parser recovers, keeps going and records
// Diagnostics alongside the tree.
//
// Entry points, one per parse mode:
//
//   - ParseAction: event handlers, `;` separated statements, assignments allowed
//   - ParseBinding: property bindings, pipes allowed
//   - ParseSimpleBinding: host bindings, no pipes
//   - ParseInterpolation: the body of a `{{ }}`
//   - ParseTemplateBindings: structural directive microsyntax (`*ngFor`)
//   - ParseBlockParameter: one parameter of a control flow block (`@for`, `@defer`)
//
// Related packages:
//
//   - template_parser: finds binding sites in an HTML template and picks their mode
//   - language_service: checks template files and serves diagnostics over LSP
//   - config: settings shared by the CLI and the language server
package expression_parser
