// Package declarations holds the tree-sitter patterns that locate type-level
// declarations in component source files.
package declarations

// TSQueries matches the declarations a component's documentation is built
// from. It works unchanged against both the TypeScript and TSX grammars.
//
// Captures:
//   - @enum.definition / @enum.name / @enum.body
//   - @alias.definition / @alias.name / @alias.value
//   - @interface.definition / @interface.name / @interface.body
//
// Declarations are matched wherever they appear (top level, export
// statements, namespaces); ordering is restored by start byte.
const TSQueries = `
; export enum WidgetSize { SMALL = "sm", LARGE = "lg" }
(enum_declaration
  name: (identifier) @enum.name
  body: (enum_body) @enum.body) @enum.definition

; export type WidgetTone = "neutral" | "danger"
(type_alias_declaration
  name: (type_identifier) @alias.name
  value: (_) @alias.value) @alias.definition

; export interface WidgetProps { size?: WidgetSize }
(interface_declaration
  name: (type_identifier) @interface.name
  body: (_) @interface.body) @interface.definition
`

// JSQueries matches propTypes assignments in plain JavaScript components:
//
//	Widget.propTypes = { size: PropTypes.string, onClick: PropTypes.func.isRequired }
//
// The property name is filtered to "propTypes" by the caller.
const JSQueries = `
(assignment_expression
  left: (member_expression
    object: (identifier) @proptypes.component
    property: (property_identifier) @proptypes.field)
  right: (object) @proptypes.body) @proptypes.definition
`
