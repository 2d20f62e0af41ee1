// Package meta defines the documentation metadata extracted from a component's
// source and the document assembled from it.
package meta

// Category is a coarse display grouping for a prop. It is a hint for the docs
// UI, not a semantic guarantee.
type Category string

const (
	CategoryAppearance Category = "Appearance"
	CategoryEvents     Category = "Events"
	CategoryContent    Category = "Content"
	CategoryLayout     Category = "Layout"
	CategoryState      Category = "State"
	CategoryStyling    Category = "Styling"
	CategoryGeneral    Category = "General"
)

// EnumMember is one enum member. Value is the initializer exactly as written
// in source (e.g. `"sm"`, `2`), or empty when the member has none.
type EnumMember struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// EnumDeclaration is an enum declared in the component's source file.
type EnumDeclaration struct {
	Name    string       `json:"name"`
	Members []EnumMember `json:"members"`
}

// TypeAlias is an auxiliary `type X = ...` declaration. Definition holds the
// right-hand side as raw source text.
type TypeAlias struct {
	Name       string `json:"name"`
	Definition string `json:"definition"`
}

// Property is one member of the component's props declaration.
type Property struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Category Category `json:"category"`
}

// ExtractionResult is everything extracted from one component's source file.
type ExtractionResult struct {
	Properties  []Property        `json:"properties"`
	Enums       []EnumDeclaration `json:"enums"`
	TypeAliases []TypeAlias       `json:"typeAliases"`
}

// NewExtractionResult returns an empty, non-nil result.
func NewExtractionResult() *ExtractionResult {
	return &ExtractionResult{
		Properties:  []Property{},
		Enums:       []EnumDeclaration{},
		TypeAliases: []TypeAlias{},
	}
}

// IsEmpty reports whether nothing was extracted.
func (r *ExtractionResult) IsEmpty() bool {
	return r == nil || len(r.Properties) == 0 && len(r.Enums) == 0 && len(r.TypeAliases) == 0
}

// UsageExample is a code sample shown with the component.
type UsageExample struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Code        string `json:"code"`
}

// PropEntry is the documented form of a Property.
type PropEntry struct {
	PropName        string   `json:"propName"`
	PropType        string   `json:"propType"`
	TypeDefinition  string   `json:"typeDefinition"`
	PropDescription string   `json:"propDescription"`
	LLMContext      string   `json:"llmContext"`
	PropDefault     string   `json:"propDefault"`
	Category        Category `json:"category"`
	Required        bool     `json:"required"`
}

// Document is the metadata document written to <name>.context.ts.
type Document struct {
	ComponentName        string         `json:"componentName"`
	ComponentDescription string         `json:"componentDescription"`
	Features             []string       `json:"features"`
	UsageExamples        []UsageExample `json:"usageExamples"`
	Props                []PropEntry    `json:"props"`
}
