package meta

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultOptional is the documented default of an optional prop.
	DefaultOptional = "undefined"
	// DefaultRequired is the documented default of a required prop.
	DefaultRequired = "-"
)

var defaultFeatures = []string{
	"Type-safe props generated from the component's TypeScript declarations",
	"Consistent styling through design tokens",
	"Accessible by default",
	"Composable with other Blend components",
}

var identifierPattern = regexp.MustCompile(`[A-Za-z_$][A-Za-z0-9_$]*`)

// BuildDocument assembles the metadata document for a component. A nil or
// empty result yields a document with no props.
func BuildDocument(componentName string, res *ExtractionResult) *Document {
	if res == nil {
		res = NewExtractionResult()
	}

	features := make([]string, len(defaultFeatures))
	copy(features, defaultFeatures)

	doc := &Document{
		ComponentName:        componentName,
		ComponentDescription: fmt.Sprintf("The %s component from the Blend design system.", componentName),
		Features:             features,
		UsageExamples: []UsageExample{
			{
				Title:       fmt.Sprintf("Basic %s", componentName),
				Description: fmt.Sprintf("A minimal %s with default props.", componentName),
				Code:        fmt.Sprintf("<%s />", componentName),
			},
		},
		Props: make([]PropEntry, 0, len(res.Properties)),
	}

	for _, p := range res.Properties {
		doc.Props = append(doc.Props, buildPropEntry(componentName, p, res))
	}

	return doc
}

func buildPropEntry(componentName string, p Property, res *ExtractionResult) PropEntry {
	def := DefaultRequired
	if !p.Required {
		def = DefaultOptional
	}

	requirement := "An optional"
	if p.Required {
		requirement = "A required"
	}

	return PropEntry{
		PropName:        p.Name,
		PropType:        p.Type,
		TypeDefinition:  ResolveTypeDefinition(p.Type, res),
		PropDescription: fmt.Sprintf("%s %s prop of type %s for the %s component.", requirement, strings.ToLower(string(p.Category)), p.Type, componentName),
		LLMContext:      fmt.Sprintf("The %s prop of %s accepts %s and is grouped under %s.", p.Name, componentName, p.Type, p.Category),
		PropDefault:     def,
		Category:        p.Category,
		Required:        p.Required,
	}
}

// ResolveTypeDefinition returns the definitions of every declared enum and
// type alias the type text refers to, enums first, separated by a blank
// line. When nothing is referenced the type text itself is returned.
func ResolveTypeDefinition(typeText string, res *ExtractionResult) string {
	if res == nil {
		return typeText
	}

	referenced := make(map[string]bool)
	for _, ident := range identifierPattern.FindAllString(typeText, -1) {
		referenced[ident] = true
	}

	var defs []string
	for _, e := range res.Enums {
		if referenced[e.Name] {
			defs = append(defs, e.Definition())
		}
	}
	for _, a := range res.TypeAliases {
		if referenced[a.Name] {
			defs = append(defs, a.Declaration())
		}
	}

	if len(defs) == 0 {
		return typeText
	}
	return strings.Join(defs, "\n\n")
}

// Definition renders the enum as TypeScript source.
func (e EnumDeclaration) Definition() string {
	var b strings.Builder
	fmt.Fprintf(&b, "enum %s {\n", e.Name)
	for _, m := range e.Members {
		if m.Value == "" {
			fmt.Fprintf(&b, "  %s,\n", m.Name)
		} else {
			fmt.Fprintf(&b, "  %s = %s,\n", m.Name, m.Value)
		}
	}
	b.WriteString("}")
	return b.String()
}

// Declaration renders the alias as TypeScript source.
func (a TypeAlias) Declaration() string {
	return fmt.Sprintf("type %s = %s", a.Name, a.Definition)
}
