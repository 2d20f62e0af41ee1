package extractor

import (
	"fmt"
	"sort"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/blendmeta/pkg/meta"
	"github.com/gnana997/blendmeta/pkg/parser"
	"github.com/gnana997/blendmeta/pkg/parser/queries"
)

const (
	propsSuffix = "Props"
	unknownType = "unknown"
)

// propsDecl is a declaration that may hold the component's props.
type propsDecl struct {
	node        *ts.Node
	isInterface bool
	start       uint32
}

// extractDeclarations runs the declarations query and builds the result.
func (e *Extractor) extractDeclarations(tree *ts.Tree, source []byte, name string, isTSX bool) (*meta.ExtractionResult, error) {
	query, err := e.queryManager.GetQuery(parser.LanguageTypeScript, queries.QueryTypeDeclarations, isTSX)
	if err != nil {
		return meta.NewExtractionResult(), err
	}
	matches, err := e.queryManager.ExecuteQuery(tree, query, source)
	if err != nil {
		return meta.NewExtractionResult(), err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return definitionStart(matches[i]) < definitionStart(matches[j])
	})

	res := meta.NewExtractionResult()
	var candidates []propsDecl

	for _, m := range matches {
		switch {
		case m.Capture("enum.name") != nil:
			body := m.Capture("enum.body")
			res.Enums = append(res.Enums, meta.EnumDeclaration{
				Name:    m.Capture("enum.name").Text,
				Members: enumMembers(body.Node, source),
			})

		case m.Capture("alias.name") != nil:
			aliasName := m.Capture("alias.name").Text
			value := m.Capture("alias.value")
			if !strings.HasSuffix(aliasName, propsSuffix) {
				res.TypeAliases = append(res.TypeAliases, meta.TypeAlias{
					Name:       aliasName,
					Definition: value.Text,
				})
			}
			if isPropsName(aliasName, name) {
				candidates = append(candidates, propsDecl{node: value.Node, start: value.StartByte})
			}

		case m.Capture("interface.name") != nil:
			if isPropsName(m.Capture("interface.name").Text, name) {
				body := m.Capture("interface.body")
				candidates = append(candidates, propsDecl{node: body.Node, isInterface: true, start: body.StartByte})
			}
		}
	}

	if decl, ok := selectProps(candidates); ok {
		for _, member := range objectMembers(decl.node) {
			if prop, ok := propertyFromMember(member, source); ok {
				res.Properties = append(res.Properties, prop)
			}
		}
	}

	return res, nil
}

func definitionStart(m queries.QueryMatch) uint32 {
	for _, c := range m.Captures {
		if c.Field == "definition" {
			return c.StartByte
		}
	}
	if len(m.Captures) > 0 {
		return m.Captures[0].StartByte
	}
	return 0
}

// isPropsName reports whether a declaration name is the props declaration of
// component: exactly "<Component>Props" or "Props".
func isPropsName(declName, component string) bool {
	return declName == component+propsSuffix || declName == propsSuffix
}

// selectProps prefers an interface over a type alias, then source order.
func selectProps(candidates []propsDecl) (propsDecl, bool) {
	if len(candidates) == 0 {
		return propsDecl{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].isInterface != candidates[j].isInterface {
			return candidates[i].isInterface
		}
		return candidates[i].start < candidates[j].start
	})
	return candidates[0], true
}

// enumMembers returns the members of an enum_body in declaration order.
func enumMembers(body *ts.Node, source []byte) []meta.EnumMember {
	members := []meta.EnumMember{}
	if body == nil {
		return members
	}

	for i := uint(0); i < body.NamedChildCount(); i++ {
		child := body.NamedChild(i)
		switch child.Kind() {
		case "enum_assignment":
			nameNode := child.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			member := meta.EnumMember{Name: nameNode.Utf8Text(source)}
			if value := child.ChildByFieldName("value"); value != nil {
				member.Value = value.Utf8Text(source)
			}
			members = append(members, member)
		case "property_identifier", "string", "number":
			members = append(members, meta.EnumMember{Name: child.Utf8Text(source)})
		}
	}
	return members
}

// objectMembers returns the member signatures of an interface body or of the
// object types in a type alias value. Intersections contribute the members
// of every object type they contain; anything else contributes none.
func objectMembers(node *ts.Node) []*ts.Node {
	if node == nil {
		return nil
	}

	switch node.Kind() {
	case "interface_body", "object_type":
		var members []*ts.Node
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if k := child.Kind(); k == "property_signature" || k == "method_signature" {
				members = append(members, child)
			}
		}
		return members
	case "intersection_type", "parenthesized_type":
		var members []*ts.Node
		for i := uint(0); i < node.NamedChildCount(); i++ {
			members = append(members, objectMembers(node.NamedChild(i))...)
		}
		return members
	default:
		return nil
	}
}

// propertyFromMember converts a property_signature or method_signature into
// a classified property.
func propertyFromMember(member *ts.Node, source []byte) (meta.Property, bool) {
	nameNode := member.ChildByFieldName("name")
	if nameNode == nil {
		return meta.Property{}, false
	}
	name := memberName(nameNode, source)

	var typeText string
	if member.Kind() == "method_signature" {
		typeText = methodType(member, source)
	} else {
		typeText = annotationText(member.ChildByFieldName("type"), source)
	}

	return meta.Property{
		Name:     name,
		Type:     typeText,
		Required: !hasOptionalMarker(member),
		Category: meta.Classify(name),
	}, true
}

// memberName strips the quotes from string-literal keys like 'aria-label'.
func memberName(node *ts.Node, source []byte) string {
	text := node.Utf8Text(source)
	if node.Kind() == "string" && len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}

// hasOptionalMarker reports whether the signature carries a `?` token.
func hasOptionalMarker(member *ts.Node) bool {
	for i := uint(0); i < member.ChildCount(); i++ {
		if member.Child(i).Kind() == "?" {
			return true
		}
	}
	return false
}

// annotationText returns the raw type text of a type_annotation, or
// "unknown" when there is none.
func annotationText(anno *ts.Node, source []byte) string {
	if anno == nil {
		return unknownType
	}
	for i := uint(0); i < anno.ChildCount(); i++ {
		child := anno.Child(i)
		if child.Kind() == ":" {
			continue
		}
		if text := strings.TrimSpace(child.Utf8Text(source)); text != "" {
			return text
		}
	}
	return unknownType
}

// methodType renders `onClick(event: MouseEvent): void` as
// `(event: MouseEvent) => void`.
func methodType(member *ts.Node, source []byte) string {
	params := "()"
	if p := member.ChildByFieldName("parameters"); p != nil {
		params = p.Utf8Text(source)
	}
	return fmt.Sprintf("%s => %s", params, annotationText(member.ChildByFieldName("return_type"), source))
}

// firstErrorPosition returns "line:col" of the first ERROR or MISSING node.
func firstErrorPosition(root *ts.Node) string {
	var walk func(n *ts.Node) *ts.Node
	walk = func(n *ts.Node) *ts.Node {
		if n.IsError() || n.IsMissing() {
			return n
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			child := n.Child(i)
			if child != nil && child.HasError() {
				if found := walk(child); found != nil {
					return found
				}
			}
		}
		return nil
	}

	n := walk(root)
	if n == nil {
		return "unknown position"
	}
	pos := n.StartPosition()
	return fmt.Sprintf("%d:%d", pos.Row+1, pos.Column+1)
}
