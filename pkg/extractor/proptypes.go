package extractor

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/blendmeta/pkg/meta"
	"github.com/gnana997/blendmeta/pkg/parser"
	"github.com/gnana997/blendmeta/pkg/parser/queries"
)

// extractPropTypes reads `<Name>.propTypes = {...}` from a JavaScript
// component. JavaScript sources have no enums or aliases.
func (e *Extractor) extractPropTypes(tree *ts.Tree, source []byte, name string) (*meta.ExtractionResult, error) {
	query, err := e.queryManager.GetQuery(parser.LanguageJavaScript, queries.QueryTypePropTypes, false)
	if err != nil {
		return meta.NewExtractionResult(), err
	}
	matches, err := e.queryManager.ExecuteQuery(tree, query, source)
	if err != nil {
		return meta.NewExtractionResult(), err
	}

	var body *ts.Node
	for _, m := range matches {
		if m.Capture("proptypes.field").Text != "propTypes" {
			continue
		}
		if body == nil || m.Capture("proptypes.component").Text == name {
			body = m.Capture("proptypes.body").Node
		}
		if m.Capture("proptypes.component").Text == name {
			break
		}
	}

	res := meta.NewExtractionResult()
	if body == nil {
		return res, nil
	}

	for i := uint(0); i < body.NamedChildCount(); i++ {
		child := body.NamedChild(i)
		switch child.Kind() {
		case "pair":
			key := child.ChildByFieldName("key")
			value := child.ChildByFieldName("value")
			if key == nil {
				continue
			}
			propName := memberName(key, source)
			typeText, required := unknownType, false
			if value != nil {
				typeText, required = propTypeText(value.Utf8Text(source))
			}
			res.Properties = append(res.Properties, meta.Property{
				Name:     propName,
				Type:     typeText,
				Required: required,
				Category: meta.Classify(propName),
			})
		case "shorthand_property_identifier":
			propName := child.Utf8Text(source)
			res.Properties = append(res.Properties, meta.Property{
				Name:     propName,
				Type:     unknownType,
				Category: meta.Classify(propName),
			})
		}
	}

	return res, nil
}

// propTypeText turns `PropTypes.func.isRequired` into ("func", true).
func propTypeText(raw string) (string, bool) {
	text := strings.Join(strings.Fields(raw), " ")
	required := strings.HasSuffix(text, ".isRequired")
	text = strings.TrimSuffix(text, ".isRequired")
	text = strings.TrimPrefix(text, "PropTypes.")
	if text == "" {
		text = unknownType
	}
	return text, required
}
