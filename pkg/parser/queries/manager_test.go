package queries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/blendmeta/pkg/parser"
)

func setupManagers(t *testing.T) (*parser.ParserManager, *QueryManager) {
	t.Helper()
	pm := parser.NewParserManager(nil)
	qm := NewQueryManager(pm, nil)
	t.Cleanup(func() {
		qm.Close()
		pm.Close()
	})
	return pm, qm
}

func TestDeclarationsQuery_TypeScript(t *testing.T) {
	pm, qm := setupManagers(t)

	source := []byte(`export enum WidgetSize { SMALL = "sm", LARGE = "lg" }
type WidgetTone = "neutral" | "danger";
export interface WidgetProps { size?: WidgetSize; onClick: () => void; }
`)
	tree, err := pm.Parse(source, parser.LanguageTypeScript, false)
	require.NoError(t, err)
	defer tree.Close()

	query, err := qm.GetQuery(parser.LanguageTypeScript, QueryTypeDeclarations, false)
	require.NoError(t, err)

	matches, err := qm.ExecuteQuery(tree, query, source)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	names := map[string]string{}
	for _, m := range matches {
		for _, c := range m.Captures {
			if c.Field == "name" {
				names[c.Category] = c.Text
			}
		}
	}
	assert.Equal(t, "WidgetSize", names["enum"])
	assert.Equal(t, "WidgetTone", names["alias"])
	assert.Equal(t, "WidgetProps", names["interface"])
}

func TestDeclarationsQuery_TSXGrammar(t *testing.T) {
	pm, qm := setupManagers(t)

	source := []byte(`export interface CardProps { title: string }
export const Card = ({ title }: CardProps) => <div>{title}</div>;
`)
	tree, err := pm.Parse(source, parser.LanguageTypeScript, true)
	require.NoError(t, err)
	defer tree.Close()

	query, err := qm.GetQuery(parser.LanguageTypeScript, QueryTypeDeclarations, true)
	require.NoError(t, err)

	matches, err := qm.ExecuteQuery(tree, query, source)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.NotNil(t, matches[0].Capture("interface.name"))
	assert.Equal(t, "CardProps", matches[0].Capture("interface.name").Text)
}

func TestPropTypesQuery_JavaScript(t *testing.T) {
	pm, qm := setupManagers(t)

	source := []byte(`Badge.propTypes = { label: PropTypes.string.isRequired };`)
	tree, err := pm.Parse(source, parser.LanguageJavaScript, false)
	require.NoError(t, err)
	defer tree.Close()

	query, err := qm.GetQuery(parser.LanguageJavaScript, QueryTypePropTypes, false)
	require.NoError(t, err)

	matches, err := qm.ExecuteQuery(tree, query, source)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Badge", matches[0].Capture("proptypes.component").Text)
	assert.Equal(t, "propTypes", matches[0].Capture("proptypes.field").Text)
}

func TestGetQuery_CachesCompiledQuery(t *testing.T) {
	_, qm := setupManagers(t)

	q1, err := qm.GetQuery(parser.LanguageTypeScript, QueryTypeDeclarations, false)
	require.NoError(t, err)
	q2, err := qm.GetQuery(parser.LanguageTypeScript, QueryTypeDeclarations, false)
	require.NoError(t, err)
	assert.Same(t, q1, q2)

	q3, err := qm.GetQuery(parser.LanguageTypeScript, QueryTypeDeclarations, true)
	require.NoError(t, err)
	assert.NotSame(t, q1, q3, "TSX grammar needs its own compiled query")
}

func TestGetQuery_Unsupported(t *testing.T) {
	_, qm := setupManagers(t)

	_, err := qm.GetQuery(parser.LanguageJavaScript, QueryTypeDeclarations, false)
	assert.Error(t, err)
	_, err = qm.GetQuery(parser.LanguageUnknown, QueryTypePropTypes, false)
	assert.Error(t, err)
}

func TestParseCaptureName(t *testing.T) {
	c, f := parseCaptureName("enum.name")
	assert.Equal(t, "enum", c)
	assert.Equal(t, "name", f)

	c, f = parseCaptureName("plain")
	assert.Equal(t, "plain", c)
	assert.Empty(t, f)
}
