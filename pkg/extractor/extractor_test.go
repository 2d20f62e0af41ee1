package extractor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/blendmeta/pkg/meta"
	"github.com/gnana997/blendmeta/pkg/parser"
	"github.com/gnana997/blendmeta/pkg/parser/queries"
	"github.com/gnana997/blendmeta/pkg/util"
)

func setupExtractor(t *testing.T, candidates ...string) *Extractor {
	t.Helper()
	pm := parser.NewParserManager(util.NopLogger())
	qm := queries.NewQueryManager(pm, util.NopLogger())
	t.Cleanup(func() {
		qm.Close()
		pm.Close()
	})
	return NewExtractor(pm, qm, candidates, util.NopLogger())
}

func writeComponent(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func propsByName(res *meta.ExtractionResult) map[string]meta.Property {
	out := make(map[string]meta.Property, len(res.Properties))
	for _, p := range res.Properties {
		out[p.Name] = p
	}
	return out
}

const widgetTypes = `export enum WidgetSize { SMALL = "sm", LARGE = "lg" }
export interface WidgetProps { size?: WidgetSize; onClick: () => void; }
`

func TestExtract_WidgetScenario(t *testing.T) {
	ext := setupExtractor(t)
	dir := writeComponent(t, map[string]string{"types.ts": widgetTypes})

	res, err := ext.Extract(dir, "Widget")
	require.NoError(t, err)

	require.Len(t, res.Enums, 1)
	assert.Equal(t, "WidgetSize", res.Enums[0].Name)
	assert.Equal(t, []meta.EnumMember{{Name: "SMALL", Value: `"sm"`}, {Name: "LARGE", Value: `"lg"`}}, res.Enums[0].Members)

	require.Len(t, res.Properties, 2)
	assert.Equal(t, meta.Property{Name: "size", Type: "WidgetSize", Required: false, Category: meta.CategoryAppearance}, res.Properties[0])
	assert.Equal(t, meta.Property{Name: "onClick", Type: "() => void", Required: true, Category: meta.CategoryEvents}, res.Properties[1])
	assert.Empty(t, res.TypeAliases)
}

func TestExtract_TypeAliasesAndEnums(t *testing.T) {
	ext := setupExtractor(t)
	dir := writeComponent(t, map[string]string{"types.ts": `
export enum Tone { NEUTRAL, DANGER = 2 }
export type Placement = "top" | "bottom";
export type TooltipProps = {
  placement?: Placement;
  content: React.ReactNode;
};
type InternalProps = { hidden: boolean };
`})

	res, err := ext.Extract(dir, "Tooltip")
	require.NoError(t, err)

	require.Len(t, res.Enums, 1)
	assert.Equal(t, []meta.EnumMember{{Name: "NEUTRAL"}, {Name: "DANGER", Value: "2"}}, res.Enums[0].Members)

	// Aliases ending in Props are not auxiliary types.
	require.Len(t, res.TypeAliases, 1)
	assert.Equal(t, meta.TypeAlias{Name: "Placement", Definition: `"top" | "bottom"`}, res.TypeAliases[0])

	props := propsByName(res)
	require.Len(t, props, 2)
	assert.Equal(t, "Placement", props["placement"].Type)
	assert.False(t, props["placement"].Required)
	assert.Equal(t, "React.ReactNode", props["content"].Type)
	assert.True(t, props["content"].Required)
}

func TestExtract_PrefersInterfaceOverAlias(t *testing.T) {
	ext := setupExtractor(t)
	dir := writeComponent(t, map[string]string{"types.ts": `
export type Props = { fromAlias: string };
export interface CardProps { fromInterface: string }
`})

	res, err := ext.Extract(dir, "Card")
	require.NoError(t, err)
	require.Len(t, res.Properties, 1)
	assert.Equal(t, "fromInterface", res.Properties[0].Name)
}

func TestExtract_FirstMatchInSourceOrder(t *testing.T) {
	ext := setupExtractor(t)
	dir := writeComponent(t, map[string]string{"types.ts": `
interface Props { first: string }
interface CardProps { second: string }
`})

	res, err := ext.Extract(dir, "Card")
	require.NoError(t, err)
	require.Len(t, res.Properties, 1)
	assert.Equal(t, "first", res.Properties[0].Name)
}

func TestExtract_IntersectionAndMethods(t *testing.T) {
	ext := setupExtractor(t)
	dir := writeComponent(t, map[string]string{"types.ts": `
type BaseProps = { id: string };
export type SwitchProps = BaseProps & {
  checked?: boolean;
  'aria-label': string;
} & { onToggle?(next: boolean): void; untyped };
`})

	res, err := ext.Extract(dir, "Switch")
	require.NoError(t, err)

	props := propsByName(res)
	require.Len(t, props, 4)
	assert.Equal(t, "boolean", props["checked"].Type)
	assert.Equal(t, "string", props["aria-label"].Type)
	assert.True(t, props["aria-label"].Required)
	assert.Equal(t, "(next: boolean) => void", props["onToggle"].Type)
	assert.False(t, props["onToggle"].Required)
	assert.Equal(t, meta.CategoryEvents, props["onToggle"].Category)
	assert.Equal(t, "unknown", props["untyped"].Type)
}

func TestExtract_NoPropsDeclaration(t *testing.T) {
	ext := setupExtractor(t)
	dir := writeComponent(t, map[string]string{"types.ts": `export enum Mode { A = "a" }`})

	res, err := ext.Extract(dir, "Modeless")
	require.NoError(t, err)
	assert.NotNil(t, res.Properties)
	assert.Empty(t, res.Properties)
	assert.Len(t, res.Enums, 1)
}

func TestExtract_MissingSource(t *testing.T) {
	ext := setupExtractor(t)
	dir := writeComponent(t, map[string]string{"styles.css": "x"})

	res, err := ext.Extract(dir, "Ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceNotFound)
	require.NotNil(t, res)
	assert.True(t, res.IsEmpty())
}

func TestExtract_MalformedSource(t *testing.T) {
	ext := setupExtractor(t)
	dir := writeComponent(t, map[string]string{"types.ts": `export interface BrokenProps { size?: ; }}} enum {`})

	res, err := ext.Extract(dir, "Broken")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "syntax error")
	require.NotNil(t, res)
	assert.True(t, res.IsEmpty())
}

func TestResolveSource_Order(t *testing.T) {
	ext := setupExtractor(t)

	tests := []struct {
		name  string
		files []string
		want  string
	}{
		{"types first", []string{"types.ts", "Types.ts", "Avatar.tsx", "index.ts"}, "types.ts"},
		{"component tsx before index", []string{"Avatar.tsx", "index.ts"}, "Avatar.tsx"},
		{"index last", []string{"index.ts", "Other.tsx"}, "index.ts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := map[string]string{}
			for _, f := range tt.files {
				files[f] = "export {};"
			}
			dir := writeComponent(t, files)

			path, ok := ext.ResolveSource(dir, "Avatar")
			require.True(t, ok)
			// Case-insensitive filesystems may report either casing for types.ts.
			assert.Equal(t, tt.want, filepath.Base(path))
		})
	}
}

func TestResolveSource_IgnoresDirectories(t *testing.T) {
	ext := setupExtractor(t)
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "types.ts"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.ts"), []byte("export {};"), 0644))

	path, ok := ext.ResolveSource(dir, "Avatar")
	require.True(t, ok)
	assert.Equal(t, "index.ts", filepath.Base(path))
}

func TestExtract_TSXComponentFile(t *testing.T) {
	ext := setupExtractor(t)
	dir := writeComponent(t, map[string]string{"Chip.tsx": `
export interface ChipProps { label: string; disabled?: boolean }
export const Chip = ({ label }: ChipProps) => <span>{label}</span>;
`})

	res, err := ext.Extract(dir, "Chip")
	require.NoError(t, err)
	props := propsByName(res)
	assert.Equal(t, meta.CategoryContent, props["label"].Category)
	assert.Equal(t, meta.CategoryState, props["disabled"].Category)
}

func TestExtract_JavaScriptPropTypes(t *testing.T) {
	ext := setupExtractor(t, "{name}.jsx")
	dir := writeComponent(t, map[string]string{"Badge.jsx": `
const Other = () => null;
Other.propTypes = { ignored: PropTypes.string };
export const Badge = ({ label }) => <span>{label}</span>;
Badge.propTypes = {
  label: PropTypes.string.isRequired,
  onDismiss: PropTypes.func,
  tone,
};
`})

	res, err := ext.Extract(dir, "Badge")
	require.NoError(t, err)

	props := propsByName(res)
	require.Len(t, props, 3)
	assert.Equal(t, meta.Property{Name: "label", Type: "string", Required: true, Category: meta.CategoryContent}, props["label"])
	assert.Equal(t, meta.Property{Name: "onDismiss", Type: "func", Required: false, Category: meta.CategoryEvents}, props["onDismiss"])
	assert.Equal(t, "unknown", props["tone"].Type)
	assert.Empty(t, res.Enums)
}

func TestPropTypeText(t *testing.T) {
	typ, req := propTypeText("PropTypes.oneOf(['a', 'b']).isRequired")
	assert.Equal(t, "oneOf(['a', 'b'])", typ)
	assert.True(t, req)

	typ, req = propTypeText("customValidator")
	assert.Equal(t, "customValidator", typ)
	assert.False(t, req)
}

func TestExtractor_Candidates(t *testing.T) {
	ext := setupExtractor(t)
	assert.Equal(t, DefaultCandidates, ext.Candidates())
}
