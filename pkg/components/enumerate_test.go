package components

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTree(t *testing.T, dirs []string, files []string) string {
	t.Helper()
	root := t.TempDir()
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0755))
	}
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, f), []byte("x"), 0644))
	}
	return root
}

func names(cs []Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Name)
	}
	return out
}

func TestEnumerate_DirectoriesOnlyInOrder(t *testing.T) {
	root := makeTree(t, []string{"Switch", "Avatar", "Checkbox"}, []string{"index.ts", "README.md"})

	got, err := Enumerate(root, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Avatar", "Checkbox", "Switch"}, names(got))
}

func TestEnumerate_CaseInsensitiveExclusion(t *testing.T) {
	root := makeTree(t, []string{"Button", "DataTable", "Tabs", "Tooltip", "StatCard"}, nil)

	got, err := Enumerate(root, []string{"button", "datatable", "TABS", "statcard"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Tooltip"}, names(got))
}

func TestEnumerate_GlobExclusion(t *testing.T) {
	root := makeTree(t, []string{"Charts", "ChartLegend", "Modal", "Menu"}, nil)

	got, err := Enumerate(root, []string{"chart*", "mod?l"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Menu"}, names(got))
}

func TestEnumerate_InvalidPattern(t *testing.T) {
	root := makeTree(t, []string{"Button"}, nil)

	_, err := Enumerate(root, []string{"[unclosed"})
	assert.Error(t, err)
}

func TestEnumerate_MissingRoot(t *testing.T) {
	_, err := Enumerate(filepath.Join(t.TempDir(), "missing"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDirectoryRead)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEnumerate_RootIsFile(t *testing.T) {
	root := makeTree(t, nil, []string{"components"})

	_, err := Enumerate(filepath.Join(root, "components"), nil)
	assert.ErrorIs(t, err, ErrDirectoryRead)
}

func TestOutputFileName(t *testing.T) {
	assert.Equal(t, "datatable.context.ts", OutputFileName("DataTable"))
	assert.Equal(t, "widget.context.ts", Candidate{Name: "Widget"}.OutputFile())
}

func TestExclusions_NilAndBlank(t *testing.T) {
	var ex *Exclusions
	assert.False(t, ex.Excluded("Button"))

	ex, err := NewExclusions([]string{"", "  "})
	require.NoError(t, err)
	assert.False(t, ex.Excluded("Button"))
}
