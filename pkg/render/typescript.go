// Package render turns metadata documents into TypeScript source and writes
// them to the docs metadata directory.
package render

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"unicode"

	"github.com/gnana997/blendmeta/pkg/meta"
)

// Header is the first line of every generated file.
const Header = "// Code generated by blendmeta from component type declarations. DO NOT EDIT."

// Serialize renders doc as a TypeScript module whose default export is the
// metadata object. Output depends only on doc.
func Serialize(doc *meta.Document) []byte {
	w := &tsWriter{}

	w.line(0, Header)
	w.blank()
	w.line(0, "const "+VariableName(doc.ComponentName)+" = {")

	w.field(1, "componentName", quote(doc.ComponentName))
	w.field(1, "componentDescription", quote(doc.ComponentDescription))

	w.array(1, "features", len(doc.Features), func(i int) {
		w.line(2, quote(doc.Features[i])+",")
	})

	w.array(1, "usageExamples", len(doc.UsageExamples), func(i int) {
		ex := doc.UsageExamples[i]
		w.line(2, "{")
		w.field(3, "title", quote(ex.Title))
		w.field(3, "description", quote(ex.Description))
		w.field(3, "code", quote(ex.Code))
		w.line(2, "},")
	})

	w.array(1, "props", len(doc.Props), func(i int) {
		p := doc.Props[i]
		w.line(2, "{")
		w.field(3, "propName", quote(p.PropName))
		w.field(3, "propType", quote(p.PropType))
		w.field(3, "typeDefinition", quote(p.TypeDefinition))
		w.field(3, "propDescription", quote(p.PropDescription))
		w.field(3, "llmContext", quote(p.LLMContext))
		w.field(3, "propDefault", quote(p.PropDefault))
		w.field(3, "category", quote(string(p.Category)))
		w.field(3, "required", strconv.FormatBool(p.Required))
		w.line(2, "},")
	})

	w.line(0, "};")
	w.blank()
	w.line(0, "export default "+VariableName(doc.ComponentName)+";")

	return w.buf.Bytes()
}

// VariableName returns the exported constant name for a component, e.g.
// "DataTable" -> "dataTableMeta".
func VariableName(componentName string) string {
	var b strings.Builder
	for _, r := range componentName {
		if r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" {
		return "componentMeta"
	}

	runes := []rune(name)
	runes[0] = unicode.ToLower(runes[0])
	if unicode.IsDigit(runes[0]) {
		runes = append([]rune{'_'}, runes...)
	}
	return string(runes) + "Meta"
}

type tsWriter struct {
	buf bytes.Buffer
}

func (w *tsWriter) line(indent int, s string) {
	w.buf.WriteString(strings.Repeat("  ", indent))
	w.buf.WriteString(s)
	w.buf.WriteByte('\n')
}

func (w *tsWriter) blank() {
	w.buf.WriteByte('\n')
}

func (w *tsWriter) field(indent int, key, value string) {
	w.line(indent, key+": "+value+",")
}

func (w *tsWriter) array(indent int, key string, n int, item func(i int)) {
	if n == 0 {
		w.line(indent, key+": [],")
		return
	}
	w.line(indent, key+": [")
	for i := 0; i < n; i++ {
		item(i)
	}
	w.line(indent, "],")
}

// quote renders s as a double-quoted string literal. JSON string syntax is
// valid TypeScript; HTML escaping is disabled so JSX samples stay readable.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return strconv.Quote(s)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
