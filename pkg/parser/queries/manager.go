// Package queries provides tree-sitter query compilation, caching, and execution.
package queries

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/blendmeta/pkg/parser"
	"github.com/gnana997/blendmeta/pkg/parser/queries/declarations"
)

// QueryType identifies which query to execute.
type QueryType int

const (
	// QueryTypeDeclarations locates enums, type aliases and interfaces.
	QueryTypeDeclarations QueryType = iota
	// QueryTypePropTypes locates Component.propTypes assignments in JavaScript.
	QueryTypePropTypes
)

// String returns the string representation of a QueryType.
func (qt QueryType) String() string {
	switch qt {
	case QueryTypeDeclarations:
		return "declarations"
	case QueryTypePropTypes:
		return "proptypes"
	default:
		return "unknown"
	}
}

// queryKey uniquely identifies a compiled query. TSX trees need queries
// compiled against the TSX grammar, hence the extra flag.
type queryKey struct {
	lang  parser.Language
	isTSX bool
	qtype QueryType
}

// QueryManager compiles queries lazily and caches them per grammar.
//
// Usage:
//
//	qm := NewQueryManager(parserManager, logger)
//	defer qm.Close()
//
//	query, err := qm.GetQuery(parser.LanguageTypeScript, QueryTypeDeclarations, false)
//	if err != nil {
//	    return err
//	}
//	matches, err := qm.ExecuteQuery(tree, query, source)
type QueryManager struct {
	parserManager *parser.ParserManager
	cache         map[queryKey]*ts.Query
	mutex         sync.RWMutex
	logger        *slog.Logger
}

// NewQueryManager creates a new query manager.
func NewQueryManager(pm *parser.ParserManager, logger *slog.Logger) *QueryManager {
	if logger == nil {
		logger = slog.Default()
	}

	return &QueryManager{
		parserManager: pm,
		cache:         make(map[queryKey]*ts.Query),
		logger:        logger,
	}
}

// GetQuery returns the compiled query for a grammar and query type.
func (qm *QueryManager) GetQuery(lang parser.Language, qtype QueryType, isTSX bool) (*ts.Query, error) {
	key := queryKey{lang: lang, isTSX: isTSX && lang == parser.LanguageTypeScript, qtype: qtype}

	qm.mutex.RLock()
	query, ok := qm.cache[key]
	qm.mutex.RUnlock()
	if ok {
		return query, nil
	}

	qm.mutex.Lock()
	defer qm.mutex.Unlock()

	if query, ok = qm.cache[key]; ok {
		return query, nil
	}

	source, err := queryString(lang, qtype)
	if err != nil {
		return nil, err
	}

	langPtr, err := qm.parserManager.GetLanguagePointer(lang, key.isTSX)
	if err != nil {
		return nil, fmt.Errorf("failed to get language pointer for %s: %w", lang, err)
	}

	query, qerr := ts.NewQuery(ts.NewLanguage(langPtr), source)
	if qerr != nil {
		return nil, fmt.Errorf("failed to compile %s query for %s: %s", qtype, lang, qerr.Message)
	}
	qm.cache[key] = query

	qm.logger.Debug("compiled query", "language", lang.String(), "tsx", key.isTSX, "type", qtype.String())

	return query, nil
}

// queryString returns the query source for a language and type.
func queryString(lang parser.Language, qtype QueryType) (string, error) {
	switch {
	case qtype == QueryTypeDeclarations && lang == parser.LanguageTypeScript:
		return declarations.TSQueries, nil
	case qtype == QueryTypePropTypes && lang == parser.LanguageJavaScript:
		return declarations.JSQueries, nil
	default:
		return "", fmt.Errorf("%s queries not supported for language: %s", qtype, lang)
	}
}

// ExecuteQuery runs a compiled query over the whole tree.
func (qm *QueryManager) ExecuteQuery(tree *ts.Tree, query *ts.Query, source []byte) ([]QueryMatch, error) {
	if tree == nil {
		return nil, fmt.Errorf("tree is nil")
	}
	if query == nil {
		return nil, fmt.Errorf("query is nil")
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	captureNames := query.CaptureNames()
	iter := cursor.Matches(query, tree.RootNode(), source)

	var matches []QueryMatch
	for match := iter.Next(); match != nil; match = iter.Next() {
		captures := make([]QueryCapture, 0, len(match.Captures))
		for _, capture := range match.Captures {
			var name string
			if int(capture.Index) < len(captureNames) {
				name = captureNames[capture.Index]
			}
			category, field := parseCaptureName(name)
			node := capture.Node

			captures = append(captures, QueryCapture{
				Name:      name,
				Category:  category,
				Field:     field,
				Node:      &node,
				Text:      node.Utf8Text(source),
				StartByte: uint32(node.StartByte()),
			})
		}

		matches = append(matches, QueryMatch{
			PatternIndex: uint32(match.PatternIndex),
			Captures:     captures,
		})
	}

	return matches, nil
}

// Close releases all compiled queries.
func (qm *QueryManager) Close() error {
	qm.mutex.Lock()
	defer qm.mutex.Unlock()

	for key, query := range qm.cache {
		if query != nil {
			query.Close()
		}
		delete(qm.cache, key)
	}

	return nil
}

// QueryMatch represents a single pattern match from query execution.
type QueryMatch struct {
	PatternIndex uint32
	Captures     []QueryCapture
}

// Capture returns the first capture with the given full name, or nil.
func (m QueryMatch) Capture(name string) *QueryCapture {
	for i := range m.Captures {
		if m.Captures[i].Name == name {
			return &m.Captures[i]
		}
	}
	return nil
}

// QueryCapture represents a single captured node from a query match.
type QueryCapture struct {
	// Name is the full capture name (e.g., "enum.name").
	Name string
	// Category is the part before the dot (e.g., "enum").
	Category string
	// Field is the part after the dot (e.g., "name"); empty if there is none.
	Field string
	// Node is the captured AST node. Only valid while the tree is open.
	Node *ts.Node
	// Text is the source text of the captured node.
	Text string
	// StartByte is the node's 0-based byte offset.
	StartByte uint32
}

// parseCaptureName splits "enum.name" into ("enum", "name").
func parseCaptureName(name string) (category, field string) {
	if before, after, ok := strings.Cut(name, "."); ok {
		return before, after
	}
	return name, ""
}
