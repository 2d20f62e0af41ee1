// Package extractor reads a component's source file and extracts the
// type-level declarations its documentation is generated from.
package extractor

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnana997/blendmeta/pkg/meta"
	"github.com/gnana997/blendmeta/pkg/parser"
	"github.com/gnana997/blendmeta/pkg/parser/queries"
	"github.com/gnana997/blendmeta/pkg/util"
)

var (
	// ErrSourceNotFound means none of the candidate files exist for a component.
	ErrSourceNotFound = errors.New("no candidate source file found")
	// ErrParse means the resolved source file could not be parsed cleanly.
	ErrParse = errors.New("source parse failed")
)

// NamePlaceholder is replaced by the component name in candidate patterns.
const NamePlaceholder = "{name}"

// DefaultCandidates is the file resolution order inside a component
// directory. The first existing file wins.
var DefaultCandidates = []string{"types.ts", "Types.ts", NamePlaceholder + ".tsx", "index.ts"}

// Extractor resolves and parses component source files.
//
// Usage:
//
//	ext := NewExtractor(parserManager, queryManager, nil, logger)
//	res, err := ext.Extract("lib/components/Button", "Button")
//	// res is never nil; err classifies why it may be empty.
type Extractor struct {
	parserManager *parser.ParserManager
	queryManager  *queries.QueryManager
	candidates    []string
	logger        *slog.Logger
}

// NewExtractor creates an extractor. A nil or empty candidates list selects
// DefaultCandidates.
func NewExtractor(pm *parser.ParserManager, qm *queries.QueryManager, candidates []string, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}

	return &Extractor{
		parserManager: pm,
		queryManager:  qm,
		candidates:    candidates,
		logger:        logger,
	}
}

// Candidates returns the candidate file patterns in resolution order.
func (e *Extractor) Candidates() []string {
	return append([]string(nil), e.candidates...)
}

// ResolveSource returns the first candidate file that exists as a regular
// file in componentDir.
func (e *Extractor) ResolveSource(componentDir, name string) (string, bool) {
	for _, pattern := range e.candidates {
		path := filepath.Join(componentDir, strings.ReplaceAll(pattern, NamePlaceholder, name))
		info, err := os.Stat(path)
		if err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

// Extract resolves the source file for component name inside componentDir
// and extracts its declarations.
//
// The returned result is never nil. When no source file exists the error
// wraps ErrSourceNotFound; when the file cannot be parsed it wraps ErrParse.
// In both cases the result is empty.
func (e *Extractor) Extract(componentDir, name string) (*meta.ExtractionResult, error) {
	path, ok := e.ResolveSource(componentDir, name)
	if !ok {
		return meta.NewExtractionResult(), fmt.Errorf("%w in %s (tried %s)",
			ErrSourceNotFound, componentDir, strings.Join(e.candidates, ", "))
	}

	var res *meta.ExtractionResult
	err := util.WithMappedFile(path, func(source []byte) error {
		var extractErr error
		res, extractErr = e.ExtractSource(path, name, source)
		return extractErr
	})
	if err != nil {
		return meta.NewExtractionResult(), err
	}

	e.logger.Debug("extracted declarations",
		"component", name,
		"file", path,
		"props", len(res.Properties),
		"enums", len(res.Enums),
		"aliases", len(res.TypeAliases))

	return res, nil
}

// ExtractSource extracts declarations from already-loaded source. filePath
// selects the grammar; name selects the props declaration.
func (e *Extractor) ExtractSource(filePath, name string, source []byte) (*meta.ExtractionResult, error) {
	lang := parser.DetectLanguage(filePath)
	if lang == parser.LanguageUnknown {
		return meta.NewExtractionResult(), fmt.Errorf("%w: unsupported file type %s", ErrParse, filepath.Base(filePath))
	}
	isTSX := parser.IsTSXFile(filePath)

	tree, err := e.parserManager.ParseFile(source, filePath)
	if err != nil {
		return meta.NewExtractionResult(), fmt.Errorf("%w: %s: %w", ErrParse, filePath, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return meta.NewExtractionResult(), fmt.Errorf("%w: %s: syntax error at %s",
			ErrParse, filePath, firstErrorPosition(root))
	}

	switch lang {
	case parser.LanguageJavaScript:
		return e.extractPropTypes(tree, source, name)
	default:
		return e.extractDeclarations(tree, source, name, isTSX)
	}
}
