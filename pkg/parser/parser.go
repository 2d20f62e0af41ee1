package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

var errManagerClosed = errors.New("parser manager closed")

// grammarKey identifies one parser pool (language + TSX variant).
type grammarKey struct {
	lang  Language
	isTSX bool
}

// ParserManager hands out tree-sitter parsers for the supported grammars.
//
// Pools are created lazily on first use per grammar. The manager owns the
// pools and must be closed via Close(); callers own every Tree returned by
// Parse and must call tree.Close() when done with it.
//
// Example:
//
//	manager := NewParserManager(logger)
//	defer manager.Close()
//
//	tree, err := manager.ParseFile(source, "Button/types.ts")
//	if err != nil {
//	    return err
//	}
//	defer tree.Close()
type ParserManager struct {
	pools    map[grammarKey]*parserPool
	poolSize int
	closed   bool
	mutex    sync.RWMutex
	logger   *slog.Logger

	stats struct {
		parsesCalled int
	}
}

// NewParserManager creates a new ParserManager with the default pool size.
func NewParserManager(logger *slog.Logger) *ParserManager {
	if logger == nil {
		logger = slog.Default()
	}

	return &ParserManager{
		pools:    make(map[grammarKey]*parserPool),
		poolSize: getPoolSize(),
		logger:   logger,
	}
}

// Parse parses source with the grammar for lang. isTSX is only meaningful
// for TypeScript.
//
// A tree containing syntax errors is still returned; callers decide whether
// a partial tree is acceptable (see Tree.RootNode().HasError()).
func (pm *ParserManager) Parse(source []byte, lang Language, isTSX bool) (*ts.Tree, error) {
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("cannot parse unknown language")
	}

	pm.mutex.Lock()
	if pm.closed {
		pm.mutex.Unlock()
		return nil, errManagerClosed
	}
	pm.stats.parsesCalled++
	pm.mutex.Unlock()

	pool, err := pm.getOrCreatePool(lang, isTSX)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool for %s: %w", lang, err)
	}

	p, err := pool.acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire parser: %w", err)
	}
	tree := p.Parse(source, nil)
	pool.release(p)

	if tree == nil {
		return nil, fmt.Errorf("parser returned nil tree")
	}

	if tree.RootNode().HasError() {
		pm.logger.Debug("parse tree contains errors", "language", lang.String(), "tsx", isTSX)
	}

	return tree, nil
}

// ParseFile parses source using the grammar detected from filePath.
func (pm *ParserManager) ParseFile(source []byte, filePath string) (*ts.Tree, error) {
	lang := DetectLanguage(filePath)
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("unsupported file extension: %s", filePath)
	}
	return pm.Parse(source, lang, IsTSXFile(filePath))
}

// Close releases every parser pool. Parses still running finish normally;
// later calls to Parse fail.
func (pm *ParserManager) Close() error {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	pm.closed = true
	for key, pool := range pm.pools {
		pool.close()
		pm.logger.Debug("closed parser pool", "language", key.lang.String(), "tsx", key.isTSX)
	}
	pm.pools = make(map[grammarKey]*parserPool)

	pm.logger.Debug("parser manager closed", "parses_called", pm.stats.parsesCalled)
	return nil
}

// getOrCreatePool returns the pool for a grammar, creating it on first use.
func (pm *ParserManager) getOrCreatePool(lang Language, isTSX bool) (*parserPool, error) {
	key := grammarKey{lang: lang, isTSX: isTSX}

	pm.mutex.RLock()
	pool, ok := pm.pools[key]
	pm.mutex.RUnlock()
	if ok {
		return pool, nil
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	if pool, ok = pm.pools[key]; ok {
		return pool, nil
	}
	if pm.closed {
		return nil, errManagerClosed
	}

	langPtr, err := pm.GetLanguagePointer(lang, isTSX)
	if err != nil {
		return nil, err
	}

	pool = newParserPool(lang, langPtr, isTSX, pm.poolSize, pm.logger)
	pm.pools[key] = pool
	return pool, nil
}

// GetLanguagePointer returns the grammar pointer for lang. QueryManager uses
// it to compile queries against the same grammar the trees were parsed with.
func (pm *ParserManager) GetLanguagePointer(lang Language, isTSX bool) (unsafe.Pointer, error) {
	switch lang {
	case LanguageTypeScript:
		if isTSX {
			return ts_typescript.LanguageTSX(), nil
		}
		return ts_typescript.LanguageTypescript(), nil
	case LanguageJavaScript:
		return ts_javascript.Language(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang.String())
	}
}

// GetStats returns parser usage statistics.
func (pm *ParserManager) GetStats() ParserStats {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	created := 0
	for _, pool := range pm.pools {
		created += pool.getCreatedCount()
	}
	return ParserStats{
		ParsersCreated: created,
		ParsesCalled:   pm.stats.parsesCalled,
	}
}

// ParserStats contains parser usage statistics.
type ParserStats struct {
	ParsersCreated int
	ParsesCalled   int
}
