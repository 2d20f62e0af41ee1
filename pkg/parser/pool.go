package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// parserPool keeps up to maxSize parsers for a single grammar. Parsers are
// created lazily; once maxSize is reached acquire blocks until one is released.
type parserPool struct {
	pool    chan *ts.Parser
	langPtr unsafe.Pointer
	lang    Language
	isTSX   bool
	maxSize int

	mutex   sync.Mutex
	created int
	closed  bool

	logger *slog.Logger
}

func newParserPool(lang Language, langPtr unsafe.Pointer, isTSX bool, maxSize int, logger *slog.Logger) *parserPool {
	return &parserPool{
		pool:    make(chan *ts.Parser, maxSize),
		langPtr: langPtr,
		lang:    lang,
		isTSX:   isTSX,
		maxSize: maxSize,
		logger:  logger,
	}
}

var errPoolClosed = errors.New("parser pool closed")

func (p *parserPool) acquire() (*ts.Parser, error) {
	select {
	case parser, ok := <-p.pool:
		if !ok {
			return nil, errPoolClosed
		}
		return parser, nil
	default:
	}

	p.mutex.Lock()
	if p.closed {
		p.mutex.Unlock()
		return nil, errPoolClosed
	}
	if p.created >= p.maxSize {
		p.mutex.Unlock()
		parser, ok := <-p.pool
		if !ok {
			return nil, errPoolClosed
		}
		return parser, nil
	}
	defer p.mutex.Unlock()

	parser := ts.NewParser()
	if parser == nil {
		return nil, fmt.Errorf("failed to create parser")
	}
	if err := parser.SetLanguage(ts.NewLanguage(p.langPtr)); err != nil {
		parser.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	p.created++

	p.logger.Debug("created parser",
		"language", p.lang.String(),
		"tsx", p.isTSX,
		"pool_size", p.created)

	return parser, nil
}

// release returns parser to the pool. After close the parser is freed
// instead.
func (p *parserPool) release(parser *ts.Parser) {
	if parser == nil {
		return
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		parser.Close()
		return
	}
	select {
	case p.pool <- parser:
	default:
		parser.Close()
		p.logger.Warn("parser pool full, closing excess parser", "language", p.lang.String())
	}
}

// close drains and closes every idle parser. The pool cannot be used afterwards.
func (p *parserPool) close() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.pool)
	for parser := range p.pool {
		if parser != nil {
			parser.Close()
		}
	}
}

func (p *parserPool) getCreatedCount() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.created
}
