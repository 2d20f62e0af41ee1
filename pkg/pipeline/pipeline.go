// Package pipeline runs metadata generation for every eligible component:
// enumerate, extract, build, serialize, write.
package pipeline

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/blendmeta/pkg/components"
	"github.com/gnana997/blendmeta/pkg/extractor"
	"github.com/gnana997/blendmeta/pkg/meta"
	"github.com/gnana997/blendmeta/pkg/parser"
	"github.com/gnana997/blendmeta/pkg/parser/queries"
	"github.com/gnana997/blendmeta/pkg/render"
)

var (
	// ErrExcluded is returned when a single-component request names a
	// component with hand-written metadata.
	ErrExcluded = errors.New("component has hand-written metadata")
	// ErrUnknownComponent is returned when a single-component request names a
	// directory that does not exist under the components root.
	ErrUnknownComponent = errors.New("unknown component")
)

// Config is everything the pipeline needs to know about the repository
// layout. Nothing is read from package-level state.
type Config struct {
	// ComponentsDir holds one subdirectory per UI component.
	ComponentsDir string
	// OutputDir receives <lowercased-name>.context.ts files.
	OutputDir string
	// Exclude lists components with hand-written metadata (case-insensitive,
	// glob patterns allowed).
	Exclude []string
	// Candidates overrides the source file resolution order.
	Candidates []string
}

// Status classifies how one component's processing ended.
type Status string

const (
	// StatusWritten means the document was written from a clean extraction.
	StatusWritten Status = "written"
	// StatusDegraded means extraction failed and an empty document was written.
	StatusDegraded Status = "degraded"
	// StatusUnchanged means the identical document was already on disk.
	StatusUnchanged Status = "unchanged"
	// StatusFailed means nothing was written.
	StatusFailed Status = "failed"
)

// Outcome records the result of processing one component.
type Outcome struct {
	Component  string        `json:"component"`
	OutputPath string        `json:"outputPath,omitempty"`
	Props      int           `json:"props"`
	Status     Status        `json:"status"`
	Err        error         `json:"-"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"-"`
}

// Summary aggregates a batch run.
type Summary struct {
	Discovered int       `json:"discovered"`
	Written    int       `json:"written"`
	Degraded   int       `json:"degraded"`
	Unchanged  int       `json:"unchanged"`
	Failed     int       `json:"failed"`
	Outcomes   []Outcome `json:"outcomes"`
}

// HasFailures reports whether any component degraded or failed.
func (s *Summary) HasFailures() bool {
	return s.Degraded > 0 || s.Failed > 0
}

func (s *Summary) add(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	switch o.Status {
	case StatusWritten:
		s.Written++
	case StatusDegraded:
		s.Degraded++
	case StatusUnchanged:
		s.Unchanged++
	case StatusFailed:
		s.Failed++
	}
}

// Generator owns the parsing resources for a run.
//
// Usage:
//
//	gen, err := pipeline.NewGenerator(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	defer gen.Close()
//	summary, err := gen.Run(ctx)
type Generator struct {
	cfg        Config
	exclusions *components.Exclusions
	pm         *parser.ParserManager
	qm         *queries.QueryManager
	ext        *extractor.Extractor
	digests    *lru.Cache[string, [sha256.Size]byte]
	logger     *slog.Logger
}

// NewGenerator validates cfg and prepares the parsers.
func NewGenerator(cfg Config, logger *slog.Logger) (*Generator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ComponentsDir == "" {
		return nil, fmt.Errorf("components directory is required")
	}
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	exclusions, err := components.NewExclusions(cfg.Exclude)
	if err != nil {
		return nil, err
	}

	pm := parser.NewParserManager(logger)
	qm := queries.NewQueryManager(pm, logger)

	return &Generator{
		cfg:        cfg,
		exclusions: exclusions,
		pm:         pm,
		qm:         qm,
		ext:        extractor.NewExtractor(pm, qm, cfg.Candidates, logger),
		logger:     logger,
	}, nil
}

// Config returns the generator's configuration.
func (g *Generator) Config() Config {
	return g.cfg
}

// EnableDigestCache makes ProcessComponent skip writing documents identical
// to the last one it wrote for the same component. Used by long-running
// modes (watch, MCP); a one-shot run always writes.
func (g *Generator) EnableDigestCache(size int) error {
	cache, err := lru.New[string, [sha256.Size]byte](size)
	if err != nil {
		return fmt.Errorf("create digest cache: %w", err)
	}
	g.digests = cache
	return nil
}

// Close releases parser and query resources.
func (g *Generator) Close() {
	stats := g.pm.GetStats()
	g.logger.Debug("parser stats", "parses", stats.ParsesCalled, "parsers_created", stats.ParsersCreated)
	g.qm.Close()
	g.pm.Close()
}

// Candidates enumerates the components eligible for generation.
func (g *Generator) Candidates() ([]components.Candidate, error) {
	return components.Enumerate(g.cfg.ComponentsDir, g.cfg.Exclude)
}

// Excluded reports whether name has hand-written metadata.
func (g *Generator) Excluded(name string) bool {
	return g.exclusions.Excluded(name)
}

// Extract runs the declaration extractor for one component. The result is
// never nil.
func (g *Generator) Extract(name string) (*meta.ExtractionResult, error) {
	return g.ext.Extract(filepath.Join(g.cfg.ComponentsDir, name), name)
}

// Document extracts and builds the metadata document for one component
// without writing it.
func (g *Generator) Document(name string) (*meta.Document, error) {
	if err := g.checkComponent(name); err != nil {
		return nil, err
	}
	res, err := g.Extract(name)
	return meta.BuildDocument(name, res), err
}

// Run processes every eligible component in enumeration order. Only a
// failure to list the components directory is returned as an error;
// per-component failures are logged and recorded in the summary.
// Cancelling ctx stops the batch between components.
func (g *Generator) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()

	candidates, err := g.Candidates()
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Discovered: len(candidates),
		Outcomes:   make([]Outcome, 0, len(candidates)),
	}
	g.logger.Info("discovered components",
		"root", g.cfg.ComponentsDir,
		"count", len(candidates))

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			g.logger.Warn("generation cancelled", "processed", len(summary.Outcomes))
			return summary, err
		}
		summary.add(g.process(c.Name))
	}

	g.logger.Info("metadata generation complete",
		"discovered", summary.Discovered,
		"written", summary.Written,
		"degraded", summary.Degraded,
		"unchanged", summary.Unchanged,
		"failed", summary.Failed,
		"ms", time.Since(start).Milliseconds())

	return summary, nil
}

// ProcessComponent generates metadata for a single named component. It
// refuses excluded and unknown names.
func (g *Generator) ProcessComponent(name string) Outcome {
	if err := g.checkComponent(name); err != nil {
		g.logger.Warn("component not processed", "component", name, "error", err)
		return Outcome{Component: name, Status: StatusFailed, Err: err, Error: err.Error()}
	}
	return g.process(name)
}

func (g *Generator) checkComponent(name string) error {
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("%w: %q", ErrUnknownComponent, name)
	}
	if g.Excluded(name) {
		return fmt.Errorf("%w: %s", ErrExcluded, name)
	}
	info, err := os.Stat(filepath.Join(g.cfg.ComponentsDir, name))
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, name)
	}
	return nil
}

// process runs extract -> build -> serialize -> write for one component.
// Extraction errors degrade to an empty document; write errors are recorded.
func (g *Generator) process(name string) Outcome {
	start := time.Now()
	outcome := Outcome{Component: name, Status: StatusWritten}

	res, extractErr := g.Extract(name)
	if extractErr != nil {
		outcome.Status = StatusDegraded
		outcome.Err = extractErr
		outcome.Error = extractErr.Error()

		if errors.Is(extractErr, extractor.ErrSourceNotFound) {
			g.logger.Warn("no source file for component, writing empty metadata",
				"component", name, "error", extractErr)
		} else {
			g.logger.Error("failed to extract component declarations, writing empty metadata",
				"component", name, "error", extractErr)
		}
	}

	doc := meta.BuildDocument(name, res)
	data := render.Serialize(doc)
	outcome.Props = len(doc.Props)
	outcome.OutputPath = render.OutputPath(g.cfg.OutputDir, name)

	if g.unchanged(name, outcome.OutputPath, data) {
		if outcome.Status == StatusWritten {
			outcome.Status = StatusUnchanged
		}
		outcome.Duration = time.Since(start)
		g.logger.Debug("metadata unchanged", "component", name, "path", outcome.OutputPath)
		return outcome
	}

	if _, err := render.WriteBytes(g.cfg.OutputDir, name, data); err != nil {
		outcome.Status = StatusFailed
		outcome.Err = err
		outcome.Error = err.Error()
		outcome.Duration = time.Since(start)
		g.logger.Error("failed to write metadata", "component", name, "path", outcome.OutputPath, "error", err)
		return outcome
	}
	g.remember(name, data)

	outcome.Duration = time.Since(start)
	g.logger.Info("generated metadata",
		"component", name,
		"path", outcome.OutputPath,
		"props", outcome.Props,
		"status", outcome.Status)

	return outcome
}

func (g *Generator) unchanged(name, path string, data []byte) bool {
	if g.digests == nil {
		return false
	}
	prev, ok := g.digests.Get(name)
	if !ok || prev != sha256.Sum256(data) {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func (g *Generator) remember(name string, data []byte) {
	if g.digests != nil {
		g.digests.Add(name, sha256.Sum256(data))
	}
}
