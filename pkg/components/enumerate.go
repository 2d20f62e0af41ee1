// Package components lists the component directories that need generated
// metadata.
package components

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrDirectoryRead is returned when the components root cannot be listed.
var ErrDirectoryRead = errors.New("component directory read failed")

// OutputSuffix is appended to the lowercased component name to form the
// metadata file name.
const OutputSuffix = ".context.ts"

// Candidate is a component directory lacking hand-written metadata.
type Candidate struct {
	Name string
}

// OutputFile returns the metadata file name for the candidate.
func (c Candidate) OutputFile() string {
	return OutputFileName(c.Name)
}

// OutputFileName returns the metadata file name for a component name.
func OutputFileName(name string) string {
	return strings.ToLower(name) + OutputSuffix
}

// Exclusions matches component names against the hand-written metadata list.
// Entries are compared case-insensitively; an entry containing glob
// metacharacters (e.g. "chart*") is matched as a doublestar pattern.
type Exclusions struct {
	exact    map[string]struct{}
	patterns []string
}

// NewExclusions validates and compiles an exclusion list.
func NewExclusions(entries []string) (*Exclusions, error) {
	ex := &Exclusions{exact: make(map[string]struct{}, len(entries))}
	for _, entry := range entries {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if !strings.ContainsAny(entry, "*?[{") {
			ex.exact[entry] = struct{}{}
			continue
		}
		if !doublestar.ValidatePattern(entry) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", entry)
		}
		ex.patterns = append(ex.patterns, entry)
	}
	return ex, nil
}

// Excluded reports whether name is covered by the list.
func (e *Exclusions) Excluded(name string) bool {
	if e == nil {
		return false
	}
	lower := strings.ToLower(name)
	if _, ok := e.exact[lower]; ok {
		return true
	}
	for _, pattern := range e.patterns {
		if matched, _ := doublestar.Match(pattern, lower); matched {
			return true
		}
	}
	return false
}

// Enumerate lists the component directories under root, in name order,
// skipping plain files and every name covered by exclude.
func Enumerate(root string, exclude []string) ([]Candidate, error) {
	ex, err := NewExclusions(exclude)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDirectoryRead, root, err)
	}

	candidates := make([]Candidate, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || ex.Excluded(entry.Name()) {
			continue
		}
		candidates = append(candidates, Candidate{Name: entry.Name()})
	}

	return candidates, nil
}
