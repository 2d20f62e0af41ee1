package util

import "runtime"

// GetOptimalPoolSize returns the default number of pooled parsers per grammar.
//
// Formula: min(max(runtime.NumCPU(), 2), 8)
func GetOptimalPoolSize() int {
	size := runtime.NumCPU()
	if size < 2 {
		size = 2
	}
	if size > 8 {
		size = 8
	}
	return size
}
