package parser

import (
	"github.com/gnana997/blendmeta/pkg/util"
)

// getPoolSize returns the number of parsers a grammar pool may hold.
func getPoolSize() int {
	return util.GetOptimalPoolSize()
}
