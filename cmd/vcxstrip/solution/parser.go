package solution

import (
	"path/filepath"
)

// Parser is implemented by every solution format reader
type Parser interface {
	CanParse(path string) bool
	Parse(path string) (*Solution, error)
}

var parsers = []Parser{
	NewSlnParser(),
	NewSlnxParser(),
}

// Parse reads a solution file with the parser matching its extension
func Parse(path string) (*Solution, error) {
	for _, p := range parsers {
		if p.CanParse(path) {
			return p.Parse(path)
		}
	}
	return nil, &ParseError{
		FilePath: path,
		Message:  "unsupported solution format " + filepath.Ext(path) + " (expected .sln or .slnx)",
	}
}
