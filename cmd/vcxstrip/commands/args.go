package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/willibrandon/vcxstrip/cmd/vcxstrip/project"
	"github.com/willibrandon/vcxstrip/cmd/vcxstrip/solution"
)

// expandArgs expands glob patterns (including **) in args, keeping argument order.
// An existing file is never treated as a pattern, and a pattern without matches
// is kept as given so it is reported as skipped.
func expandArgs(args []string) []string {
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			paths = append(paths, arg)
			continue
		}
		if _, err := os.Stat(arg); err == nil {
			paths = append(paths, arg)
			continue
		}

		matches, err := doublestar.FilepathGlob(arg)
		if err != nil || len(matches) == 0 {
			paths = append(paths, arg)
			continue
		}
		paths = append(paths, matches...)
	}
	return paths
}

// solutionProjects returns the .vcxproj paths listed by each solution file, in order.
func solutionProjects(solutions []string) ([]string, error) {
	var paths []string
	for _, slnPath := range solutions {
		sol, err := solution.Parse(slnPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read solution: %w", err)
		}
		paths = append(paths, sol.VCProjectPaths()...)
	}
	return paths, nil
}

// isProjectFile reports whether path names an existing regular file with the .vcxproj extension.
// The extension match is case-sensitive and a bare ".vcxproj" name has no extension.
func isProjectFile(path string) bool {
	base := filepath.Base(path)
	if filepath.Ext(base) != project.Extension || base == project.Extension {
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// displayPath renders path the way it is echoed in result lines.
func displayPath(path string) string {
	return filepath.Clean(path)
}
