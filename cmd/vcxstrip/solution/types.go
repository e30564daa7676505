// Package solution reads Visual Studio solution files (.sln, .slnx) to find the projects they reference.
package solution

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Solution represents a parsed solution file
type Solution struct {
	// FilePath is the absolute path to the solution file
	FilePath string

	// FormatVersion is the solution file format version (e.g., "12.00" for VS 2013+)
	FormatVersion string

	// VisualStudioVersion is the Visual Studio version that created the file
	VisualStudioVersion string

	// MinimumVisualStudioVersion is the minimum VS version required
	MinimumVisualStudioVersion string

	// Projects contains all projects in the solution (excludes solution folders)
	Projects []Project

	// SolutionDir is the directory containing the solution file
	SolutionDir string
}

// Project represents a project reference in a solution
type Project struct {
	Name string

	// Path is the project file path as written in the solution, with forward slashes
	Path string

	GUID     string
	TypeGUID string
}

// ParseError represents an error during solution file parsing
type ParseError struct {
	FilePath string
	Line     int
	Message  string
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.FilePath, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// ProjectType GUIDs relevant to C++ solutions
const (
	// ProjectTypeVCProject identifies a Visual C++ project (.vcxproj)
	ProjectTypeVCProject = "{8BC9CEB8-8B4A-11D0-8D11-00A0C91EEA6F}"

	// ProjectTypeSolutionFolder identifies a solution folder
	ProjectTypeSolutionFolder = "{2150E333-8FDC-42A3-9474-1A3956D46DE8}"

	// ProjectTypeSharedProject identifies a shared items project (.vcxitems)
	ProjectTypeSharedProject = "{D954291E-2A0B-460D-934E-DC6B0785DB48}"
)

// IsVCProject returns true if the project is a Visual C++ project file
func (p *Project) IsVCProject() bool {
	return strings.EqualFold(filepath.Ext(p.Path), ".vcxproj")
}

// VCProjectPaths returns the resolved paths of the Visual C++ projects only
func (s *Solution) VCProjectPaths() []string {
	var paths []string
	for _, project := range s.Projects {
		if project.IsVCProject() {
			paths = append(paths, ResolveProjectPath(s.SolutionDir, project.Path))
		}
	}
	return paths
}
