package solution

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	formatVersionRegex = regexp.MustCompile(`^Microsoft Visual Studio Solution File, Format Version (\S+)`)
	vsVersionRegex     = regexp.MustCompile(`^VisualStudioVersion = (\S+)`)
	minVSVersionRegex  = regexp.MustCompile(`^MinimumVisualStudioVersion = (\S+)`)

	// Project("{TYPE}") = "Name", "Path", "{GUID}"
	projectRegex = regexp.MustCompile(
		`(?i)^Project\("\{([A-F0-9-]+)\}"\)\s*=\s*"([^"]+)",\s*"([^"]+)",\s*"\{([A-F0-9-]+)\}"`,
	)
)

// SlnParser parses text-based .sln files
type SlnParser struct{}

// NewSlnParser creates a new .sln file parser
func NewSlnParser() *SlnParser {
	return &SlnParser{}
}

// CanParse checks if this parser supports the given file
func (p *SlnParser) CanParse(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".sln"
}

// Parse reads and parses a .sln file
func (p *SlnParser) Parse(path string) (*Solution, error) {
	if !p.CanParse(path) {
		return nil, &ParseError{
			FilePath: path,
			Message:  "not a .sln file",
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{
			FilePath: path,
			Message:  fmt.Sprintf("cannot open file: %v", err),
		}
	}
	defer file.Close()

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	sol := &Solution{
		FilePath:    absPath,
		SolutionDir: filepath.Dir(absPath),
		Projects:    []Project{},
	}

	scanner := bufio.NewScanner(file)
	lineNum := 0
	inProject := false
	var current *Project

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmedLine := strings.TrimSpace(line)

		if trimmedLine == "" || strings.HasPrefix(trimmedLine, "#") {
			continue
		}

		if matches := formatVersionRegex.FindStringSubmatch(line); matches != nil {
			sol.FormatVersion = matches[1]
			continue
		}

		if matches := vsVersionRegex.FindStringSubmatch(line); matches != nil {
			sol.VisualStudioVersion = matches[1]
			continue
		}

		if matches := minVSVersionRegex.FindStringSubmatch(line); matches != nil {
			sol.MinimumVisualStudioVersion = matches[1]
			continue
		}

		if matches := projectRegex.FindStringSubmatch(line); matches != nil {
			if inProject {
				return nil, &ParseError{
					FilePath: path,
					Line:     lineNum,
					Message:  "nested Project entry: missing EndProject",
				}
			}
			inProject = true

			typeGUID := "{" + strings.ToUpper(matches[1]) + "}"
			if typeGUID == ProjectTypeSolutionFolder {
				continue
			}
			current = &Project{
				Name:     matches[2],
				Path:     NormalizePath(matches[3]),
				GUID:     "{" + strings.ToUpper(matches[4]) + "}",
				TypeGUID: typeGUID,
			}
			continue
		}

		if trimmedLine == "EndProject" {
			if current != nil {
				sol.Projects = append(sol.Projects, *current)
				current = nil
			}
			inProject = false
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, &ParseError{
			FilePath: path,
			Message:  fmt.Sprintf("error reading file: %v", err),
		}
	}

	if inProject {
		return nil, &ParseError{
			FilePath: path,
			Line:     lineNum,
			Message:  "unexpected end of file: missing EndProject",
		}
	}

	return sol, nil
}
