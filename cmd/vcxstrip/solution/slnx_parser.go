package solution

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SlnxParser parses XML-based .slnx files
type SlnxParser struct{}

// NewSlnxParser creates a new .slnx file parser
func NewSlnxParser() *SlnxParser {
	return &SlnxParser{}
}

// CanParse checks if this parser supports the given file
func (p *SlnxParser) CanParse(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".slnx"
}

type slnxDocument struct {
	XMLName  xml.Name      `xml:"Solution"`
	Projects []slnxProject `xml:"Project"`
	Folders  []slnxFolder  `xml:"Folder"`
}

type slnxFolder struct {
	Name     string        `xml:"Name,attr"`
	Projects []slnxProject `xml:"Project"`
	Folders  []slnxFolder  `xml:"Folder"`
}

type slnxProject struct {
	Path string `xml:"Path,attr"`
	Type string `xml:"Type,attr,omitempty"`
	Name string `xml:"DisplayName,attr,omitempty"`
}

// Parse reads and parses a .slnx file
func (p *SlnxParser) Parse(path string) (*Solution, error) {
	if !p.CanParse(path) {
		return nil, &ParseError{
			FilePath: path,
			Message:  "not a .slnx file",
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

	var doc slnxDocument
	if err := xml.NewDecoder(file).Decode(&doc); err != nil {
		if syntaxErr, ok := err.(*xml.SyntaxError); ok {
			return nil, &ParseError{
				FilePath: absPath,
				Line:     syntaxErr.Line,
				Message:  fmt.Sprintf("XML syntax error: %v", syntaxErr.Msg),
			}
		}
		return nil, &ParseError{
			FilePath: absPath,
			Message:  fmt.Sprintf("failed to parse XML: %v", err),
		}
	}

	sol := &Solution{
		FilePath:      absPath,
		SolutionDir:   filepath.Dir(absPath),
		Projects:      []Project{},
		FormatVersion: "12.00",
	}

	p.appendProjects(sol, doc.Projects)
	for _, folder := range doc.Folders {
		p.processFolder(sol, folder)
	}

	return sol, nil
}

// processFolder adds the projects of folder and its nested folders, depth first
func (p *SlnxParser) processFolder(sol *Solution, folder slnxFolder) {
	p.appendProjects(sol, folder.Projects)
	for _, nested := range folder.Folders {
		p.processFolder(sol, nested)
	}
}

func (p *SlnxParser) appendProjects(sol *Solution, projects []slnxProject) {
	for _, proj := range projects {
		projectPath := NormalizePath(proj.Path)

		name := proj.Name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(projectPath), filepath.Ext(projectPath))
		}

		typeGUID := ""
		if strings.EqualFold(filepath.Ext(projectPath), ".vcxproj") {
			typeGUID = ProjectTypeVCProject
		}

		sol.Projects = append(sol.Projects, Project{
			Name:     name,
			Path:     projectPath,
			TypeGUID: typeGUID,
		})
	}
}
