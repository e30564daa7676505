package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
)

// ErrInvalidEncoding is returned when a project file is not valid UTF-8.
var ErrInvalidEncoding = errors.New("project file is not valid UTF-8")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ProjectFile is the text of a project file with the encoding details needed to write it back unchanged.
type ProjectFile struct {
	Path string

	text string
	bom  bool
	crlf bool
	mode os.FileMode
}

// LoadProjectFile reads a project file. CRLF line endings are normalized to LF
// and the UTF-8 BOM is set aside; Save restores both.
func LoadProjectFile(path string) (*ProjectFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}

	pf := &ProjectFile{
		Path: path,
		mode: info.Mode().Perm(),
	}

	if bytes.HasPrefix(data, utf8BOM) {
		pf.bom = true
		data = data[len(utf8BOM):]
	}

	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s (detected %s)", ErrInvalidEncoding, path, DetectCharset(data))
	}

	text := string(data)
	if strings.Contains(text, "\r\n") {
		pf.crlf = true
		text = strings.ReplaceAll(text, "\r\n", "\n")
	}
	pf.text = text

	return pf, nil
}

// Text returns the LF-normalized file content without BOM.
func (p *ProjectFile) Text() string {
	return p.text
}

// HasBOM reports whether the file started with a UTF-8 byte order mark.
func (p *ProjectFile) HasBOM() bool {
	return p.bom
}

// UsesCRLF reports whether the file used CRLF line endings.
func (p *ProjectFile) UsesCRLF() bool {
	return p.crlf
}

// Save replaces the file with text, restoring the original BOM, line endings and permissions.
func (p *ProjectFile) Save(text string) error {
	if p.crlf {
		text = strings.ReplaceAll(text, "\n", "\r\n")
	}

	var buf bytes.Buffer
	buf.Grow(len(utf8BOM) + len(text))
	if p.bom {
		buf.Write(utf8BOM)
	}
	buf.WriteString(text)

	if err := writeFileAtomic(p.Path, buf.Bytes(), p.mode); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}

	p.text = strings.ReplaceAll(text, "\r\n", "\n")
	return nil
}

// writeFileAtomic writes data to a temp file next to path and renames it over path.
func writeFileAtomic(path string, data []byte, mode os.FileMode) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath) // Clean up on failure
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpPath, mode); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}

// DetectCharset returns a best-guess charset name for data, or "unknown".
func DetectCharset(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "unknown"
	}
	return strings.ToLower(result.Charset)
}
