package output

import (
	"encoding/json"
	"io"
	"time"
)

// CurrentSchemaVersion is the schema version for all JSON outputs
const CurrentSchemaVersion = "1.0.0"

// File status values used in StripFileResult.Status
const (
	StatusModified  = "modified"
	StatusUnchanged = "unchanged"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// StripRunOutput represents the JSON output of a vcxstrip run
type StripRunOutput struct {
	SchemaVersion string            `json:"schemaVersion"`
	Platform      string            `json:"platform"`
	Files         []StripFileResult `json:"files"`
	TotalModified int               `json:"totalModified"`
	ElapsedMs     int64             `json:"elapsedMs"`
}

// StripFileResult represents one processed argument in JSON output
type StripFileResult struct {
	Path          string         `json:"path"`
	Status        string         `json:"status"`
	BlocksRemoved map[string]int `json:"blocksRemoved,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// NewStripRunOutput creates a StripRunOutput with schema version
func NewStripRunOutput(platform string) *StripRunOutput {
	return &StripRunOutput{
		SchemaVersion: CurrentSchemaVersion,
		Platform:      platform,
		Files:         []StripFileResult{},
	}
}

// WriteJSON writes a JSON object to the specified writer (typically stdout)
// When --format json is used, ALL JSON goes to stdout and ALL messages go to stderr
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// MeasureElapsed returns elapsed time in milliseconds since start
func MeasureElapsed(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
