// Package report aggregates the outcome of one scan into a summary that can
// be rendered as text or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// Format determines how summaries are printed.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(input string) (Format, error) {
	switch Format(input) {
	case FormatText, FormatJSON:
		return Format(input), nil
	}
	return "", fmt.Errorf("unknown format %q (supported: text, json)", input)
}

// ScanError is one directory failure that was skipped during the walk.
type ScanError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Summary aggregates outcomes across one scan invocation.
type Summary struct {
	RunID       string      `json:"run_id"`
	Expression  string      `json:"expression"`
	Roots       []string    `json:"roots"`
	StartedAt   time.Time   `json:"started_at"`
	DurationMS  int64       `json:"duration_ms"`
	Matched     int         `json:"matched"`
	Skipped     int         `json:"skipped_errors"`
	Errors      []ScanError `json:"errors,omitempty"`
	Interrupted bool        `json:"interrupted,omitempty"`
}

// New starts a summary for one scan run.
func New(expression string, roots []string) *Summary {
	return &Summary{
		RunID:      uuid.New().String(),
		Expression: expression,
		Roots:      roots,
		StartedAt:  time.Now(),
	}
}

// AddMatch records one yielded match.
func (s *Summary) AddMatch() {
	s.Matched++
}

// AddSkipped records one directory failure elided from the walk.
func (s *Summary) AddSkipped(path string, err error) {
	s.Skipped++
	s.Errors = append(s.Errors, ScanError{
		Path:    path,
		Message: err.Error(),
	})
}

// Finish stamps the total duration.
func (s *Summary) Finish() {
	s.DurationMS = time.Since(s.StartedAt).Milliseconds()
}

// Render writes the summary in the requested format.
func (s *Summary) Render(format Format, w io.Writer) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(s)
	case FormatText:
		return s.renderText(w)
	}
	return fmt.Errorf("unknown format %q", format)
}

func (s *Summary) renderText(w io.Writer) error {
	status := "completed"
	if s.Interrupted {
		status = "interrupted"
	}

	if _, err := fmt.Fprintf(w, "scan %s %s: %d matched, %d skipped, %dms\n",
		s.RunID, status, s.Matched, s.Skipped, s.DurationMS); err != nil {
		return err
	}

	for _, scanErr := range s.Errors {
		if _, err := fmt.Fprintf(w, "  skipped %s: %s\n", scanErr.Path, scanErr.Message); err != nil {
			return err
		}
	}
	return nil
}
