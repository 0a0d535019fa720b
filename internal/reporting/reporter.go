package reporting

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	json "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"

	"github.com/xkilldash9x/gamepilot/api/schemas"
)

// Reporter writes run reports to an output.
type Reporter interface {
	WriteBearing(report *schemas.BearingReport) error
	WriteCircle(report *schemas.CircleReport) error
	// Close finalizes the report and closes any underlying resources (e.g., file handles).
	Close() error
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// Entry is one line of the report file.
type Entry struct {
	Game    schemas.GameKind       `json:"game"`
	Bearing *schemas.BearingReport `json:"bearing,omitempty"`
	Circle  *schemas.CircleReport  `json:"circle,omitempty"`
}

// New creates a JSON Lines reporter. "stdout" or "-" writes to standard
// output; any other path is expanded ("~/runs.jsonl") and appended to.
func New(outputPath string) (Reporter, error) {
	if outputPath == "stdout" || outputPath == "-" {
		return NewJSONReporter(&nopWriteCloser{os.Stdout}), nil
	}

	path, err := homedir.Expand(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to expand report path %s: %w", outputPath, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create report directory %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open report file %s: %w", path, err)
	}
	return NewJSONReporter(f), nil
}

// JSONReporter writes one JSON object per report. It is safe for concurrent use.
type JSONReporter struct {
	mu      sync.Mutex
	w       io.WriteCloser
	encoder *json.Encoder
}

// NewJSONReporter takes ownership of w.
func NewJSONReporter(w io.WriteCloser) *JSONReporter {
	return &JSONReporter{w: w, encoder: json.NewEncoder(w)}
}

func (r *JSONReporter) WriteBearing(report *schemas.BearingReport) error {
	return r.write(Entry{Game: schemas.GameBearing, Bearing: report})
}

func (r *JSONReporter) WriteCircle(report *schemas.CircleReport) error {
	return r.write(Entry{Game: schemas.GameCircle, Circle: report})
}

func (r *JSONReporter) write(e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.encoder.Encode(e); err != nil {
		return fmt.Errorf("failed to write %s report: %w", e.Game, err)
	}
	return nil
}

func (r *JSONReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.w.Close()
}
