package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/bramp/objectgraph/pkg/errors"
)

// =============================================================================
// Report Serialization API
// =============================================================================

// Marshal converts a report to indented JSON bytes.
func Marshal(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(r, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes a report as JSON to an io.Writer.
func Write(r *Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes a report to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(r *Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(r, f)
}

// Unmarshal decodes and validates a JSON report.
func Unmarshal(data []byte) (*Report, error) {
	return Read(bytes.NewReader(data))
}

// Read decodes and validates a JSON report from an io.Reader.
func Read(rd io.Reader) (*Report, error) {
	var r Report
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode report")
	}
	if err := Validate(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ReadFile reads a JSON report file.
func ReadFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Validate checks that node indexes are sequential and edges refer to nodes.
func Validate(r *Report) error {
	for i, n := range r.Nodes {
		if n.Index != i {
			return errors.New(errors.ErrCodeInvalidFormat, "node %d has index %d", i, n.Index)
		}
	}
	for _, e := range r.Edges {
		if e.From < 0 || e.From >= len(r.Nodes) || e.To < 0 || e.To >= len(r.Nodes) {
			return errors.New(errors.ErrCodeInvalidFormat, "edge %d -> %d refers to a missing node", e.From, e.To)
		}
	}
	return nil
}
