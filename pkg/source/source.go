// Package source decodes documents into plain Go values for traversal.
//
// JSON documents decode into the usual encoding/json shapes (map[string]any,
// []any, float64, string, bool). TOML documents decode into map[string]any
// with int64, float64, string, bool, time and nested table values.
package source

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/bramp/objectgraph/pkg/errors"
)

// Format identifies a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// ParseFormat converts a format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSON, FormatTOML:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unsupported input format %q", name)
}

// DetectFormat guesses the format of path from its extension.
// Unknown extensions are treated as JSON.
func DetectFormat(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

// Decode reads a single document from r.
func Decode(r io.Reader, format Format) (any, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(r)
	case FormatTOML:
		var doc map[string]any
		if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml")
		}
		return doc, nil
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported input format %q", format)
}

func decodeJSON(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
	}
	if dec.More() {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "decode json: trailing data after document")
	}
	return doc, nil
}

// Load reads and decodes the document at path, along with its raw bytes.
// The format is taken from the file extension.
func Load(path string) (any, []byte, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", path)
	}

	doc, err := Decode(bytes.NewReader(data), DetectFormat(path))
	if err != nil {
		return nil, nil, err
	}
	return doc, data, nil
}
