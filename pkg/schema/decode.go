package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/schemaflow/pkg/errors"
)

// Supported input formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FormatForPath picks the input format from a file extension.
// Unknown extensions default to JSON.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ReadFile decodes the model stored at path.
func ReadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f, FormatForPath(path))
}

// Decode reads a model in the given format. Any failure yields a nil model
// and an ErrCodeSchemaInvalid error; partial models are never returned.
func Decode(r io.Reader, format string) (*Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSchemaInvalid, err, "read schema")
	}
	return Unmarshal(data, format)
}

// Unmarshal decodes a model from bytes.
func Unmarshal(data []byte, format string) (*Model, error) {
	var m Model
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeSchemaInvalid, err, "decode yaml schema")
		}
	case FormatJSON, "":
		if err := json.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeSchemaInvalid, err, "decode json schema")
		}
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported schema format %q", format)
	}
	return &m, nil
}
