package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/giygas/d3ai-api/logging"
	"golang.org/x/text/encoding/charmap"
	"gopkg.in/yaml.v3"
)

// maxFileSize caps catalog files; anything larger is almost certainly not a
// hand-maintained catalog.
const maxFileSize = 16 << 20

// Decode parses YAML catalog contents. Input that is not valid UTF-8 is
// decoded as ISO-8859-1 first. Unknown fields are rejected.
func Decode(data []byte) (File, error) {
	var reader io.Reader
	if utf8.Valid(data) {
		reader = bytes.NewReader(data)
	} else {
		reader = charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(data))
	}

	var f File
	dec := yaml.NewDecoder(reader)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return File{}, errors.New("catalog file is empty")
		}
		return File{}, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return f, nil
}

// ReadFile reads and decodes a catalog file without building a snapshot.
func ReadFile(path string) (File, error) {
	cleanPath := filepath.Clean(path)
	fh, err := os.Open(cleanPath)
	if err != nil {
		return File{}, fmt.Errorf("failed to open catalog %s: %w", cleanPath, err)
	}
	defer func() {
		if err := fh.Close(); err != nil {
			logging.Warn("Failed to close catalog file", "path", cleanPath, "error", err)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(fh, maxFileSize+1))
	if err != nil {
		return File{}, fmt.Errorf("failed to read catalog %s: %w", cleanPath, err)
	}
	if len(data) > maxFileSize {
		return File{}, fmt.Errorf("catalog %s exceeds %d bytes", cleanPath, maxFileSize)
	}
	return Decode(data)
}

// LoadFile reads, decodes and builds a catalog snapshot from path.
func LoadFile(ctx context.Context, path string) (*Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Build(path, f)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	logging.Info("Catalog loaded", "source", path, "diseases", c.DiseaseCount(), "drugs", c.DrugCount())
	return c, nil
}

// FileSource loads snapshots from a YAML file.
type FileSource struct {
	Path string
}

// Load implements the catalog source contract.
func (s FileSource) Load(ctx context.Context) (*Catalog, error) {
	return LoadFile(ctx, s.Path)
}

// Name identifies the source in logs and health output.
func (s FileSource) Name() string { return s.Path }

// BuiltinSource always yields the built-in catalog.
type BuiltinSource struct{}

// Load implements the catalog source contract.
func (BuiltinSource) Load(ctx context.Context) (*Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Default(), nil
}

// Name identifies the source in logs and health output.
func (BuiltinSource) Name() string { return "builtin" }
