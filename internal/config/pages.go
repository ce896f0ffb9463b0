package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reinarrr/TLR-web-cfpages/internal/page"
)

type pagesFile struct {
	Pages []page.Page `yaml:"pages"`
}

// LoadPages returns the site pages from a YAML file, or the built-in pages
// when path is empty.
func LoadPages(path string) ([]page.Page, error) {
	if path == "" {
		return page.DefaultPages(), nil
	}
	path = filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported pages file format: %s (only YAML supported)", ext)
	}
	// #nosec G304 -- the path is provided by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pages file: %w", err)
	}
	return ParsePages(data)
}

// ParsePages decodes a pages document strictly: unknown fields are errors.
func ParsePages(data []byte) ([]page.Page, error) {
	var f pagesFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("pages file is empty")
		}
		return nil, fmt.Errorf("parse pages file: %w", err)
	}
	if len(f.Pages) == 0 {
		return nil, fmt.Errorf("pages file declares no pages")
	}
	seen := make(map[string]struct{}, len(f.Pages))
	for _, p := range f.Pages {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[p.Name]; ok {
			return nil, fmt.Errorf("duplicate page %q", p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return f.Pages, nil
}
