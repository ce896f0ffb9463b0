package target

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/renameio/v2"
)

const fragmentExt = ".html"

// DirStore writes fragments as <Root>/<page>/<container>.html for static
// hosting. Every file is replaced atomically.
type DirStore struct {
	Root string
}

func (s *DirStore) pageDir(page string) (string, error) {
	if page == "" || strings.ContainsAny(page, `/\`) || page == "." || page == ".." {
		return "", fmt.Errorf("invalid page name %q", page)
	}
	return filepath.Join(s.Root, page), nil
}

func fragmentFile(dir, container string) (string, error) {
	if container == "" || strings.ContainsAny(container, `/\`) || strings.HasPrefix(container, ".") {
		return "", fmt.Errorf("invalid container name %q", container)
	}
	return filepath.Join(dir, container+fragmentExt), nil
}

func (s *DirStore) Publish(_ context.Context, page string, fragments map[string]string) error {
	dir, err := s.pageDir(page)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create page dir: %w", err)
	}
	for container, html := range fragments {
		path, err := fragmentFile(dir, container)
		if err != nil {
			return err
		}
		if err := renameio.WriteFile(path, []byte(html), 0o644); err != nil {
			return fmt.Errorf("write fragment %s: %w", path, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("list page dir: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fragmentExt) {
			continue
		}
		if _, ok := fragments[strings.TrimSuffix(name, fragmentExt)]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove stale fragment %s: %w", name, err)
		}
	}
	return nil
}

func (s *DirStore) SetFragment(_ context.Context, page, container, content string) error {
	dir, err := s.pageDir(page)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create page dir: %w", err)
	}
	path, err := fragmentFile(dir, container)
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write fragment %s: %w", path, err)
	}
	return nil
}

func (s *DirStore) Fragments(_ context.Context, page string) (map[string]string, error) {
	dir, err := s.pageDir(page)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list page dir: %w", err)
	}
	out := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fragmentExt) {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read fragment %s: %w", name, err)
		}
		out[strings.TrimSuffix(name, fragmentExt)] = string(b)
	}
	return out, nil
}

func (s *DirStore) Pages(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list export root: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}
