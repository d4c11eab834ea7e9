package nav

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

//go:embed templates/*.yaml
var builtinTemplates embed.FS

// ErrTemplateNotFound is returned when no source has a template for a page.
var ErrTemplateNotFound = errors.New("template not found")

// RegionSpec describes one region of a page layout
type RegionSpec struct {
	Name        string `yaml:"name"`
	Title       string `yaml:"title"`
	Proportion  int    `yaml:"proportion"`
	Focus       bool   `yaml:"focus"`
	Placeholder string `yaml:"placeholder"`
}

// Template is the layout of a page
type Template struct {
	Page    Page         `yaml:"page"`
	Layout  string       `yaml:"layout"` // rows or columns
	Hint    string       `yaml:"hint"`
	Regions []RegionSpec `yaml:"regions"`
}

// Validate checks that t describes page.
func (t *Template) Validate(page Page) error {
	if t.Page != page {
		return fmt.Errorf("template declares page %q, want %q", t.Page, page)
	}
	if len(t.Regions) == 0 {
		return fmt.Errorf("template %q has no regions", page)
	}
	seen := make(map[string]bool, len(t.Regions))
	for _, r := range t.Regions {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("template %q has a region without a name", page)
		}
		if seen[r.Name] {
			return fmt.Errorf("template %q repeats region %q", page, r.Name)
		}
		seen[r.Name] = true
	}
	switch t.Layout {
	case "", "rows", "columns":
	default:
		return fmt.Errorf("template %q has unknown layout %q", page, t.Layout)
	}
	return nil
}

// TemplateSource fetches the template of a page.
type TemplateSource interface {
	Fetch(ctx context.Context, page Page) (*Template, error)
}

// FileSource reads <page>.yaml from Dir, then from the built-in set.
type FileSource struct {
	Dir      string
	fallback fs.FS
}

// NewFileSource creates a source with an optional override directory.
func NewFileSource(dir string) *FileSource {
	sub, _ := fs.Sub(builtinTemplates, "templates")
	return &FileSource{Dir: dir, fallback: sub}
}

func (s *FileSource) Fetch(ctx context.Context, page Page) (*Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := string(page) + ".yaml"
	var data []byte
	var err error
	if s.Dir != "" {
		data, err = os.ReadFile(filepath.Join(s.Dir, name))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}
	}
	if data == nil && s.fallback != nil {
		data, err = fs.ReadFile(s.fallback, name)
	}
	if data == nil {
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, page)
	}
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	if err := t.Validate(page); err != nil {
		return nil, err
	}
	return &t, nil
}

// TemplateCache memoizes fetched templates.
type TemplateCache struct {
	source TemplateSource
	logger *log.Logger

	mu      sync.RWMutex
	entries map[Page]*Template
}

func NewTemplateCache(source TemplateSource, logger *log.Logger) *TemplateCache {
	return &TemplateCache{source: source, logger: logger, entries: make(map[Page]*Template)}
}

// Preload fetches pages eagerly. Failures are logged and left for a lazy retry.
func (c *TemplateCache) Preload(ctx context.Context, pages []Page) {
	for _, p := range pages {
		if _, err := c.Get(ctx, p); err != nil && c.logger != nil {
			c.logger.Printf("templates: preload %s: %v", p, err)
		}
	}
}

// Get returns the cached template or fetches it.
func (c *TemplateCache) Get(ctx context.Context, page Page) (*Template, error) {
	c.mu.RLock()
	t, ok := c.entries[page]
	c.mu.RUnlock()
	if ok {
		return t, nil
	}
	t, err := c.source.Fetch(ctx, page)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[page] = t
	c.mu.Unlock()
	return t, nil
}

// Cached reports whether page is in the cache.
func (c *TemplateCache) Cached(page Page) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[page]
	return ok
}

// Invalidate drops page from the cache.
func (c *TemplateCache) Invalidate(page Page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, page)
}

// Watch invalidates templates when files in dir change, until ctx ends.
func (c *TemplateCache) Watch(ctx context.Context, dir string) error {
	if dir == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				c.handleEvent(ev)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if c.logger != nil {
					c.logger.Printf("templates: watcher error: %v", err)
				}
			}
		}
	}()
	return nil
}

func (c *TemplateCache) handleEvent(ev fsnotify.Event) {
	base := filepath.Base(ev.Name)
	if !strings.HasSuffix(base, ".yaml") {
		return
	}
	page, ok := ParsePage(strings.TrimSuffix(base, ".yaml"))
	if !ok {
		return
	}
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	c.Invalidate(page)
	if c.logger != nil {
		c.logger.Printf("templates: %s changed, cache invalidated", page)
	}
}
