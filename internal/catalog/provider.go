package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
)

// Provider hands out the catalog new matches are created from.
type Provider interface {
	Catalog(ctx context.Context) (*Catalog, error)
}

// Static always returns the same catalog.
type Static struct {
	cat *Catalog
}

// NewStatic wraps an already loaded catalog.
func NewStatic(cat *Catalog) *Static {
	return &Static{cat: cat}
}

func (s *Static) Catalog(context.Context) (*Catalog, error) {
	return s.cat, nil
}

// FileProvider serves a catalog loaded from a directory and can reload it
// when the files change. A failed reload keeps the previous catalog.
type FileProvider struct {
	fs     afero.Fs
	dir    string
	logger *slog.Logger

	mu  sync.RWMutex
	cur *Catalog
}

// NewFileProvider loads dir once and fails if that load fails.
func NewFileProvider(ctx context.Context, fsys afero.Fs, dir string, logger *slog.Logger) (*FileProvider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &FileProvider{fs: fsys, dir: dir, logger: logger.With("component", "catalog", "dir", dir)}
	if err := p.Reload(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *FileProvider) Catalog(context.Context) (*Catalog, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.cur == nil {
		return nil, fmt.Errorf("%w: not loaded", ErrMissingFile)
	}
	return p.cur, nil
}

// Reload reads the directory again and swaps the catalog in on success.
func (p *FileProvider) Reload(ctx context.Context) error {
	cat, warnings, err := Load(ctx, p.fs, p.dir)
	for _, w := range warnings {
		p.logger.Warn("catalog data repaired", "kind", w.Kind, "subject", w.Subject, "detail", w.Detail)
	}
	if err != nil {
		p.logger.Error("catalog load failed", "error", err)
		return err
	}
	p.mu.Lock()
	p.cur = cat
	p.mu.Unlock()
	p.logger.Info("catalog loaded", "scenario", cat.Scenario.Name, "halls", len(cat.Scenario.Halls), "warnings", len(warnings))
	return nil
}

// Watch reloads the catalog whenever a file in the directory is written,
// created, removed or renamed. It only works on the OS filesystem and
// blocks until ctx is done.
func (p *FileProvider) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file system watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(p.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", p.dir, err)
	}
	p.logger.Debug("watching catalog directory")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			p.logger.Debug("catalog file changed", "file", event.Name, "op", event.Op.String())
			_ = p.Reload(ctx)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Error("catalog watcher error", "error", err)
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return slices.Contains(extensions, strings.ToLower(filepath.Ext(event.Name)))
}
