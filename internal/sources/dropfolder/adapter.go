// Package dropfolder implements the source adapter for a local
// directory of documents. It walks the tree once per run and can
// optionally watch for files added while a run is live.
package dropfolder

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/archivelab/papertrail/internal/core/domain"
	"github.com/archivelab/papertrail/internal/core/ports/driven"
	"github.com/archivelab/papertrail/internal/logger"
)

var _ driven.SourceAdapter = (*Adapter)(nil)

// Adapter discovers documents dropped into a local folder.
type Adapter struct {
	source domain.Source
	watch  bool

	mu     sync.Mutex
	closed bool
}

// New creates a dropfolder adapter. When watch is true, Discover keeps
// streaming files created under the folder until the context ends.
func New(source domain.Source, watch bool) *Adapter {
	return &Adapter{source: source, watch: watch}
}

func (a *Adapter) Kind() domain.SourceKind { return domain.KindDropFolder }

func (a *Adapter) SourceID() string { return a.source.ID }

func (a *Adapter) Capabilities() driven.AdapterCapabilities {
	return driven.AdapterCapabilities{
		SupportsWatch: true,
	}
}

// Validate checks the folder exists and is a directory.
func (a *Adapter) Validate(context.Context) error {
	info, err := os.Stat(a.source.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: drop folder %s: %v", domain.ErrInvalidInput, a.source.BaseURL, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, a.source.BaseURL)
	}
	return nil
}

// Discover walks the folder and emits one ref per file. Refs are paths
// relative to the folder root so they stay stable across machines.
func (a *Adapter) Discover(ctx context.Context, _ string) (<-chan domain.CandidateRef, <-chan error) {
	refs := make(chan domain.CandidateRef)
	errs := make(chan error, 1)

	go func() {
		defer close(refs)
		defer close(errs)

		a.mu.Lock()
		if a.closed {
			a.mu.Unlock()
			errs <- domain.ErrAdapterClosed
			return
		}
		a.mu.Unlock()

		root := a.source.BaseURL
		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			if !a.wanted(path) {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case refs <- a.candidate(rel, path):
			}
			return nil
		})
		if walkErr != nil {
			if ctx.Err() != nil {
				return
			}
			errs <- fmt.Errorf("%w: walking %s: %v", domain.ErrTransient, root, walkErr)
			return
		}

		if a.watch {
			if err := a.watchFolder(ctx, root, refs); err != nil {
				errs <- err
			}
			return
		}

		errs <- driven.DiscoverComplete{}
	}()

	return refs, errs
}

func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

// watchFolder streams files created under root until ctx ends.
func (a *Adapter) watchFolder(ctx context.Context, root string, refs chan<- domain.CandidateRef) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: watcher: %v", domain.ErrTransient, err)
	}
	defer watcher.Close()

	if err := watcher.Add(root); err != nil {
		return fmt.Errorf("%w: watch %s: %v", domain.ErrTransient, root, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			info, err := os.Stat(event.Name)
			if err != nil || info.IsDir() || !a.wanted(event.Name) {
				continue
			}
			rel, err := filepath.Rel(root, event.Name)
			if err != nil {
				continue
			}
			select {
			case <-ctx.Done():
				return nil
			case refs <- a.candidate(rel, event.Name):
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("dropfolder watch error: %v", err)
		}
	}
}

func (a *Adapter) wanted(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return false
	}
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	return a.source.AllowsExtension(ext)
}

func (a *Adapter) candidate(rel, abs string) domain.CandidateRef {
	name := filepath.Base(rel)
	title := strings.TrimSuffix(name, filepath.Ext(name))
	return domain.CandidateRef{
		Ref:         filepath.ToSlash(rel),
		URL:         abs,
		Title:       title,
		ReleaseDate: a.source.ReleaseDate,
		Tags:        a.source.Tags,
	}
}
