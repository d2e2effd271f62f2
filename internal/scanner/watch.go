package scanner

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 750 * time.Millisecond

var ErrAlreadyWatching = errors.New("already watching asset sources")

var watchedExtensions = map[string]struct{}{
	".json": {},
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".bmp":  {},
	".webp": {},
	".avif": {},
}

type watchState struct {
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	done    chan struct{}
}

// StartWatching rescans whenever a model, texture or data file under an
// enabled source changes. Bursts of events collapse into one scan after
// debounce has passed without further changes.
func (s *Service) StartWatching(ctx context.Context, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	enabled, err := s.sources.ListEnabled(ctx)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, source := range enabled {
		for _, root := range []string{source.AssetRoot, source.DataRoot} {
			if root == "" {
				continue
			}
			if err := addTree(watcher, root); err != nil {
				_ = watcher.Close()
				return err
			}
		}
	}

	watchCtx, cancel := context.WithCancel(ctx)
	state := &watchState{watcher: watcher, cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	if s.watch != nil {
		s.mu.Unlock()
		cancel()
		_ = watcher.Close()
		return ErrAlreadyWatching
	}
	s.watch = state
	s.mu.Unlock()

	s.log.WithField("sources", len(enabled)).Info("watching asset sources")
	go s.watchLoop(watchCtx, state, debounce)
	return nil
}

// StopWatching stops the watcher and waits for its loop to exit.
func (s *Service) StopWatching() {
	s.mu.Lock()
	state := s.watch
	s.watch = nil
	s.mu.Unlock()

	if state == nil {
		return
	}
	state.cancel()
	<-state.done
}

func (s *Service) watchLoop(ctx context.Context, state *watchState, debounce time.Duration) {
	defer close(state.done)
	defer state.watcher.Close()

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-state.watcher.Errors:
			if !ok {
				return
			}
			s.log.WithError(err).Warn("watch error")
		case event, ok := <-state.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if err := addTree(state.watcher, event.Name); err != nil {
					s.log.WithError(err).WithField("path", event.Name).Debug("watch new path")
				}
			}
			if !relevant(event) {
				continue
			}
			s.log.WithField("path", event.Name).Debug("asset changed")
			timer.Reset(debounce)
		case <-timer.C:
			if err := s.TriggerFullScan(); errors.Is(err, ErrScanInProgress) {
				timer.Reset(debounce)
			}
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	_, ok := watchedExtensions[strings.ToLower(filepath.Ext(event.Name))]
	return ok || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// addTree watches root and every directory below it. fsnotify does not
// recurse on its own.
func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
}
