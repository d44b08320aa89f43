package filestore

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hmans/posts/internal/event"
)

const debounceDelay = 100 * time.Millisecond

// Watch starts watching the root directory for changes made by other
// processes. The in-memory state is updated before onChange is invoked with
// the batch of resulting events. Writes made through this Store produce no
// events since memory already matches disk.
func (s *Store) Watch(onChange func([]event.Event)) error {
	s.mu.Lock()
	if s.watching {
		s.mu.Unlock()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.mu.Unlock()
		return err
	}

	if err := watcher.Add(s.root); err != nil {
		watcher.Close()
		s.mu.Unlock()
		return err
	}

	s.watching = true
	s.done = make(chan struct{})
	s.onChange = onChange
	s.mu.Unlock()

	go s.watchLoop(watcher)

	return nil
}

// Unwatch stops watching the root directory.
func (s *Store) Unwatch() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.watching {
		return nil
	}

	close(s.done)
	s.watching = false
	s.onChange = nil
	return nil
}

// watchLoop processes filesystem events with debouncing.
func (s *Store) watchLoop(watcher *fsnotify.Watcher) {
	defer watcher.Close()

	var debounceTimer *time.Timer
	var pendingMu sync.Mutex
	pendingChanges := make(map[string]fsnotify.Op)

	for {
		select {
		case <-s.done:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}

			if !strings.HasSuffix(ev.Name, Extension) {
				continue
			}
			if filepath.Dir(ev.Name) != filepath.Clean(s.root) {
				continue
			}

			relevant := ev.Op&fsnotify.Create != 0 ||
				ev.Op&fsnotify.Write != 0 ||
				ev.Op&fsnotify.Remove != 0 ||
				ev.Op&fsnotify.Rename != 0
			if !relevant {
				continue
			}

			// Accumulate changes during the debounce window
			pendingMu.Lock()
			pendingChanges[ev.Name] |= ev.Op
			pendingMu.Unlock()

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				pendingMu.Lock()
				changes := pendingChanges
				pendingChanges = make(map[string]fsnotify.Op)
				pendingMu.Unlock()

				s.handleChanges(changes)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("file watcher error", "err", err)
		}
	}
}

// handleChanges applies the changed files to memory and reports what changed.
func (s *Store) handleChanges(changes map[string]fsnotify.Op) {
	if len(changes) == 0 {
		return
	}

	s.mu.Lock()

	if !s.watching {
		s.mu.Unlock()
		return
	}

	var events []event.Event

	for path := range changes {
		id := ParseFilename(filepath.Base(path))

		// The final state on disk decides, whatever sequence of ops led to it.
		if !fileExists(path) {
			if _, ok := s.posts[id]; ok {
				delete(s.posts, id)
				events = append(events, event.Event{Type: event.Deleted, PostID: id})
			}
			continue
		}

		loaded, err := s.loadPost(path)
		if err != nil {
			s.logger.Warn("failed to load post", "path", path, "err", err)
			continue
		}

		existing, existed := s.posts[id]
		if existed && existing.Equal(loaded) {
			continue
		}
		if existed && existing.CreateDate != nil {
			loaded.CreateDate = existing.CreateDate
		}
		s.posts[id] = loaded

		typ := event.Created
		if existed {
			typ = event.Updated
		}
		events = append(events, event.Event{Type: typ, Post: loaded.Clone(), PostID: id})
	}

	callback := s.onChange
	s.mu.Unlock()

	if callback != nil && len(events) > 0 {
		callback(events)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
