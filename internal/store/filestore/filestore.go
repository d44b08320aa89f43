// Package filestore provides a thread-safe in-memory store for posts with
// filesystem persistence (one markdown file per post) and optional file
// watching for long-running processes.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/hmans/posts/internal/event"
	"github.com/hmans/posts/internal/post"
	"github.com/hmans/posts/internal/store"
)

const (
	// Driver is the configuration name of this backend.
	Driver = "file"

	// Extension is the file extension of post documents.
	Extension = ".md"

	// DefaultIDLength is the length of generated ids.
	DefaultIDLength = 8

	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// ErrInvalidID is returned when saving a post whose id cannot be a file name.
var ErrInvalidID = errors.New("invalid post id")

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// Store keeps every post in memory and mirrors it to <root>/<id>.md.
type Store struct {
	root     string
	idLength int
	logger   *slog.Logger

	mu    sync.RWMutex
	posts map[string]*post.Post

	// File watching (optional)
	watching bool
	done     chan struct{}
	onChange func([]event.Event)
}

// New creates a Store rooted at the given directory. Call Init and Load
// before use.
func New(root string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		root:     root,
		idLength: DefaultIDLength,
		logger:   logger.With("store", Driver),
		posts:    make(map[string]*post.Post),
	}
}

// Open creates the directory if needed and loads every post from it.
func Open(root string, logger *slog.Logger) (*Store, error) {
	s := New(root, logger)
	if err := s.Init(); err != nil {
		return nil, &store.ConnectionError{Op: "open", Driver: Driver, Err: err}
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// SetIDLength changes the length of generated ids.
func (s *Store) SetIDLength(n int) {
	if n > 0 {
		s.idLength = n
	}
}

// Root returns the directory posts are stored in.
func (s *Store) Root() string {
	return s.root
}

// Init creates the root directory if it doesn't exist.
func (s *Store) Init() error {
	return os.MkdirAll(s.root, 0755)
}

// Load reads all posts from disk into memory.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadFromDisk()
}

// loadFromDisk reads all posts from disk (must be called with lock held).
func (s *Store) loadFromDisk() error {
	s.posts = make(map[string]*post.Post)

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Extension) {
			continue
		}

		path := filepath.Join(s.root, entry.Name())
		p, err := s.loadPost(path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		s.posts[p.ID] = p
	}

	return nil
}

// loadPost reads and parses a single post file.
func (s *Store) loadPost(path string) (*post.Post, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := post.Parse(f)
	if err != nil {
		return nil, err
	}
	p.ID = ParseFilename(filepath.Base(path))

	// Files written by hand may lack a date; fall back to the modification time.
	if p.CreateDate == nil {
		if info, statErr := os.Stat(path); statErr == nil {
			p.Stamp(info.ModTime())
		}
	}

	return p, nil
}

// FindAll returns copies of all posts.
func (s *Store) FindAll(ctx context.Context) ([]*post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*post.Post, 0, len(s.posts))
	for _, p := range s.posts {
		result = append(result, p.Clone())
	}
	return result, nil
}

// FindByID returns a copy of the post with the given id.
func (s *Store) FindByID(ctx context.Context, id string) (*post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p.Clone(), nil
}

// Save writes a post to disk, generating an id and create date for new posts.
// The create date of an already stored post is never changed.
func (s *Store) Save(ctx context.Context, p *post.Post) (*post.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := p.Clone()
	if saved.IsNew() {
		id, err := s.newID()
		if err != nil {
			return nil, err
		}
		saved.ID = id
		saved.CreateDate = nil
	} else if !idPattern.MatchString(saved.ID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, saved.ID)
	}

	if existing, ok := s.posts[saved.ID]; ok {
		saved.CreateDate = existing.CreateDate
	}
	saved.Stamp(time.Now())

	if err := s.saveToDisk(saved); err != nil {
		return nil, err
	}

	s.posts[saved.ID] = saved
	return saved.Clone(), nil
}

// newID generates an id not used by any stored post (lock must be held).
func (s *Store) newID() (string, error) {
	for {
		id, err := gonanoid.Generate(idAlphabet, s.idLength)
		if err != nil {
			return "", fmt.Errorf("generating id: %w", err)
		}
		if _, taken := s.posts[id]; !taken {
			return id, nil
		}
	}
}

// saveToDisk writes a post to the filesystem.
func (s *Store) saveToDisk(p *post.Post) error {
	content, err := p.Render()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.root, 0755); err != nil {
		return &store.ConnectionError{Op: "save", Driver: Driver, Err: err}
	}
	if err := os.WriteFile(s.FullPath(p.ID), content, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}

// DeleteByID removes the post with the given id from disk and memory.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return store.ErrNotFound
	}
	if err := os.Remove(s.FullPath(id)); err != nil && !os.IsNotExist(err) {
		return err
	}
	delete(s.posts, id)
	return nil
}

// DeleteAll removes every post from disk and memory.
func (s *Store) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.posts {
		if err := os.Remove(s.FullPath(id)); err != nil && !os.IsNotExist(err) {
			return err
		}
		delete(s.posts, id)
	}
	return nil
}

// Ping checks that the root directory is still present.
func (s *Store) Ping(ctx context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return &store.ConnectionError{Op: "ping", Driver: Driver, Err: err}
	}
	if !info.IsDir() {
		return &store.ConnectionError{Op: "ping", Driver: Driver, Err: fmt.Errorf("%s is not a directory", s.root)}
	}
	return nil
}

// Close stops any active file watcher.
func (s *Store) Close(ctx context.Context) error {
	return s.Unwatch()
}

// FullPath returns the absolute path of the file holding the post with id.
func (s *Store) FullPath(id string) string {
	return filepath.Join(s.root, BuildFilename(id))
}

// BuildFilename returns the file name for a post id.
func BuildFilename(id string) string {
	return id + Extension
}

// ParseFilename extracts the post id from a file name.
func ParseFilename(name string) string {
	return strings.TrimSuffix(name, Extension)
}
