// Package store defines the persistence contract for posts. Backends live in
// subpackages (filestore, mongostore, sqlstore, pgstore).
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/hmans/posts/internal/event"
	"github.com/hmans/posts/internal/post"
)

var (
	// ErrNotFound is returned when no post matches an id.
	ErrNotFound = errors.New("post not found")
	// ErrUnavailable is matched by every ConnectionError.
	ErrUnavailable = errors.New("store unavailable")
	// ErrUnknownDriver is returned for a driver name no backend handles.
	ErrUnknownDriver = errors.New("unknown store driver")
)

// Repository stores, retrieves and deletes posts by id.
//
// Every call is independent: there is no transaction spanning calls and no
// ordering guarantee for FindAll beyond the backend's natural order.
type Repository interface {
	// FindAll returns every stored post.
	FindAll(ctx context.Context) ([]*post.Post, error)
	// FindByID returns the post with the given id, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*post.Post, error)
	// Save inserts p when it has no ID, assigning ID and CreateDate, and
	// otherwise overwrites the stored post with the same ID.
	Save(ctx context.Context, p *post.Post) (*post.Post, error)
	// DeleteByID removes the post with the given id, or returns ErrNotFound.
	DeleteByID(ctx context.Context, id string) error
	// DeleteAll removes every post.
	DeleteAll(ctx context.Context) error
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
	// Close releases the backend's resources.
	Close(ctx context.Context) error
}

// Watcher is implemented by backends that can report changes made to the
// underlying data by other processes.
type Watcher interface {
	Watch(onChange func([]event.Event)) error
}

// ConnectionError reports a backend that could not be reached.
type ConnectionError struct {
	Op     string
	Driver string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: %s store unavailable: %v", e.Op, e.Driver, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrUnavailable) hold for every ConnectionError.
func (e *ConnectionError) Is(target error) bool {
	return target == ErrUnavailable
}

// IsNotFound reports whether err means a post does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
