// Package post defines the Post entity and every serialized form of it:
// the JSON shape used by the API and CLI, the Document shape stored by the
// document backends, and the markdown-with-frontmatter shape used on disk.
package post

import (
	"time"
)

// Post is a titled piece of content with an identifier and creation time.
type Post struct {
	// ID is assigned by the store on first save and never changes.
	ID string `json:"id"`

	Title   string `json:"title"`
	Content string `json:"content"`

	// CreateDate is set once by the store on first save.
	CreateDate *time.Time `json:"createDate,omitempty"`
}

// Input carries the caller-supplied, mutable fields of a Post.
type Input struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// New builds an unsaved Post. ID and CreateDate are left for the store.
func New(title, content string) *Post {
	return &Post{
		Title:   title,
		Content: content,
	}
}

// FromInput builds an unsaved Post from caller input.
func FromInput(in Input) *Post {
	return New(in.Title, in.Content)
}

// Apply overwrites the mutable fields. ID and CreateDate are untouched.
func (p *Post) Apply(in Input) {
	p.Title = in.Title
	p.Content = in.Content
}

// IsNew reports whether the post has not been saved yet.
func (p *Post) IsNew() bool {
	return p.ID == ""
}

// Clone returns a deep copy, so stores never hand out their internal state.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	c := *p
	if p.CreateDate != nil {
		t := *p.CreateDate
		c.CreateDate = &t
	}
	return &c
}

// Stamp sets CreateDate to now if it is unset. Stores call it on first save.
func (p *Post) Stamp(now time.Time) {
	if p.CreateDate == nil {
		t := now.UTC().Truncate(time.Millisecond)
		p.CreateDate = &t
	}
}

// FormatCreateDate renders CreateDate as RFC 3339 in UTC, or "" when unset.
func (p *Post) FormatCreateDate() string {
	if p.CreateDate == nil {
		return ""
	}
	return p.CreateDate.UTC().Format(time.RFC3339Nano)
}

// Equal reports whether two posts hold the same data.
func (p *Post) Equal(o *Post) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.ID != o.ID || p.Title != o.Title || p.Content != o.Content {
		return false
	}
	if p.CreateDate == nil || o.CreateDate == nil {
		return p.CreateDate == o.CreateDate
	}
	return p.CreateDate.Equal(*o.CreateDate)
}
