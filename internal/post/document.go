package post

import (
	"time"
)

// Document keys shared by every document backend.
const (
	KeyID         = "_id"
	KeyTitle      = "title"
	KeyContent    = "content"
	KeyCreateDate = "createDate"
)

// Document is the stored body of a Post. The identifier is kept out of it
// because each backend represents ids natively (ObjectID, file name, column).
type Document struct {
	Title      string    `bson:"title" json:"title"`
	Content    string    `bson:"content" json:"content"`
	CreateDate time.Time `bson:"createDate" json:"createDate"`
}

// ToDocument returns the stored body of p. CreateDate must already be set.
func (p *Post) ToDocument() Document {
	d := Document{
		Title:   p.Title,
		Content: p.Content,
	}
	if p.CreateDate != nil {
		d.CreateDate = p.CreateDate.UTC()
	}
	return d
}

// FromDocument rebuilds a Post from a stored body and its identifier.
func FromDocument(id string, d Document) *Post {
	p := &Post{
		ID:      id,
		Title:   d.Title,
		Content: d.Content,
	}
	if !d.CreateDate.IsZero() {
		t := d.CreateDate.UTC()
		p.CreateDate = &t
	}
	return p
}
