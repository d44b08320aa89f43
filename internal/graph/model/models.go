package model

import (
	"fmt"
	"io"
	"strconv"

	"github.com/hmans/posts/internal/event"
	"github.com/hmans/posts/internal/post"
)

type PostInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ToInput converts the GraphQL input to the entity's input type.
func (i PostInput) ToInput() post.Input {
	return post.Input{Title: i.Title, Content: i.Content}
}

// UnmarshalPostInput builds a PostInput from a coerced GraphQL argument.
func UnmarshalPostInput(v any) (PostInput, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return PostInput{}, fmt.Errorf("PostInput must be an object, got %T", v)
	}

	var in PostInput
	for key, val := range m {
		s, ok := val.(string)
		if !ok {
			return PostInput{}, fmt.Errorf("PostInput.%s must be a string, got %T", key, val)
		}
		switch key {
		case "title":
			in.Title = s
		case "content":
			in.Content = s
		}
	}
	return in, nil
}

type PostEvent struct {
	Type PostEventType `json:"type"`
	ID   string        `json:"id"`
	Post *post.Post    `json:"post,omitempty"`
}

// NewPostEvent converts a store event for the API.
func NewPostEvent(ev event.Event) *PostEvent {
	return &PostEvent{
		Type: EventTypeOf(ev.Type),
		ID:   ev.PostID,
		Post: ev.Post.Clone(),
	}
}

type PostEventType string

const (
	PostEventTypeCreated PostEventType = "CREATED"
	PostEventTypeUpdated PostEventType = "UPDATED"
	PostEventTypeDeleted PostEventType = "DELETED"
)

var AllPostEventType = []PostEventType{
	PostEventTypeCreated,
	PostEventTypeUpdated,
	PostEventTypeDeleted,
}

// EventTypeOf maps a store event type to its GraphQL enum value.
func EventTypeOf(t event.Type) PostEventType {
	switch t {
	case event.Created:
		return PostEventTypeCreated
	case event.Deleted:
		return PostEventTypeDeleted
	default:
		return PostEventTypeUpdated
	}
}

func (e PostEventType) IsValid() bool {
	switch e {
	case PostEventTypeCreated, PostEventTypeUpdated, PostEventTypeDeleted:
		return true
	}
	return false
}

func (e PostEventType) String() string {
	return string(e)
}

func (e *PostEventType) UnmarshalGQL(v any) error {
	str, ok := v.(string)
	if !ok {
		return fmt.Errorf("enums must be strings")
	}

	*e = PostEventType(str)
	if !e.IsValid() {
		return fmt.Errorf("%s is not a valid PostEventType", str)
	}
	return nil
}

func (e PostEventType) MarshalGQL(w io.Writer) {
	fmt.Fprint(w, strconv.Quote(e.String()))
}
