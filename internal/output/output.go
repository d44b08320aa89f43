// Package output renders command results as JSON for --json mode.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hmans/posts/internal/post"
)

// Error codes reported in the "code" field of a failed response.
const (
	ErrNotFound    = "NOT_FOUND"
	ErrStore       = "STORE_ERROR"
	ErrValidation  = "VALIDATION_ERROR"
	ErrUnavailable = "STORE_UNAVAILABLE"
)

// Response is the envelope every --json command writes.
type Response struct {
	Success bool         `json:"success"`
	Post    *post.Post   `json:"post,omitempty"`
	Posts   []*post.Post `json:"posts,omitempty"`
	Count   *int         `json:"count,omitempty"`
	Message string       `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
	Code    string       `json:"code,omitempty"`
}

// Writer is where responses go. Tests swap it out.
var Writer io.Writer = os.Stdout

// JSON writes r as indented JSON.
func JSON(r Response) error {
	return Write(Writer, r)
}

// Write encodes r to w.
func Write(w io.Writer, r Response) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Success writes a single post.
func Success(p *post.Post, message string) error {
	return JSON(Response{Success: true, Post: p, Message: message})
}

// SuccessMultiple writes a list of posts with its count.
func SuccessMultiple(posts []*post.Post) error {
	n := len(posts)
	return JSON(Response{Success: true, Posts: posts, Count: &n})
}

// SuccessMessage writes a bare message.
func SuccessMessage(message string) error {
	return JSON(Response{Success: true, Message: message})
}

// Error writes a failed response and returns an error carrying the same
// message, so the command still exits non-zero.
func Error(code, message string) error {
	if err := JSON(Response{Success: false, Error: message, Code: code}); err != nil {
		return err
	}
	return &Reported{Code: code, Message: message}
}

// Reported is an error whose details were already written as JSON.
type Reported struct {
	Code    string
	Message string
}

func (e *Reported) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
