package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hmans/posts/internal/post"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Writer
	Writer = &buf
	t.Cleanup(func() { Writer = prev })
	return &buf
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	return m
}

func TestSuccess(t *testing.T) {
	buf := capture(t)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	p := &post.Post{ID: "abc", Title: "Hello", Content: "World", CreateDate: &created}

	if err := Success(p, "Post created"); err != nil {
		t.Fatalf("Success() error = %v", err)
	}

	m := decode(t, buf)
	if m["success"] != true {
		t.Errorf("success = %v, want true", m["success"])
	}
	if m["message"] != "Post created" {
		t.Errorf("message = %v", m["message"])
	}
	got, ok := m["post"].(map[string]any)
	if !ok {
		t.Fatalf("post missing: %v", m)
	}
	if got["id"] != "abc" || got["title"] != "Hello" {
		t.Errorf("post = %v", got)
	}
	if got["createDate"] != "2024-01-02T03:04:05Z" {
		t.Errorf("createDate = %v", got["createDate"])
	}
	if _, ok := m["error"]; ok {
		t.Error("error should be omitted on success")
	}
}

func TestSuccessMultiple(t *testing.T) {
	tests := []struct {
		name  string
		posts []*post.Post
		count float64
	}{
		{"empty", nil, 0},
		{"two", []*post.Post{{ID: "a"}, {ID: "b"}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t)
			if err := SuccessMultiple(tt.posts); err != nil {
				t.Fatalf("SuccessMultiple() error = %v", err)
			}
			m := decode(t, buf)
			if m["count"] != tt.count {
				t.Errorf("count = %v, want %v", m["count"], tt.count)
			}
		})
	}
}

func TestSuccessMessage(t *testing.T) {
	buf := capture(t)
	if err := SuccessMessage("Seeded 2 post(s)"); err != nil {
		t.Fatalf("SuccessMessage() error = %v", err)
	}
	m := decode(t, buf)
	if m["message"] != "Seeded 2 post(s)" {
		t.Errorf("message = %v", m["message"])
	}
	if _, ok := m["post"]; ok {
		t.Error("post should be omitted")
	}
}

func TestError(t *testing.T) {
	buf := capture(t)
	err := Error(ErrNotFound, "post x not found")
	if err == nil {
		t.Fatal("Error() should return an error")
	}

	var reported *Reported
	if !errors.As(err, &reported) {
		t.Fatalf("error type = %T, want *Reported", err)
	}
	if reported.Code != ErrNotFound {
		t.Errorf("Code = %q", reported.Code)
	}

	m := decode(t, buf)
	if m["success"] != false {
		t.Errorf("success = %v, want false", m["success"])
	}
	if m["code"] != ErrNotFound || m["error"] != "post x not found" {
		t.Errorf("response = %v", m)
	}
}
