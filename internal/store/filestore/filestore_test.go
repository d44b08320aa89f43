package filestore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hmans/posts/internal/event"
	"github.com/hmans/posts/internal/post"
	"github.com/hmans/posts/internal/store"
	"github.com/hmans/posts/internal/store/storetest"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), ".posts")

	s, err := Open(root, quietLogger())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	return s, root
}

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Repository {
		s, _ := setupTestStore(t)
		return s
	})
}

func TestOpenCreatesDirectory(t *testing.T) {
	_, root := setupTestStore(t)

	info, err := os.Stat(root)
	if err != nil {
		t.Fatalf("root directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("root is not a directory")
	}
}

func TestSaveWritesMarkdownFile(t *testing.T) {
	s, root := setupTestStore(t)

	saved, err := s.Save(context.Background(), post.New("Post one", "Content of Post one"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if len(saved.ID) != DefaultIDLength {
		t.Errorf("len(ID) = %d, want %d", len(saved.ID), DefaultIDLength)
	}

	data, err := os.ReadFile(filepath.Join(root, saved.ID+".md"))
	if err != nil {
		t.Fatalf("post file not written: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "title: Post one") {
		t.Errorf("file missing title front matter:\n%s", content)
	}
	if !strings.Contains(content, "create_date:") {
		t.Errorf("file missing create_date front matter:\n%s", content)
	}
	if !strings.HasSuffix(content, "Content of Post one") {
		t.Errorf("file missing body:\n%s", content)
	}
}

func TestSetIDLength(t *testing.T) {
	s, _ := setupTestStore(t)
	s.SetIDLength(12)
	s.SetIDLength(0) // ignored

	saved, err := s.Save(context.Background(), post.New("T", "C"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if len(saved.ID) != 12 {
		t.Errorf("len(ID) = %d, want 12", len(saved.ID))
	}
}

func TestSaveRejectsPathLikeIDs(t *testing.T) {
	s, _ := setupTestStore(t)

	for _, id := range []string{"../escape", "a/b", ".hidden"} {
		p := post.New("T", "C")
		p.ID = id
		if _, err := s.Save(context.Background(), p); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Save(id=%q) error = %v, want ErrInvalidID", id, err)
		}
	}
}

func TestLoadReadsExistingFiles(t *testing.T) {
	root := filepath.Join(t.TempDir(), ".posts")
	if err := os.MkdirAll(root, 0755); err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		"abc1.md":   "---\ntitle: Dated\ncreate_date: 2024-03-01T12:30:00Z\n---\n\nBody one",
		"abc2.md":   "---\ntitle: Undated\n---\n\nBody two",
		"notes.txt": "ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(root, "subdir.md"), 0755); err != nil {
		t.Fatal(err)
	}

	s, err := Open(root, quietLogger())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	all, err := s.FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("FindAll() returned %d posts, want 2", len(all))
	}

	dated, err := s.FindByID(context.Background(), "abc1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	want := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	if !dated.CreateDate.Equal(want) {
		t.Errorf("CreateDate = %v, want %v", dated.CreateDate, want)
	}
	if dated.Content != "Body one" {
		t.Errorf("Content = %q, want %q", dated.Content, "Body one")
	}

	undated, err := s.FindByID(context.Background(), "abc2")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if undated.CreateDate == nil {
		t.Error("undated post should fall back to the file modification time")
	}
}

func TestLoadReportsBrokenFiles(t *testing.T) {
	root := t.TempDir()
	bad := "---\ntitle: [unclosed\n---\n"
	if err := os.WriteFile(filepath.Join(root, "bad.md"), []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(root, quietLogger()); err == nil {
		t.Error("Open() should fail on a malformed post file")
	}
}

func TestDeleteRemovesFile(t *testing.T) {
	s, root := setupTestStore(t)
	ctx := context.Background()

	saved, err := s.Save(ctx, post.New("T", "C"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.DeleteByID(ctx, saved.ID); err != nil {
		t.Fatalf("DeleteByID() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, saved.ID+".md")); !os.IsNotExist(err) {
		t.Errorf("post file still exists after delete")
	}
}

func TestPingMissingRoot(t *testing.T) {
	s, root := setupTestStore(t)
	if err := os.RemoveAll(root); err != nil {
		t.Fatal(err)
	}

	err := s.Ping(context.Background())
	if !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("Ping() error = %v, want ErrUnavailable", err)
	}
}

func TestFilenames(t *testing.T) {
	if got := BuildFilename("abc"); got != "abc.md" {
		t.Errorf("BuildFilename() = %q, want abc.md", got)
	}
	if got := ParseFilename("abc.md"); got != "abc" {
		t.Errorf("ParseFilename() = %q, want abc", got)
	}
}

func waitForEvents(t *testing.T, ch <-chan []event.Event) []event.Event {
	t.Helper()
	select {
	case events := <-ch:
		return events
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for watcher events")
	}
	return nil
}

func TestWatchReportsExternalChanges(t *testing.T) {
	s, root := setupTestStore(t)
	ctx := context.Background()

	ch := make(chan []event.Event, 8)
	if err := s.Watch(func(events []event.Event) { ch <- events }); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	// Second call is a no-op
	if err := s.Watch(nil); err != nil {
		t.Fatalf("second Watch() error = %v", err)
	}

	path := filepath.Join(root, "ext1.md")
	if err := os.WriteFile(path, []byte("---\ntitle: External\n---\n\nHello"), 0644); err != nil {
		t.Fatal(err)
	}

	events := waitForEvents(t, ch)
	if len(events) != 1 || events[0].Type != event.Created || events[0].PostID != "ext1" {
		t.Fatalf("events = %+v, want one created ext1", events)
	}
	got, err := s.FindByID(ctx, "ext1")
	if err != nil {
		t.Fatalf("FindByID() after external create error = %v", err)
	}
	if got.Title != "External" {
		t.Errorf("Title = %q, want External", got.Title)
	}

	if err := os.WriteFile(path, []byte("---\ntitle: Edited\n---\n\nHello"), 0644); err != nil {
		t.Fatal(err)
	}
	events = waitForEvents(t, ch)
	if len(events) != 1 || events[0].Type != event.Updated {
		t.Fatalf("events = %+v, want one updated", events)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	events = waitForEvents(t, ch)
	if len(events) != 1 || events[0].Type != event.Deleted || events[0].Post != nil {
		t.Fatalf("events = %+v, want one deleted without post", events)
	}
	if _, err := s.FindByID(ctx, "ext1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("FindByID() after external delete error = %v, want ErrNotFound", err)
	}
}

func TestWatchIgnoresOwnWrites(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	ch := make(chan []event.Event, 8)
	if err := s.Watch(func(events []event.Event) { ch <- events }); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	saved, err := s.Save(ctx, post.New("Mine", "C"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.DeleteByID(ctx, saved.ID); err != nil {
		t.Fatalf("DeleteByID() error = %v", err)
	}

	select {
	case events := <-ch:
		t.Errorf("got events %+v for writes made through the store", events)
	case <-time.After(5 * debounceDelay):
	}
}

func TestUnwatch(t *testing.T) {
	s, root := setupTestStore(t)

	ch := make(chan []event.Event, 8)
	if err := s.Watch(func(events []event.Event) { ch <- events }); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if err := s.Unwatch(); err != nil {
		t.Fatalf("Unwatch() error = %v", err)
	}
	if err := s.Unwatch(); err != nil {
		t.Fatalf("second Unwatch() error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, "late.md"), []byte("---\ntitle: Late\n---\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case events := <-ch:
		t.Errorf("got events %+v after Unwatch", events)
	case <-time.After(5 * debounceDelay):
	}
}
