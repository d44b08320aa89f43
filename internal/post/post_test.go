package post

import (
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	p := New("Title", "Body")

	if p.ID != "" {
		t.Errorf("ID = %q, want empty", p.ID)
	}
	if p.CreateDate != nil {
		t.Errorf("CreateDate = %v, want nil", p.CreateDate)
	}
	if p.Title != "Title" || p.Content != "Body" {
		t.Errorf("got %q/%q, want Title/Body", p.Title, p.Content)
	}
	if !p.IsNew() {
		t.Error("IsNew() = false, want true")
	}
}

func TestApplyPreservesIdentity(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &Post{ID: "p1", Title: "Old", Content: "Old body", CreateDate: &created}

	p.Apply(Input{Title: "New", Content: "New body"})

	if p.ID != "p1" {
		t.Errorf("ID = %q, want p1", p.ID)
	}
	if !p.CreateDate.Equal(created) {
		t.Errorf("CreateDate = %v, want %v", p.CreateDate, created)
	}
	if p.Title != "New" || p.Content != "New body" {
		t.Errorf("got %q/%q, want New/New body", p.Title, p.Content)
	}
}

func TestStamp(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.FixedZone("X", 3600))

	t.Run("sets unset date in UTC", func(t *testing.T) {
		p := New("a", "b")
		p.Stamp(now)
		if p.CreateDate == nil {
			t.Fatal("CreateDate not set")
		}
		if p.CreateDate.Location() != time.UTC {
			t.Errorf("location = %v, want UTC", p.CreateDate.Location())
		}
		if !p.CreateDate.Equal(now.Truncate(time.Millisecond)) {
			t.Errorf("CreateDate = %v, want %v", p.CreateDate, now.Truncate(time.Millisecond))
		}
	})

	t.Run("keeps existing date", func(t *testing.T) {
		existing := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		p := &Post{CreateDate: &existing}
		p.Stamp(now)
		if !p.CreateDate.Equal(existing) {
			t.Errorf("CreateDate = %v, want %v", p.CreateDate, existing)
		}
	})
}

func TestClone(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &Post{ID: "p1", Title: "T", Content: "C", CreateDate: &created}

	c := p.Clone()
	if !c.Equal(p) {
		t.Fatalf("Clone() = %+v, want %+v", c, p)
	}

	c.Title = "changed"
	*c.CreateDate = created.Add(time.Hour)
	if p.Title != "T" {
		t.Error("modifying clone changed original title")
	}
	if !p.CreateDate.Equal(created) {
		t.Error("modifying clone changed original CreateDate")
	}

	var nilPost *Post
	if nilPost.Clone() != nil {
		t.Error("Clone() of nil should be nil")
	}
}

func TestFormatCreateDate(t *testing.T) {
	p := New("a", "b")
	if got := p.FormatCreateDate(); got != "" {
		t.Errorf("FormatCreateDate() = %q, want empty", got)
	}

	created := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	p.CreateDate = &created
	if got := p.FormatCreateDate(); got != "2024-03-01T12:30:00Z" {
		t.Errorf("FormatCreateDate() = %q, want 2024-03-01T12:30:00Z", got)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	p := &Post{ID: "abc", Title: "T", Content: "C", CreateDate: &created}

	got := FromDocument("abc", p.ToDocument())
	if !got.Equal(p) {
		t.Errorf("FromDocument(ToDocument()) = %+v, want %+v", got, p)
	}

	empty := FromDocument("x", Document{Title: "T"})
	if empty.CreateDate != nil {
		t.Errorf("zero CreateDate should map to nil, got %v", empty.CreateDate)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantTitle   string
		wantContent string
		wantDate    bool
	}{
		{
			name: "full post",
			input: strings.Join([]string{
				"---",
				"title: Post one",
				"create_date: 2024-03-01T12:30:00Z",
				"---",
				"",
				"Content of Post one",
			}, "\n"),
			wantTitle:   "Post one",
			wantContent: "Content of Post one",
			wantDate:    true,
		},
		{
			name: "no content",
			input: strings.Join([]string{
				"---",
				"title: Empty",
				"---",
				"",
			}, "\n"),
			wantTitle:   "Empty",
			wantContent: "",
		},
		{
			name:        "no front matter",
			input:       "just text",
			wantTitle:   "",
			wantContent: "just text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if p.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", p.Title, tt.wantTitle)
			}
			if p.Content != tt.wantContent {
				t.Errorf("Content = %q, want %q", p.Content, tt.wantContent)
			}
			if (p.CreateDate != nil) != tt.wantDate {
				t.Errorf("CreateDate = %v, want set=%v", p.CreateDate, tt.wantDate)
			}
		})
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	tests := []struct {
		name    string
		content string
	}{
		{"plain", "Hello world"},
		{"multi line", "# Heading\n\nSome *markdown*.\n"},
		{"leading newline", "\nstarts blank"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Post{Title: "Round: trip", Content: tt.content, CreateDate: &created}

			data, err := p.Render()
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if !strings.HasPrefix(string(data), "---\n") {
				t.Errorf("rendered output should start with front matter, got %q", data)
			}

			got, err := Parse(strings.NewReader(string(data)))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got.Title != p.Title {
				t.Errorf("Title = %q, want %q", got.Title, p.Title)
			}
			if got.Content != p.Content {
				t.Errorf("Content = %q, want %q", got.Content, p.Content)
			}
			if got.CreateDate == nil || !got.CreateDate.Equal(created) {
				t.Errorf("CreateDate = %v, want %v", got.CreateDate, created)
			}
		})
	}
}

func TestSortNewestFirst(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	posts := []*Post{
		{ID: "a", Title: "Old", CreateDate: &t1},
		{ID: "b", Title: "Undated"},
		{ID: "c", Title: "Zeta", CreateDate: &t2},
		{ID: "d", Title: "alpha", CreateDate: &t2},
	}
	SortNewestFirst(posts)

	var ids []string
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	if got := strings.Join(ids, ","); got != "d,c,a,b" {
		t.Errorf("order = %s, want d,c,a,b", got)
	}
}
