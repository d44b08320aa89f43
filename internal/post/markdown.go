package post

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// frontMatter is the subset of Post that gets serialized to YAML front matter.
// The ID lives in the file name and the content is the markdown body.
type frontMatter struct {
	Title      string     `yaml:"title"`
	CreateDate *time.Time `yaml:"create_date,omitempty"`
}

// Parse reads a post from a reader (markdown with YAML front matter).
// The returned post has no ID; callers derive it from the file name.
func Parse(r io.Reader) (*Post, error) {
	var fm frontMatter
	body, err := frontmatter.Parse(r, &fm)
	if err != nil {
		return nil, fmt.Errorf("parsing front matter: %w", err)
	}

	p := &Post{
		Title:   fm.Title,
		Content: strings.TrimPrefix(string(body), "\n"),
	}
	if fm.CreateDate != nil {
		t := fm.CreateDate.UTC()
		p.CreateDate = &t
	}
	return p, nil
}

// Render serializes the post to markdown with YAML front matter.
func (p *Post) Render() ([]byte, error) {
	fm := frontMatter{
		Title:      p.Title,
		CreateDate: p.CreateDate,
	}

	fmBytes, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, fmt.Errorf("marshaling front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fmBytes)
	buf.WriteString("---\n")
	if p.Content != "" {
		buf.WriteString("\n")
		buf.WriteString(p.Content)
	}

	return buf.Bytes(), nil
}
