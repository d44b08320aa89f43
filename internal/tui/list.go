package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hmans/posts/internal/graph"
	"github.com/hmans/posts/internal/post"
	"github.com/hmans/posts/internal/ui"
)

// postItem wraps a Post to implement list.Item
type postItem struct {
	post *post.Post
}

func (i postItem) Title() string       { return i.post.Title }
func (i postItem) Description() string { return i.post.ID }
func (i postItem) FilterValue() string { return i.post.Title + " " + i.post.ID }

// itemDelegate handles rendering of list items
type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

const (
	idWidth   = 28
	dateWidth = 18
)

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(postItem)
	if !ok {
		return
	}

	idCol := lipgloss.NewStyle().Width(idWidth).Render(ui.ID.Render(item.post.ID))
	dateCol := lipgloss.NewStyle().Width(dateWidth).Render(ui.RenderDate(item.post.CreateDate))

	title := truncate(item.post.Title, m.Width()-idWidth-dateWidth-4)

	var str string
	if index == m.Index() {
		cursor := lipgloss.NewStyle().Foreground(ui.ColorPrimary).Bold(true).Render("▌")
		titleStyled := lipgloss.NewStyle().Bold(true).Foreground(ui.ColorPrimary).Render(title)
		str = cursor + " " + idCol + dateCol + titleStyled
	} else {
		str = "  " + idCol + dateCol + title
	}

	fmt.Fprint(w, str)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 3 || len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// listModel is the model for the post list view
type listModel struct {
	ctx      context.Context
	list     list.Model
	resolver *graph.Resolver
	width    int
	height   int
	status   string
	err      error
}

func newListModel(ctx context.Context, r *graph.Resolver) listModel {
	l := list.New([]list.Item{}, itemDelegate{}, 0, 0)
	l.Title = "Posts"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.Styles.Title = listTitleStyle
	l.Styles.TitleBar = lipgloss.NewStyle().Padding(0, 0, 1, 2)
	l.Styles.FilterPrompt = lipgloss.NewStyle().Foreground(ui.ColorPrimary)
	l.Styles.FilterCursor = lipgloss.NewStyle().Foreground(ui.ColorPrimary)

	return listModel{
		ctx:      ctx,
		list:     l,
		resolver: r,
	}
}

// postsLoadedMsg is sent when posts are loaded
type postsLoadedMsg struct {
	posts []*post.Post
}

// postDeletedMsg is sent after a post was removed
type postDeletedMsg struct {
	id string
}

// errMsg is sent when an error occurs
type errMsg struct {
	err error
}

// selectPostMsg is sent when a post is selected
type selectPostMsg struct {
	post *post.Post
}

func (m listModel) Init() tea.Cmd {
	return m.loadPosts
}

func (m listModel) filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m listModel) loadPosts() tea.Msg {
	posts, err := m.resolver.Query().Posts(m.ctx)
	if err != nil {
		return errMsg{err}
	}
	return postsLoadedMsg{posts}
}

func (m listModel) deletePost(id string) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.resolver.Mutation().DeletePost(m.ctx, id); err != nil {
			return errMsg{err}
		}
		return postDeletedMsg{id}
	}
}

func (m listModel) Update(msg tea.Msg) (listModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Reserve space for border and footer
		m.list.SetSize(msg.Width-2, msg.Height-4)

	case postsLoadedMsg:
		post.SortNewestFirst(msg.posts)
		items := make([]list.Item, 0, len(msg.posts))
		for _, p := range msg.posts {
			if p != nil {
				items = append(items, postItem{post: p})
			}
		}
		m.list.SetItems(items)
		m.err = nil
		return m, nil

	case postDeletedMsg:
		m.status = "Deleted " + msg.id
		return m, m.loadPosts

	case errMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if !m.filtering() {
			switch msg.String() {
			case "enter":
				if item, ok := m.list.SelectedItem().(postItem); ok {
					return m, func() tea.Msg {
						return selectPostMsg{post: item.post}
					}
				}
			case "r":
				m.status = ""
				return m, m.loadPosts
			case "d":
				if item, ok := m.list.SelectedItem().(postItem); ok {
					return m, m.deletePost(item.post.ID)
				}
			}
		}
	}

	// Always forward to the list component
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m listModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress r to retry, q to quit.", m.err)
	}

	if m.width == 0 {
		return "Loading..."
	}

	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorMuted).
		Width(m.width - 2).
		Height(m.height - 4)

	content := border.Render(m.list.View())

	help := helpKeyStyle.Render("enter") + " " + helpStyle.Render("view") + "  " +
		helpKeyStyle.Render("/") + " " + helpStyle.Render("filter") + "  " +
		helpKeyStyle.Render("d") + " " + helpStyle.Render("delete") + "  " +
		helpKeyStyle.Render("r") + " " + helpStyle.Render("reload") + "  " +
		helpKeyStyle.Render("?") + " " + helpStyle.Render("help") + "  " +
		helpKeyStyle.Render("q") + " " + helpStyle.Render("quit")
	if m.status != "" {
		help += "  " + ui.Success.Render(m.status)
	}

	return content + "\n" + help
}
