package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/hmans/posts/internal/post"
	"github.com/hmans/posts/internal/ui"
)

// Cached glamour renderer - initialized once
var (
	glamourRenderer     *glamour.TermRenderer
	glamourRendererOnce sync.Once
)

func getGlamourRenderer() *glamour.TermRenderer {
	glamourRendererOnce.Do(func() {
		var err error
		glamourRenderer, err = glamour.NewTermRenderer(glamour.WithAutoStyle())
		if err != nil {
			glamourRenderer = nil
		}
	})
	return glamourRenderer
}

// backToListMsg signals navigation back to the list
type backToListMsg struct{}

// headerHeight covers the bordered title, id and date lines.
const headerHeight = 5

// detailModel displays a single post
type detailModel struct {
	viewport viewport.Model
	post     *post.Post
	width    int
	height   int
	ready    bool
}

func newDetailModel(p *post.Post, width, height int) detailModel {
	m := detailModel{post: p}
	m.resize(width, height)
	return m
}

func (m *detailModel) resize(width, height int) {
	m.width = width
	m.height = height
	if width == 0 {
		return
	}

	vpWidth := width - 4
	vpHeight := max(1, height-headerHeight-3)

	if !m.ready {
		m.viewport = viewport.New(vpWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
	}
	m.viewport.SetContent(m.renderBody())
}

func (m detailModel) Init() tea.Cmd {
	return nil
}

func (m detailModel) Update(msg tea.Msg) (detailModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "backspace":
			return m, func() tea.Msg {
				return backToListMsg{}
			}
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m detailModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	bodyBorder := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorPrimary).
		Width(m.width - 4)
	body := bodyBorder.Render(m.viewport.View())

	scrollPct := int(m.viewport.ScrollPercent() * 100)
	footer := helpStyle.Render(fmt.Sprintf("%d%%", scrollPct)) + "  " +
		helpKeyStyle.Render("j/k") + " " + helpStyle.Render("scroll") + "  " +
		helpKeyStyle.Render("esc") + " " + helpStyle.Render("back") + "  " +
		helpKeyStyle.Render("q") + " " + helpStyle.Render("quit")

	return m.renderHeader() + "\n" + body + "\n" + footer
}

func (m detailModel) renderHeader() string {
	var b strings.Builder
	b.WriteString(detailTitleStyle.Render(m.post.Title))
	b.WriteString("\n")
	b.WriteString(ui.ID.Render(m.post.ID) + "  " + ui.RenderDate(m.post.CreateDate))

	headerBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorMuted).
		Padding(0, 1).
		Width(m.width - 4)

	return headerBox.Render(b.String())
}

func (m detailModel) renderBody() string {
	if m.post.Content == "" {
		return lipgloss.NewStyle().
			Foreground(ui.ColorMuted).
			Padding(0, 1).
			Render("No content")
	}

	renderer := getGlamourRenderer()
	if renderer == nil {
		return m.post.Content
	}

	rendered, err := renderer.Render(m.post.Content)
	if err != nil {
		return m.post.Content
	}

	return strings.TrimSpace(rendered)
}
