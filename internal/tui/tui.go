// Package tui is the interactive post browser behind "posts tui".
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hmans/posts/internal/graph"
	"github.com/hmans/posts/internal/ui"
)

// viewState represents which view is currently active
type viewState int

const (
	viewList viewState = iota
	viewDetail
	viewHelp
)

var (
	listTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fff")).
			Background(ui.ColorPrimary).
			Padding(0, 1).
			Bold(true)
	detailTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ui.ColorPrimary)
	helpKeyStyle     = lipgloss.NewStyle().Foreground(ui.ColorPrimary).Bold(true)
	helpStyle        = lipgloss.NewStyle().Foreground(ui.ColorMuted)
)

// App is the main TUI application model
type App struct {
	state    viewState
	previous viewState
	list     listModel
	detail   detailModel
	help     helpOverlayModel
	resolver *graph.Resolver
	width    int
	height   int
}

// New creates a new TUI application
func New(ctx context.Context, r *graph.Resolver) *App {
	return &App{
		state:    viewList,
		resolver: r,
		list:     newListModel(ctx, r),
	}
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.list.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.width, a.help.height = msg.Width, msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.state == viewDetail || a.state == viewHelp {
				return a, tea.Quit
			}
			// For list, only quit if not filtering
			if a.state == viewList && !a.list.filtering() {
				return a, tea.Quit
			}
		case "?":
			if a.state != viewHelp && !a.list.filtering() {
				a.previous = a.state
				a.state = viewHelp
				a.help = newHelpOverlayModel(a.width, a.height)
				return a, nil
			}
		}

	case selectPostMsg:
		a.state = viewDetail
		a.detail = newDetailModel(msg.post, a.width, a.height)
		return a, a.detail.Init()

	case backToListMsg:
		a.state = viewList
		return a, nil

	case closeHelpMsg:
		a.state = a.previous
		return a, nil
	}

	// Forward all messages to the current view
	switch a.state {
	case viewList:
		a.list, cmd = a.list.Update(msg)
	case viewDetail:
		a.detail, cmd = a.detail.Update(msg)
	case viewHelp:
		a.help, cmd = a.help.Update(msg)
	}

	return a, cmd
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case viewList:
		return a.list.View()
	case viewDetail:
		return a.detail.View()
	case viewHelp:
		return a.help.View()
	}
	return ""
}

// Run starts the TUI application
func Run(ctx context.Context, r *graph.Resolver) error {
	p := tea.NewProgram(New(ctx, r), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
