package ui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/todo/internal/app"
	"github.com/tgienger/todo/internal/tasks"
	"github.com/tgienger/todo/internal/ui/styles"
	"github.com/tgienger/todo/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewTasks View = iota
	ViewProfile
)

type App struct {
	ctx         context.Context
	session     *app.Session
	logger      *slog.Logger
	currentView View
	taskList    *views.TaskListView
	profile     *views.ProfileView
	width       int
	height      int
}

// Creates a new application. First runs open on onboarding.
func NewApp(ctx context.Context, s *app.Session, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	styles.Use(s.Preferences.Theme(ctx))

	a := &App{
		ctx:      ctx,
		session:  s,
		logger:   logger,
		taskList: views.NewTaskListView(ctx, s.Tasks, s.Preferences, s.Profile),
	}
	if !s.Preferences.OnboardingCompleted(ctx) {
		a.currentView = ViewProfile
		a.profile = views.NewProfileView(ctx, s.Profile, s.Preferences, logger, true)
	}
	return a
}

func (a *App) Init() tea.Cmd {
	if a.currentView == ViewProfile {
		return a.profile.Init()
	}
	return a.taskList.Init()
}

func (a *App) resize() tea.Cmd {
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: a.width, Height: a.height}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Task list always tracks size since it persists
		a.taskList.Update(msg)
		if a.currentView == ViewProfile {
			a.profile.Update(msg)
		}
		return a, nil

	case views.StoreChanged:
		a.taskList.Update(msg)
		return a, nil

	case views.ThemeChanged:
		styles.Use(msg.Mode)
		s := styles.NewStyles()
		a.taskList.SetStyles(s)
		if a.profile != nil {
			a.profile.SetStyles(s)
		}
		return a, nil

	case views.OpenProfile:
		a.currentView = ViewProfile
		a.profile = views.NewProfileView(a.ctx, a.session.Profile, a.session.Preferences, a.logger, false)
		return a, tea.Batch(a.profile.Init(), a.resize())

	case views.ProfileDone:
		a.currentView = ViewTasks
		a.profile = nil
		return a, a.resize()
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewProfile:
		_, cmd = a.profile.Update(msg)
	case ViewTasks:
		_, cmd = a.taskList.Update(msg)
	}

	return a, cmd
}

func (a *App) View() string {
	if a.currentView == ViewProfile && a.profile != nil {
		return a.profile.View()
	}
	return a.taskList.View()
}

// Run opens the interactive task list on s and blocks until the user quits
func Run(ctx context.Context, s *app.Session) error {
	a := NewApp(ctx, s, s.Logger())
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(ctx))

	// Store callbacks fire inside Update; hand them to the event loop
	// without blocking it.
	unsubscribe := s.Tasks.Subscribe(func(e tasks.Event) {
		go p.Send(views.StoreChanged{Event: e})
	})
	defer unsubscribe()

	_, err := p.Run()
	a.taskList.Flush()
	return err
}
