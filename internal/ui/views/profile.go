package views

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/profile"
	"github.com/tgienger/todo/internal/storage"
	"github.com/tgienger/todo/internal/ui/keys"
	"github.com/tgienger/todo/internal/ui/styles"
)

// ProfileDone signals the profile view has closed
type ProfileDone struct{}

var errAllFieldsRequired = errors.New("name, email and phone are required")

// onboarding pages after the profile step
var introPages = []struct{ title, body string }{
	{
		title: "Organize your day",
		body: "Give each task a category and a priority, and a due date when it has one.\n" +
			"Overdue tasks are flagged so nothing slips.",
	},
	{
		title: "Find anything",
		body: "Press / to search titles, descriptions and notes.\n" +
			"Press f to filter by status, s to change the order, c and p to narrow by category and priority.",
	},
}

// ProfileView edits the profile. In onboarding mode it is the first-run
// flow: the profile step followed by a couple of intro pages.
type ProfileView struct {
	ctx     context.Context
	profile *profile.Service
	prefs   *storage.Preferences
	logger  *slog.Logger
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int

	onboarding bool
	step       int // 0 = profile form, then one per intro page

	inputs   []textinput.Model
	focusIdx int
	err      string
}

// NewProfileView creates the profile form, prefilled from the saved profile
func NewProfileView(ctx context.Context, prof *profile.Service, prefs *storage.Preferences, logger *slog.Logger, onboarding bool) *ProfileView {
	if logger == nil {
		logger = slog.Default()
	}

	current, _ := prof.Current()
	fields := []struct {
		placeholder, value string
	}{
		{"Name", current.Name},
		{"Email", current.Email},
		{"Phone", current.Phone},
	}
	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		in := textinput.New()
		in.Placeholder = f.placeholder
		in.CharLimit = 100
		in.SetValue(f.value)
		inputs[i] = in
	}
	inputs[0].Focus()

	return &ProfileView{
		ctx:        ctx,
		profile:    prof,
		prefs:      prefs,
		logger:     logger,
		styles:     styles.NewStyles(),
		keys:       keys.DefaultKeyMap(),
		onboarding: onboarding,
		inputs:     inputs,
	}
}

// SetStyles swaps the styles after a theme change
func (v *ProfileView) SetStyles(s *styles.Styles) {
	v.styles = s
}

// Init initializes the view
func (v *ProfileView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *ProfileView) values() models.Profile {
	return models.Profile{
		Name:  strings.TrimSpace(v.inputs[0].Value()),
		Email: strings.TrimSpace(v.inputs[1].Value()),
		Phone: strings.TrimSpace(v.inputs[2].Value()),
	}
}

// Update handles messages
func (v *ProfileView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return v, tea.Quit
		}
		if v.step > 0 {
			return v.updateIntro(msg)
		}
		return v.updateForm(msg)
	}

	var cmd tea.Cmd
	if v.step == 0 {
		v.inputs[v.focusIdx], cmd = v.inputs[v.focusIdx].Update(msg)
	}
	return v, cmd
}

func (v *ProfileView) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		if v.onboarding {
			// Skipping needs a saved profile
			if _, ok := v.profile.Current(); !ok {
				v.err = "Tell us who you are to get started"
				return v, nil
			}
			return v, v.finish()
		}
		return v, done

	case key.Matches(msg, v.keys.Save):
		return v, v.save()

	case key.Matches(msg, v.keys.Tab), msg.String() == "down":
		v.moveFocus(1)
		return v, nil

	case msg.String() == "shift+tab", msg.String() == "up":
		v.moveFocus(-1)
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx == len(v.inputs)-1 {
			return v, v.save()
		}
		v.moveFocus(1)
		return v, nil
	}

	var cmd tea.Cmd
	v.inputs[v.focusIdx], cmd = v.inputs[v.focusIdx].Update(msg)
	return v, cmd
}

func (v *ProfileView) updateIntro(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		return v, v.finish()
	case key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Toggle):
		if v.step >= len(introPages) {
			return v, v.finish()
		}
		v.step++
	}
	return v, nil
}

func (v *ProfileView) moveFocus(dir int) {
	v.inputs[v.focusIdx].Blur()
	v.focusIdx = (v.focusIdx + dir + len(v.inputs)) % len(v.inputs)
	v.inputs[v.focusIdx].Focus()
}

func (v *ProfileView) save() tea.Cmd {
	p := v.values()
	if v.onboarding && (p.Name == "" || p.Email == "" || p.Phone == "") {
		v.err = errAllFieldsRequired.Error()
		return nil
	}
	if err := profile.Validate(p); err != nil {
		v.err = err.Error()
		return nil
	}

	if err := v.profile.Update(v.ctx, p); err != nil {
		if !v.onboarding {
			v.err = err.Error()
			return nil
		}
		v.logger.Warn("Failed to save profile during onboarding", "error", err)
	}
	v.err = ""

	if v.onboarding {
		v.step = 1
		return nil
	}
	return done
}

// finish marks onboarding complete and closes the view
func (v *ProfileView) finish() tea.Cmd {
	if err := v.prefs.CompleteOnboarding(v.ctx); err != nil {
		v.logger.Warn("Failed to save onboarding state", "error", err)
	}
	return done
}

func done() tea.Msg { return ProfileDone{} }

// View renders the view
func (v *ProfileView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	var content string
	if v.step > 0 {
		page := introPages[v.step-1]
		action := "Next"
		if v.step == len(introPages) {
			action = "Get started"
		}
		content = lipgloss.JoinVertical(lipgloss.Left,
			s.Title.Render(page.title),
			"",
			lipgloss.NewStyle().Width(clamp(contentWidth-10, 20, 60)).Render(page.body),
			"",
			s.ButtonPrimary.Render(" "+action+" "),
			"",
			s.TitleMuted.Render("Enter: continue • Esc: skip"),
		)
	} else {
		content = v.renderForm()
	}

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProfileView) renderForm() string {
	s := v.styles
	inputWidth := clamp(styles.ContentWidth(v.width)-6, 20, 40)

	heading, hint := "Profile", "Tab: next • Ctrl+S: save • Esc: back"
	if v.onboarding {
		heading, hint = "Welcome! Tell us about yourself", "Tab: next • Enter on phone: continue"
	}

	rows := []string{s.Title.Render(heading), ""}
	labels := []string{"Name:", "Email:", "Phone:"}
	for i, in := range v.inputs {
		style := s.Input
		if i == v.focusIdx {
			style = s.InputFocused
		}
		rows = append(rows, labels[i], style.Width(inputWidth).Render(in.View()))
	}
	if v.err != "" {
		rows = append(rows, s.Error.Render(v.err))
	}
	rows = append(rows, "", s.TitleMuted.Render(hint))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
