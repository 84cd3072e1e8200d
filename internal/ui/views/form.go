package views

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/ui/styles"
)

const dateLayout = "2006-01-02"

// form fields in tab order
const (
	fieldTitle = iota
	fieldDesc
	fieldNotes
	fieldCategory
	fieldPriority
	fieldDue
	fieldSave
	fieldCount
)

var (
	errTitleRequired = errors.New("title is required")
	errNotesTooLong  = fmt.Errorf("notes cannot exceed %d characters", models.MaxNotesLength)
	errBadDueDate    = errors.New("due date must be YYYY-MM-DD")
)

// TaskForm creates or edits one task
type TaskForm struct {
	styles    *styles.Styles
	editingID string

	title    textinput.Model
	desc     textarea.Model
	notes    textarea.Model
	due      textinput.Model
	category int
	priority int

	focusIdx int
	err      string
}

// NewTaskForm returns an empty form, or one filled from task when editing
func NewTaskForm(s *styles.Styles, task *models.Task) *TaskForm {
	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = 200

	desc := textarea.New()
	desc.Placeholder = "Description"
	desc.CharLimit = 1000
	desc.SetWidth(50)
	desc.SetHeight(2)
	desc.ShowLineNumbers = false

	notes := textarea.New()
	notes.Placeholder = "Notes"
	notes.CharLimit = models.MaxNotesLength
	notes.SetWidth(50)
	notes.SetHeight(4)
	notes.ShowLineNumbers = false

	due := textinput.New()
	due.Placeholder = dateLayout
	due.CharLimit = len(dateLayout)

	f := &TaskForm{
		styles:   s,
		title:    title,
		desc:     desc,
		notes:    notes,
		due:      due,
		category: slices.Index(models.Categories, models.DefaultCategory),
		priority: slices.Index(models.Priorities, models.DefaultPriority),
	}

	if task != nil {
		f.editingID = task.ID
		f.title.SetValue(task.Title)
		f.desc.SetValue(task.Description)
		f.notes.SetValue(task.Notes)
		if i := slices.Index(models.Categories, task.Category); i >= 0 {
			f.category = i
		}
		if i := slices.Index(models.Priorities, task.Priority); i >= 0 {
			f.priority = i
		}
		if task.DueDate != nil {
			f.due.SetValue(task.DueDate.Format(dateLayout))
		}
	}

	f.updateFocus()
	return f
}

func (f *TaskForm) resize(terminalWidth int) {
	inputWidth := clamp(styles.ContentWidth(terminalWidth)-10, 20, 50)
	f.desc.SetWidth(inputWidth)
	f.notes.SetWidth(inputWidth)
}

// onSave reports whether the save button has focus
func (f *TaskForm) onSave() bool {
	return f.focusIdx == fieldSave
}

func (f *TaskForm) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab":
		f.focusIdx = (f.focusIdx + 1) % fieldCount
		f.updateFocus()
		return nil
	case "shift+tab":
		f.focusIdx = (f.focusIdx + fieldCount - 1) % fieldCount
		f.updateFocus()
		return nil
	case "enter":
		// Enter on single-line fields moves on; textareas take newlines
		if f.focusIdx != fieldDesc && f.focusIdx != fieldNotes {
			f.focusIdx = (f.focusIdx + 1) % fieldCount
			f.updateFocus()
			return nil
		}
	case "left", "h":
		if f.cycleSelector(-1) {
			return nil
		}
	case "right", "l", " ":
		if f.cycleSelector(1) {
			return nil
		}
	}
	return f.update(msg)
}

// cycleSelector steps the focused category or priority selector
func (f *TaskForm) cycleSelector(dir int) bool {
	switch f.focusIdx {
	case fieldCategory:
		f.category = (f.category + dir + len(models.Categories)) % len(models.Categories)
	case fieldPriority:
		f.priority = (f.priority + dir + len(models.Priorities)) % len(models.Priorities)
	default:
		return false
	}
	return true
}

// update forwards msg to the focused input
func (f *TaskForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focusIdx {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldDesc:
		f.desc, cmd = f.desc.Update(msg)
	case fieldNotes:
		f.notes, cmd = f.notes.Update(msg)
	case fieldDue:
		f.due, cmd = f.due.Update(msg)
	}
	return cmd
}

func (f *TaskForm) updateFocus() {
	f.title.Blur()
	f.desc.Blur()
	f.notes.Blur()
	f.due.Blur()

	switch f.focusIdx {
	case fieldTitle:
		f.title.Focus()
	case fieldDesc:
		f.desc.Focus()
	case fieldNotes:
		f.notes.Focus()
	case fieldDue:
		f.due.Focus()
	}
}

// input validates the form and returns its values
func (f *TaskForm) input() (models.TaskInput, error) {
	in := models.TaskInput{
		Title:       strings.TrimSpace(f.title.Value()),
		Description: strings.TrimSpace(f.desc.Value()),
		Notes:       strings.TrimSpace(f.notes.Value()),
		Category:    models.Categories[f.category],
		Priority:    models.Priorities[f.priority],
	}
	if in.Title == "" {
		return in, errTitleRequired
	}
	if utf8.RuneCountInString(in.Notes) > models.MaxNotesLength {
		return in, errNotesTooLong
	}
	if s := strings.TrimSpace(f.due.Value()); s != "" {
		due, err := time.ParseInLocation(dateLayout, s, time.Local)
		if err != nil {
			return in, errBadDueDate
		}
		in.DueDate = &due
	}
	return in, nil
}

func (f *TaskForm) view(width, height int) string {
	s := f.styles
	contentWidth := styles.ContentWidth(width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	fieldStyle := func(idx int) lipgloss.Style {
		if f.focusIdx == idx {
			return s.InputFocused
		}
		return s.Input
	}

	formTitle := "New Task"
	if f.editingID != "" {
		formTitle = "Edit Task"
	}

	btnStyle := s.Button
	if f.focusIdx == fieldSave {
		btnStyle = s.ButtonFocused
	}

	errLine := ""
	if f.err != "" {
		errLine = s.Error.Render(f.err)
	}

	notesCount := s.TitleMuted.Render(fmt.Sprintf("%d/%d", utf8.RuneCountInString(f.notes.Value()), models.MaxNotesLength))

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(formTitle),
		"",
		"Title:",
		fieldStyle(fieldTitle).Width(inputWidth).Render(f.title.View()),
		"Description:",
		fieldStyle(fieldDesc).Render(f.desc.View()),
		"Notes: "+notesCount,
		fieldStyle(fieldNotes).Render(f.notes.View()),
		"Category:",
		fieldStyle(fieldCategory).Width(inputWidth).Render(renderChoices(s, models.Categories, f.category)),
		"Priority:",
		fieldStyle(fieldPriority).Width(inputWidth).Render(renderChoices(s, models.Priorities, f.priority)),
		"Due date:",
		fieldStyle(fieldDue).Width(16).Render(f.due.View()),
		"",
		btnStyle.Render(" Save "),
		errLine,
		s.TitleMuted.Render("Tab: next • ←→: choose • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, width, height)
}

// renderChoices lists values inline with the selected one bracketed
func renderChoices[T ~string](s *styles.Styles, values []T, selected int) string {
	names := make([]string, len(values))
	for i, v := range values {
		if i == selected {
			names[i] = s.HelpKey.Render("[" + string(v) + "]")
		} else {
			names[i] = s.TitleMuted.Render(" " + string(v) + " ")
		}
	}
	return strings.Join(names, " ")
}
