package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/profile"
	"github.com/tgienger/todo/internal/query"
	"github.com/tgienger/todo/internal/storage"
	"github.com/tgienger/todo/internal/tasks"
	"github.com/tgienger/todo/internal/ui/keys"
	"github.com/tgienger/todo/internal/ui/styles"
)

// undoWindow is how long a deleted task can be restored
const undoWindow = 5 * time.Second

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// FocusArea represents which part of the UI has focus
type FocusArea int

const (
	FocusTaskList FocusArea = iota
	FocusSearchInput
)

// StoreChanged is sent when the task store publishes an event
type StoreChanged struct {
	Event tasks.Event
}

// ThemeChanged asks the app to restyle every view
type ThemeChanged struct {
	Mode models.ThemeMode
}

// OpenProfile asks the app to show the profile form
type OpenProfile struct{}

type undoExpiredMsg struct {
	seq int
}

// TaskListView shows the filtered, searched and sorted task list
type TaskListView struct {
	ctx     context.Context
	store   *tasks.Store
	prefs   *storage.Preferences
	profile *profile.Service
	styles  *styles.Styles
	keys    keys.KeyMap
	help    help.Model
	now     func() time.Time

	width  int
	height int

	tasks []models.Task
	stats query.Stats

	// UI state
	focus       FocusArea
	cursor      int
	scrollY     int
	searchInput textinput.Model
	status      string

	form        *TaskForm
	viewingTask bool

	// Delete confirmation
	confirmingDelete bool
	deleteTarget     models.Task
	confirmingClear  bool

	// Deleted task hidden from the list until the undo window closes
	pendingDelete *models.Task
	pendingSeq    int

	// Help popup (shown with ?)
	showHelpPopup bool
}

// NewTaskListView creates the task list over an open store
func NewTaskListView(ctx context.Context, store *tasks.Store, prefs *storage.Preferences, prof *profile.Service) *TaskListView {
	search := textinput.New()
	search.Placeholder = "Search tasks..."
	search.CharLimit = 100
	search.SetValue(store.Params().Search.Text)

	st := styles.NewStyles()
	v := &TaskListView{
		ctx:         ctx,
		store:       store,
		prefs:       prefs,
		profile:     prof,
		styles:      st,
		keys:        keys.DefaultKeyMap(),
		help:        newHelp(st),
		now:         time.Now,
		focus:       FocusTaskList,
		searchInput: search,
	}
	v.refresh()
	return v
}

// Init initializes the view
func (v *TaskListView) Init() tea.Cmd {
	return nil
}

// newHelp returns a help model colored to match s
func newHelp(s *styles.Styles) help.Model {
	h := help.New()
	h.Styles.ShortKey = s.HelpKey
	h.Styles.ShortDesc = s.HelpDesc
	h.Styles.FullKey = s.HelpKey
	h.Styles.FullDesc = s.HelpDesc
	return h
}

// SetStyles swaps the styles after a theme change
func (v *TaskListView) SetStyles(s *styles.Styles) {
	v.styles = s
	width := v.help.Width
	v.help = newHelp(s)
	v.help.Width = width
	if v.form != nil {
		v.form.styles = s
	}
}

// refresh reads the current view of the store
func (v *TaskListView) refresh() {
	view, all := v.store.View(), v.store.Tasks()
	if v.pendingDelete != nil {
		view = without(view, v.pendingDelete.ID)
		all = without(all, v.pendingDelete.ID)
	}
	v.tasks = view
	v.stats = query.Summarize(all, v.now())
	if v.cursor >= len(v.tasks) {
		v.cursor = max(0, len(v.tasks)-1)
	}
	v.ensureVisible()
}

func without(tasks []models.Task, id string) []models.Task {
	kept := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	return kept
}

func (v *TaskListView) selected() (models.Task, bool) {
	if len(v.tasks) == 0 || v.cursor >= len(v.tasks) {
		return models.Task{}, false
	}
	return v.tasks[v.cursor], true
}

// Update handles messages
func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.help.Width = styles.ContentWidth(v.width)
		if v.form != nil {
			v.form.resize(v.width)
		}
		v.ensureVisible()
		return v, nil

	case StoreChanged:
		v.refresh()
		return v, nil

	case undoExpiredMsg:
		if v.pendingDelete != nil && msg.seq == v.pendingSeq {
			v.commitDelete()
		}
		return v, nil

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete || v.confirmingClear {
			return v.updateConfirm(msg)
		}

		if v.form != nil {
			return v.updateForm(msg)
		}

		if v.viewingTask {
			return v.updateViewingTask(msg)
		}

		return v.updateNormal(msg)
	}

	if v.form != nil {
		return v, v.form.update(msg)
	}
	return v, nil
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle search input typing first - don't process hotkeys while typing
	if v.focus == FocusSearchInput {
		switch {
		case key.Matches(msg, v.keys.Back):
			v.searchInput.SetValue("")
			v.searchInput.Blur()
			v.focus = FocusTaskList
			v.setSearch("")
			return v, nil
		case key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Tab):
			v.searchInput.Blur()
			v.focus = FocusTaskList
			return v, nil
		default:
			var cmd tea.Cmd
			v.searchInput, cmd = v.searchInput.Update(msg)
			v.setSearch(v.searchInput.Value())
			return v, cmd
		}
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		v.commitDelete()
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		if v.searchInput.Value() != "" {
			v.searchInput.SetValue("")
			v.setSearch("")
		}
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.tasks)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if _, ok := v.selected(); ok {
			v.viewingTask = true
		}
		return v, nil

	case key.Matches(msg, v.keys.Toggle):
		return v, v.toggleSelected()

	case key.Matches(msg, v.keys.New):
		v.form = NewTaskForm(v.styles, nil)
		v.form.resize(v.width)
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit):
		if task, ok := v.selected(); ok {
			v.form = NewTaskForm(v.styles, &task)
			v.form.resize(v.width)
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if task, ok := v.selected(); ok {
			v.confirmingDelete = true
			v.deleteTarget = task
		}
		return v, nil

	case key.Matches(msg, v.keys.Undo):
		if v.pendingDelete != nil {
			v.status = "Restored " + v.pendingDelete.Title
			v.pendingDelete = nil
			v.refresh()
		}
		return v, nil

	case key.Matches(msg, v.keys.Clear):
		if v.stats.Total > 0 {
			v.confirmingClear = true
		}
		return v, nil

	case key.Matches(msg, v.keys.Search):
		v.focus = FocusSearchInput
		v.searchInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Filter):
		p := v.store.Params()
		p.Filter = p.Filter.Next()
		v.cursor, v.scrollY = 0, 0
		v.setParams(p)
		return v, nil

	case key.Matches(msg, v.keys.Sort):
		p := v.store.Params()
		p.Sort = p.Sort.Next()
		v.setParams(p)
		return v, nil

	case key.Matches(msg, v.keys.Category):
		p := v.store.Params()
		p.Search.Category = nextFacet(models.Categories, p.Search.Category)
		v.cursor, v.scrollY = 0, 0
		v.setParams(p)
		return v, nil

	case key.Matches(msg, v.keys.Priority):
		p := v.store.Params()
		p.Search.Priority = nextFacet(models.Priorities, p.Search.Priority)
		v.cursor, v.scrollY = 0, 0
		v.setParams(p)
		return v, nil

	case key.Matches(msg, v.keys.Theme):
		return v, v.cycleTheme()

	case key.Matches(msg, v.keys.Profile):
		return v, func() tea.Msg { return OpenProfile{} }

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

// nextFacet steps through nil (any) and then each value in turn
func nextFacet[T comparable](values []T, cur *T) *T {
	if cur == nil {
		next := values[0]
		return &next
	}
	for i, val := range values {
		if val == *cur {
			if i == len(values)-1 {
				return nil
			}
			next := values[i+1]
			return &next
		}
	}
	return nil
}

func (v *TaskListView) setParams(p query.Params) {
	v.store.SetParams(p)
	v.refresh()
}

func (v *TaskListView) setSearch(text string) {
	p := v.store.Params()
	if p.Search.Text == text {
		return
	}
	p.Search.Text = text
	v.cursor, v.scrollY = 0, 0
	v.setParams(p)
}

func (v *TaskListView) toggleSelected() tea.Cmd {
	task, ok := v.selected()
	if !ok {
		return nil
	}
	if err := v.store.ToggleComplete(v.ctx, task.ID); err != nil {
		v.status = "Could not update task: " + err.Error()
		return nil
	}
	v.status = ""
	v.refresh()
	return nil
}

func (v *TaskListView) cycleTheme() tea.Cmd {
	mode := v.prefs.Theme(v.ctx)
	switch mode {
	case models.ThemeLight:
		mode = models.ThemeDark
	case models.ThemeDark:
		mode = models.ThemeSystem
	default:
		mode = models.ThemeLight
	}
	if err := v.prefs.SetTheme(v.ctx, mode); err != nil {
		v.status = "Could not save theme: " + err.Error()
		return nil
	}
	v.status = "Theme: " + string(mode)
	return func() tea.Msg { return ThemeChanged{Mode: mode} }
}

// removeWithUndo hides the task now and deletes it when the undo window
// closes. A task already waiting is deleted first.
func (v *TaskListView) removeWithUndo(task models.Task) tea.Cmd {
	v.commitDelete()
	v.pendingDelete = &task
	v.pendingSeq++
	v.status = fmt.Sprintf("Deleted %q. Press u to undo.", task.Title)
	v.refresh()

	seq := v.pendingSeq
	return tea.Tick(undoWindow, func(time.Time) tea.Msg {
		return undoExpiredMsg{seq: seq}
	})
}

// commitDelete removes the task waiting in the undo window from storage
func (v *TaskListView) commitDelete() {
	v.commitDeleteCtx(v.ctx)
}

func (v *TaskListView) commitDeleteCtx(ctx context.Context) {
	if v.pendingDelete == nil {
		return
	}
	task := *v.pendingDelete
	v.pendingDelete = nil
	if err := v.store.Delete(ctx, task.ID); err != nil {
		v.status = "Could not delete task: " + err.Error()
	} else if strings.HasPrefix(v.status, "Deleted") {
		v.status = ""
	}
	v.refresh()
}

// Flush finishes any delete still waiting for undo, even after the view's
// context is canceled
func (v *TaskListView) Flush() {
	v.commitDeleteCtx(context.WithoutCancel(v.ctx))
}

func (v *TaskListView) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if v.confirmingClear {
			v.confirmingClear = false
			v.pendingDelete = nil
			if err := v.store.ClearAll(v.ctx); err != nil {
				v.status = "Could not clear tasks: " + err.Error()
			} else {
				v.status = "All tasks deleted"
			}
			v.refresh()
			return v, nil
		}
		v.confirmingDelete = false
		v.viewingTask = false
		return v, v.removeWithUndo(v.deleteTarget)
	case "n", "N", "esc":
		v.confirmingDelete = false
		v.confirmingClear = false
		return v, nil
	}
	return v, nil
}

func (v *TaskListView) updateViewingTask(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	task, ok := v.selected()
	if !ok {
		v.viewingTask = false
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter):
		v.viewingTask = false
		return v, nil
	case key.Matches(msg, v.keys.Edit):
		v.viewingTask = false
		v.form = NewTaskForm(v.styles, &task)
		v.form.resize(v.width)
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Toggle):
		return v, v.toggleSelected()
	case key.Matches(msg, v.keys.Delete):
		v.confirmingDelete = true
		v.deleteTarget = task
		return v, nil
	case key.Matches(msg, v.keys.Quit):
		v.commitDelete()
		return v, tea.Quit
	}
	return v, nil
}

func (v *TaskListView) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.form = nil
		return v, nil
	case key.Matches(msg, v.keys.Save):
		return v, v.saveTask()
	case key.Matches(msg, v.keys.Enter) && v.form.onSave():
		return v, v.saveTask()
	}
	return v, v.form.handleKey(msg)
}

func (v *TaskListView) saveTask() tea.Cmd {
	in, err := v.form.input()
	if err != nil {
		v.form.err = err.Error()
		return nil
	}

	if v.form.editingID == "" {
		if _, err := v.store.Add(v.ctx, in); err != nil {
			v.form.err = err.Error()
			return nil
		}
		v.status = "Added " + in.Title
	} else {
		patch := models.TaskPatch{
			Title:       &in.Title,
			Description: &in.Description,
			Notes:       &in.Notes,
			Category:    &in.Category,
			Priority:    &in.Priority,
		}
		if in.DueDate == nil {
			patch.ClearDueDate = true
		} else {
			patch.DueDate = in.DueDate
		}
		if err := v.store.Update(v.ctx, v.form.editingID, patch); err != nil {
			v.form.err = err.Error()
			return nil
		}
		v.status = "Saved " + in.Title
	}

	v.form = nil
	v.refresh()
	return nil
}

func (v *TaskListView) ensureVisible() {
	visibleItems := v.visibleItems()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visibleItems {
		v.scrollY = v.cursor - visibleItems + 1
	}
}

// visibleItems is how many task rows fit. Each row is 2 lines + 1 margin.
func (v *TaskListView) visibleItems() int {
	availableHeight := v.height - 12
	if availableHeight < 3 {
		availableHeight = 3
	}
	return max(availableHeight/3, 1)
}

// View renders the view
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete || v.confirmingClear {
		return v.renderConfirm()
	}

	if v.form != nil {
		return v.form.view(v.width, v.height)
	}

	if v.viewingTask {
		return v.renderTaskView()
	}

	var b strings.Builder

	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")

	b.WriteString(v.renderTaskList())

	b.WriteString("\n")
	if v.status != "" {
		b.WriteString(v.styles.StatusBar.Render(v.status))
		b.WriteString("\n")
	}
	b.WriteString(v.styles.Help.Render(v.help.View(v.keys)))

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	titleText := "Tasks"
	if p, ok := v.profile.Current(); ok && p.Name != "" {
		titleText = p.Name + "'s tasks"
	}
	title := s.Title.Render(titleText)

	st := v.stats
	counts := s.TitleMuted.Render(fmt.Sprintf("%d total · %d pending · %d done · ", st.Total, st.Pending, st.Completed))
	overdue := fmt.Sprintf("%d overdue", st.Overdue)
	if st.Overdue > 0 {
		overdue = s.Overdue.Render(overdue)
	} else {
		overdue = s.TitleMuted.Render(overdue)
	}

	searchStyle := s.Input
	if v.focus == FocusSearchInput {
		searchStyle = s.InputFocused
	}
	searchWidth := clamp(contentWidth-8, 10, 30)
	searchBox := searchStyle.Width(searchWidth).Render(v.searchInput.View())

	p := v.store.Params()
	category, priority := "Any", "Any"
	if p.Search.Category != nil {
		category = string(*p.Search.Category)
	}
	if p.Search.Priority != nil {
		priority = string(*p.Search.Priority)
	}
	params := []string{
		s.HelpKey.Render("f") + " " + string(p.Filter),
		s.HelpKey.Render("s") + " " + string(p.Sort),
		s.HelpKey.Render("c") + " " + category,
		s.HelpKey.Render("p") + " " + priority,
	}

	var bar string
	if contentWidth < 60 {
		bar = lipgloss.JoinVertical(lipgloss.Left, searchBox, strings.Join(params, "  "))
	} else {
		bar = lipgloss.JoinHorizontal(lipgloss.Center, searchBox, "  ", strings.Join(params, "  "))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, counts+overdue, "", bar)
}

func (v *TaskListView) renderTaskList() string {
	s := v.styles

	if len(v.tasks) == 0 {
		if v.stats.Total == 0 {
			return s.TitleMuted.Render("No tasks yet. Press 'n' to create one.")
		}
		return s.TitleMuted.Render("No tasks match. Press 'f' to change the filter or esc to clear the search.")
	}

	var items []string
	endIdx := min(v.scrollY+v.visibleItems(), len(v.tasks))

	for i := v.scrollY; i < endIdx; i++ {
		items = append(items, v.renderTaskItem(v.tasks[i], i == v.cursor && v.focus == FocusTaskList))
	}

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

// highlight renders text with the parts matching the search marked
func (v *TaskListView) highlight(text string, base lipgloss.Style) string {
	var b strings.Builder
	for _, seg := range query.Highlight(text, v.store.Params().Search.Text) {
		if seg.Match {
			b.WriteString(v.styles.Match.Render(seg.Text))
		} else {
			b.WriteString(base.Render(seg.Text))
		}
	}
	return b.String()
}

func (v *TaskListView) renderTaskItem(task models.Task, selected bool) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)

	check := "○ "
	textStyle := s.TaskTitle
	if task.Completed {
		check = "● "
		textStyle = s.TaskDone
	}

	theme := styles.Current
	badge := s.TaskPriority.Foreground(theme.PriorityColor(task.Priority)).Render(string(task.Priority))
	tag := s.Tag.Foreground(theme.CategoryColor(task.Category)).Render("● " + string(task.Category))
	meta := []string{badge, tag}
	if task.DueDate != nil {
		due := "due " + task.DueDate.Format("Jan 2")
		if query.IsOverdue(task, v.now()) {
			meta = append(meta, s.Overdue.Render(due+" overdue"))
		} else {
			meta = append(meta, s.TitleMuted.Render(due))
		}
	}

	rowStyle := s.ListItem
	if selected {
		rowStyle = s.ListSelected
	}

	title := rowStyle.Width(width).Render(check + v.highlight(task.Title, textStyle))
	info := rowStyle.Width(width).Render("  " + strings.Join(meta, "  "))

	return lipgloss.JoinVertical(lipgloss.Left, title, info) + "\n"
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	full := v.help
	full.ShowAll = true
	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Keyboard Shortcuts"),
		"",
		full.View(v.keys),
		"",
		s.TitleMuted.Render("Press any key to close"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.FilterBar.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	heading, detail := "Delete Task?", v.deleteTarget.Title
	if v.confirmingClear {
		heading = "Delete All Tasks?"
		detail = fmt.Sprintf("All %d tasks will be removed. This cannot be undone.", v.stats.Total)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render(heading),
		"",
		s.TitleMuted.Render(detail),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderTaskView() string {
	task, ok := v.selected()
	if !ok {
		return ""
	}

	s := v.styles
	textWidth := clamp(styles.ContentWidth(v.width)-10, 20, 70)
	labelStyle := s.TitleMuted

	status := "Pending"
	if task.Completed {
		status = "Completed"
		if task.CompletedAt != nil {
			status += " " + task.CompletedAt.Local().Format("Jan 2, 2006 3:04 PM")
		}
	} else if query.IsOverdue(task, v.now()) {
		status = s.Overdue.Render("Overdue")
	}

	due := "None"
	if task.DueDate != nil {
		due = task.DueDate.Format("Mon, Jan 2 2006")
	}

	descText := task.Description
	if descText == "" {
		descText = s.TitleMuted.Render("No description")
	}
	notesText := task.Notes
	if notesText == "" {
		notesText = s.TitleMuted.Render("No notes")
	}

	theme := styles.Current
	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.MarginBottom(1).Render(task.Title),
		labelStyle.Render("Status"),
		status,
		"",
		labelStyle.Render("Priority"),
		lipgloss.NewStyle().Foreground(theme.PriorityColor(task.Priority)).Bold(true).Render(string(task.Priority)),
		"",
		labelStyle.Render("Category"),
		lipgloss.NewStyle().Foreground(theme.CategoryColor(task.Category)).Render(string(task.Category)),
		"",
		labelStyle.Render("Due"),
		due,
		"",
		labelStyle.Render("Description"),
		lipgloss.NewStyle().Width(textWidth).Render(descText),
		"",
		labelStyle.Render("Notes"),
		lipgloss.NewStyle().Width(textWidth).Render(notesText),
		"",
		labelStyle.Render("Created "+task.CreatedAt.Local().Format("Jan 2, 2006 3:04 PM")),
		"",
		s.Help.Render(fmt.Sprintf("%s edit • %s done • %s delete • %s back",
			s.HelpKey.Render("e"),
			s.HelpKey.Render("space"),
			s.HelpKey.Render("d"),
			s.HelpKey.Render("esc"),
		)),
	)

	padded := lipgloss.NewStyle().Padding(1, 2).Render(content)
	return styles.CenterView(padded, v.width, v.height)
}
