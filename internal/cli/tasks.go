package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tgienger/todo/internal/app"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/query"
)

var (
	ErrEmptyTitle    = errors.New("title cannot be empty")
	ErrNotesTooLong  = fmt.Errorf("notes cannot exceed %d characters", models.MaxNotesLength)
	ErrTaskNotFound  = errors.New("no task matches")
	ErrAmbiguousTask = errors.New("more than one task matches")
)

// taskFlags are the editable task fields shared by add and edit
type taskFlags struct {
	description string
	notes       string
	category    string
	priority    string
	due         string
}

func (f *taskFlags) register(cmd *cobra.Command, defaults bool) {
	category, priority := "", ""
	if defaults {
		category, priority = string(models.DefaultCategory), string(models.DefaultPriority)
	}
	cmd.Flags().StringVarP(&f.description, "desc", "d", "", "Description")
	cmd.Flags().StringVarP(&f.notes, "notes", "n", "", "Notes")
	cmd.Flags().StringVar(&f.category, "category", category, "Work, Personal or Study")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", priority, "Low, Medium or High")
	cmd.Flags().StringVar(&f.due, "due", "", "Due date: YYYY-MM-DD, today, tomorrow, +Nd or none")
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	return title, nil
}

func validateNotes(notes string) error {
	if len([]rune(notes)) > models.MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title, err := validateTitle(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if err := validateNotes(f.notes); err != nil {
				return err
			}
			in := models.TaskInput{Title: title, Description: f.description, Notes: f.notes}
			if in.Category, err = models.ParseCategory(f.category); err != nil {
				return err
			}
			if in.Priority, err = models.ParsePriority(f.priority); err != nil {
				return err
			}
			if f.due != "" {
				if in.DueDate, err = parseDue(f.due, now()); err != nil {
					return err
				}
			}

			return withSession(cmd, opts, func(ctx context.Context, s *app.Session) error {
				task, err := s.Tasks.Add(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(out(cmd), "Added %s  %s\n", shortID(task.ID), task.Title)
				return nil
			})
		},
	}
	f.register(cmd, true)
	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var filter, sort, search, category, priority string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *app.Session) error {
				p := s.Tasks.Params()
				var err error
				if cmd.Flags().Changed("filter") {
					if p.Filter, err = models.ParseFilter(filter); err != nil {
						return err
					}
				}
				if cmd.Flags().Changed("sort") {
					if p.Sort, err = models.ParseSort(sort); err != nil {
						return err
					}
				}
				p.Search.Text = search
				if category != "" {
					c, err := models.ParseCategory(category)
					if err != nil {
						return err
					}
					p.Search.Category = &c
				}
				if priority != "" {
					pr, err := models.ParsePriority(priority)
					if err != nil {
						return err
					}
					p.Search.Priority = &pr
				}
				s.Tasks.SetParams(p)

				view := s.Tasks.View()
				if len(view) == 0 {
					fmt.Fprintln(out(cmd), "No tasks.")
					return nil
				}
				for _, t := range view {
					fmt.Fprintln(out(cmd), formatTask(t, search, now()))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "All", "All, Pending, Completed or Overdue")
	cmd.Flags().StringVarP(&sort, "sort", "s", "Created Date", "Created Date, Priority or Due Date")
	cmd.Flags().StringVarP(&search, "search", "q", "", "Text to search in title, description and notes")
	cmd.Flags().StringVar(&category, "category", "", "Only this category")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Only this priority")
	return cmd
}

func newDoneCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task between complete and incomplete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *app.Session) error {
				task, err := findTask(s.Tasks.Tasks(), args[0])
				if err != nil {
					return err
				}
				if err := s.Tasks.ToggleComplete(ctx, task.ID); err != nil {
					return err
				}
				state := "complete"
				if task.Completed {
					state = "incomplete"
				}
				fmt.Fprintf(out(cmd), "Marked %s as %s\n", task.Title, state)
				return nil
			})
		},
	}
}

func newEditCmd(opts *rootOptions) *cobra.Command {
	var (
		f     taskFlags
		title string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := buildPatch(cmd, title, f)
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(ctx context.Context, s *app.Session) error {
				task, err := findTask(s.Tasks.Tasks(), args[0])
				if err != nil {
					return err
				}
				if patch.IsEmpty() {
					fmt.Fprintln(out(cmd), "Nothing to change.")
					return nil
				}
				if err := s.Tasks.Update(ctx, task.ID, patch); err != nil {
					return err
				}
				fmt.Fprintf(out(cmd), "Updated %s\n", shortID(task.ID))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "Title")
	f.register(cmd, false)
	return cmd
}

// buildPatch turns the flags the user actually set into a patch
func buildPatch(cmd *cobra.Command, title string, f taskFlags) (models.TaskPatch, error) {
	var patch models.TaskPatch
	changed := cmd.Flags().Changed
	if changed("title") {
		t, err := validateTitle(title)
		if err != nil {
			return patch, err
		}
		patch.Title = &t
	}
	if changed("desc") {
		patch.Description = &f.description
	}
	if changed("notes") {
		if err := validateNotes(f.notes); err != nil {
			return patch, err
		}
		patch.Notes = &f.notes
	}
	if changed("category") {
		c, err := models.ParseCategory(f.category)
		if err != nil {
			return patch, err
		}
		patch.Category = &c
	}
	if changed("priority") {
		p, err := models.ParsePriority(f.priority)
		if err != nil {
			return patch, err
		}
		patch.Priority = &p
	}
	if changed("due") {
		due, err := parseDue(f.due, now())
		if err != nil {
			return patch, err
		}
		if due == nil {
			patch.ClearDueDate = true
		} else {
			patch.DueDate = due
		}
	}
	return patch, nil
}

func newRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *app.Session) error {
				task, err := findTask(s.Tasks.Tasks(), args[0])
				if err != nil {
					return err
				}
				if err := s.Tasks.Delete(ctx, task.ID); err != nil {
					return err
				}
				fmt.Fprintf(out(cmd), "Deleted %s\n", task.Title)
				return nil
			})
		},
	}
}

func newClearCmd(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("this deletes every task; pass --yes to confirm")
			}
			return withSession(cmd, opts, func(ctx context.Context, s *app.Session) error {
				if err := s.Tasks.ClearAll(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), "All tasks deleted.")
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm")
	return cmd
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count tasks by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *app.Session) error {
				st := query.Summarize(s.Tasks.Tasks(), now())
				fmt.Fprintf(out(cmd), "Total:     %d\n", st.Total)
				fmt.Fprintf(out(cmd), "Pending:   %d\n", st.Pending)
				fmt.Fprintf(out(cmd), "Completed: %d (%.0f%%)\n", st.Completed, st.CompletionRate()*100)
				fmt.Fprintf(out(cmd), "Overdue:   %d\n", st.Overdue)
				return nil
			})
		},
	}
}

// findTask resolves a full ID or a unique fragment of one
func findTask(tasks []models.Task, ref string) (models.Task, error) {
	ref = strings.TrimSpace(ref)
	if i := models.IndexOf(tasks, ref); i != -1 {
		return tasks[i], nil
	}
	var matches []models.Task
	for _, t := range tasks {
		if ref != "" && strings.Contains(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return models.Task{}, fmt.Errorf("%w %q", ErrTaskNotFound, ref)
	case 1:
		return matches[0], nil
	}
	return models.Task{}, fmt.Errorf("%w %q", ErrAmbiguousTask, ref)
}
