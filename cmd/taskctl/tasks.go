package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TWRT/taskboard/internal/client"
	"github.com/TWRT/taskboard/internal/models"
	"github.com/TWRT/taskboard/internal/taskstore"
)

// resolveTask finds a task by its 1-based position in the full list or by id.
func resolveTask(tasks []models.Task, ref string) (int, models.Task, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(tasks) {
			return 0, models.Task{}, &client.APIError{
				Kind:    client.KindValidation,
				Message: fmt.Sprintf("no task at position %d (have %d)", n, len(tasks)),
			}
		}
		return n - 1, tasks[n-1], nil
	}
	for i, t := range tasks {
		if t.Id == ref {
			return i, t, nil
		}
	}
	return 0, models.Task{}, &client.APIError{
		Kind:    client.KindNotFound,
		Message: fmt.Sprintf("task %q not found", ref),
	}
}

// loadTask resumes the session and resolves ref against the fetched list.
func (a *app) loadTask(ctx context.Context, ref string) (int, models.Task, error) {
	if err := a.requireSession(ctx); err != nil {
		return 0, models.Task{}, err
	}
	return resolveTask(a.session.Store().State().Tasks, ref)
}

// reconcile drops a task the server no longer knows about.
func (a *app) reconcile(id string, err error) error {
	if client.IsKind(err, client.KindNotFound) {
		a.session.Syncer().Forget(id)
	}
	return err
}

func printTasks(w io.Writer, state taskstore.State) {
	position := make(map[string]int, len(state.Tasks))
	for i, t := range state.Tasks {
		position[t.Id] = i + 1
	}

	if len(state.FilteredTasks) == 0 {
		fmt.Fprintln(w, "No tasks.")
	}
	for _, t := range state.FilteredTasks {
		printTask(w, position[t.Id], t)
	}

	c := taskstore.Count(state.Tasks)
	fmt.Fprintf(w, "%d total, %d completed, %d pending\n", c.Total, c.Completed, c.Pending)
}

func printTask(w io.Writer, n int, t models.Task) {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	line := fmt.Sprintf("%3d. [%s] %s (%s)", n, mark, t.Title, t.Priority)
	if t.DueDate != nil {
		line += " due " + t.DueDate.Format("2006-01-02")
	}
	fmt.Fprintln(w, line)
	if t.Description != "" {
		fmt.Fprintf(w, "       %s\n", t.Description)
	}
}

func newListCmd(a *app) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks in board order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := taskstore.ParseFilter(filter)
			if err != nil {
				return &client.APIError{Kind: client.KindValidation, Message: err.Error()}
			}
			if err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			printTasks(a.out, a.session.Syncer().SetFilter(f))
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "show all, completed or pending tasks")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	var description, priority, due string
	cmd := &cobra.Command{
		Use:   "add <title>...",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := models.CreateTaskInput{
				Title:       strings.Join(args, " "),
				Description: description,
				Priority:    models.Priority(priority),
			}
			if due != "" {
				d, err := models.ParseDate(due)
				if err != nil {
					return &client.APIError{Kind: client.KindValidation, Message: err.Error()}
				}
				in.DueDate = &d
			}

			if err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			task, err := a.session.Syncer().Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Added %q (%s)\n", task.Title, task.Id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high (default medium)")
	cmd.Flags().StringVar(&due, "due", "", "due date as YYYY-MM-DD")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var (
		title, description, priority, due string
		clearDescription, clearDue        bool
	)
	cmd := &cobra.Command{
		Use:   "edit <task>",
		Short: "Change fields of a task",
		Long:  "Change fields of a task. <task> is a position from `taskctl list` or a task id. Only the flags given are sent.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var in models.UpdateTaskInput
			if flags.Changed("title") {
				in.Title = models.Some(title)
			}
			switch {
			case clearDescription:
				in.Description = models.Cleared[string]()
			case flags.Changed("description"):
				in.Description = models.Some(description)
			}
			if flags.Changed("priority") {
				in.Priority = models.Some(models.Priority(priority))
			}
			switch {
			case clearDue:
				in.DueDate = models.Cleared[models.Date]()
			case flags.Changed("due"):
				d, err := models.ParseDate(due)
				if err != nil {
					return &client.APIError{Kind: client.KindValidation, Message: err.Error()}
				}
				in.DueDate = models.Some(d)
			}
			if in == (models.UpdateTaskInput{}) {
				return &client.APIError{Kind: client.KindValidation, Message: "nothing to change"}
			}

			_, task, err := a.loadTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			updated, err := a.session.Syncer().Edit(cmd.Context(), task.Id, in)
			if err != nil {
				return a.reconcile(task.Id, err)
			}
			fmt.Fprintf(a.out, "Updated %q\n", updated.Title)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&title, "title", "t", "", "new title")
	f.StringVarP(&description, "description", "d", "", "new description")
	f.StringVarP(&priority, "priority", "p", "", "low, medium or high")
	f.StringVar(&due, "due", "", "due date as YYYY-MM-DD")
	f.BoolVar(&clearDescription, "clear-description", false, "remove the description")
	f.BoolVar(&clearDue, "clear-due", false, "remove the due date")
	cmd.MarkFlagsMutuallyExclusive("description", "clear-description")
	cmd.MarkFlagsMutuallyExclusive("due", "clear-due")
	return cmd
}

func newToggleCmd(a *app) *cobra.Command {
	var done, undone bool
	cmd := &cobra.Command{
		Use:   "toggle <task>",
		Short: "Flip a task between completed and pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var desired *bool
			switch {
			case done:
				desired = &done
			case undone:
				pending := false
				desired = &pending
			}

			_, task, err := a.loadTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			updated, err := a.session.Syncer().ToggleCompletion(cmd.Context(), task.Id, desired)
			if err != nil {
				return a.reconcile(task.Id, err)
			}
			state := "pending"
			if updated.Completed {
				state = "completed"
			}
			fmt.Fprintf(a.out, "%q is now %s\n", updated.Title, state)
			return nil
		},
	}
	cmd.Flags().BoolVar(&done, "done", false, "mark completed instead of flipping")
	cmd.Flags().BoolVar(&undone, "undone", false, "mark pending instead of flipping")
	cmd.MarkFlagsMutuallyExclusive("done", "undone")
	return cmd
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <task>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, task, err := a.loadTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.session.Syncer().Remove(cmd.Context(), task.Id); err != nil {
				return a.reconcile(task.Id, err)
			}
			fmt.Fprintf(a.out, "Deleted %q\n", task.Title)
			return nil
		},
	}
}

func newMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move <task> <position>",
		Short: "Move a task to a new 1-based position on the board",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := strconv.Atoi(args[1])
			if err != nil {
				return &client.APIError{Kind: client.KindValidation, Message: fmt.Sprintf("invalid position %q", args[1])}
			}

			from, task, err := a.loadTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			tasks := a.session.Store().State().Tasks
			if to < 1 || to > len(tasks) {
				return &client.APIError{
					Kind:    client.KindValidation,
					Message: fmt.Sprintf("position must be between 1 and %d", len(tasks)),
				}
			}

			ordered := moveTask(tasks, from, to-1)
			if err := a.session.Syncer().Reorder(cmd.Context(), ordered); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Moved %q to position %d\n", task.Title, to)
			return nil
		},
	}
}

// moveTask returns a copy of tasks with the element at from relocated to to.
func moveTask(tasks []models.Task, from, to int) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	moved := tasks[from]
	for i, t := range tasks {
		if i != from {
			out = append(out, t)
		}
	}
	out = append(out[:to], append([]models.Task{moved}, out[to:]...)...)
	return out
}
