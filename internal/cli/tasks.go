package cli

import (
	"fmt"
	"strings"

	"github.com/pdxmph/tasks/internal/format"
	"github.com/pdxmph/tasks/internal/tasks"
	"github.com/spf13/cobra"
)

func newAddCmd(a *app) *cobra.Command {
	var priority string

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a new task",
		Args:  requireArgs(1, "Please provide task text"),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := tasks.ParsePriority(priority)
			if err != nil {
				return err
			}

			store, closeStore, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			task, err := store.Add(strings.Join(args, " "), p)
			if err != nil {
				return err
			}

			f := format.New(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), f.Success(fmt.Sprintf("Added task: %s (ID: %d)", task.Text, task.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&priority, "priority", "p", string(tasks.PriorityMedium), "Task priority (low|medium|high)")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "list [all|completed|pending]",
		Short:     "List tasks",
		Args:      maxArgs(1),
		ValidArgs: []string{"all", "completed", "pending"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw string
			if len(args) > 0 {
				raw = args[0]
			}
			filter, err := tasks.ParseFilter(raw)
			if err != nil {
				return err
			}

			store, closeStore, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			f := format.New(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), f.TaskList(store.Tasks(filter)))
			return nil
		},
	}
}

// newIDCmd builds a command that applies op to the task named by its single ID argument
func newIDCmd(a *app, use, short, verb string, op func(*tasks.Store, int) (tasks.Task, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  requireArgs(1, "Please provide task ID"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := tasks.ParseID(args[0])
			if err != nil {
				return err
			}

			store, closeStore, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			task, err := op(store, id)
			if err != nil {
				return err
			}

			f := format.New(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), f.Success(fmt.Sprintf("%s task: %s", verb, task.Text)))
			return nil
		},
	}
}

func newCompleteCmd(a *app) *cobra.Command {
	return newIDCmd(a, "complete", "Mark task as completed", "Completed", (*tasks.Store).Complete)
}

func newUncompleteCmd(a *app) *cobra.Command {
	return newIDCmd(a, "uncomplete", "Mark task as not completed", "Uncompleted", (*tasks.Store).Uncomplete)
}

func newDeleteCmd(a *app) *cobra.Command {
	return newIDCmd(a, "delete", "Delete a task", "Deleted", (*tasks.Store).Delete)
}

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <text>",
		Short: "Edit task text",
		Args:  requireArgs(2, "Please provide task ID and new text"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := tasks.ParseID(args[0])
			if err != nil {
				return err
			}

			store, closeStore, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			task, err := store.Edit(id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			f := format.New(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), f.Success(fmt.Sprintf("Updated task: %s", task.Text)))
			return nil
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task statistics",
		Args:  maxArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			f := format.New(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), f.Stats(store.Stats()))
			return nil
		},
	}
}
