package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cer0un0/yaru/internal/task"
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a new task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		priority, _ := cmd.Flags().GetString("priority")

		var t task.Task
		params := map[string]string{
			"title":       args[0],
			"description": description,
			"priority":    priority,
		}
		if err := call("task.create", params, &t); err != nil {
			return err
		}
		fmt.Printf("Added task %s\n", t.ShortID())
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		priority, _ := cmd.Flags().GetString("priority")
		sortBy, _ := cmd.Flags().GetString("sort")
		order, _ := cmd.Flags().GetString("order")

		params := map[string]string{}
		if status != "" {
			params["status"] = status
		}
		if priority != "" {
			params["priority"] = priority
		}
		if sortBy != "" {
			params["sortBy"] = sortBy
			params["sortOrder"] = order
		}

		var tasks []task.Task
		if err := call("task.list", params, &tasks); err != nil {
			return err
		}
		printTasks(tasks)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a task's details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var t task.Task
		if err := call("task.get", map[string]string{"id": args[0]}, &t); err != nil {
			return err
		}
		printTaskDetail(&t)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a task's title, description or priority",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]string{"id": args[0]}
		if cmd.Flags().Changed("title") {
			params["title"], _ = cmd.Flags().GetString("title")
		}
		if cmd.Flags().Changed("description") {
			params["description"], _ = cmd.Flags().GetString("description")
		}
		if cmd.Flags().Changed("priority") {
			params["priority"], _ = cmd.Flags().GetString("priority")
		}
		if len(params) == 1 {
			return fmt.Errorf("nothing to update: pass --title, --description or --priority")
		}

		var t task.Task
		if err := call("task.update", params, &t); err != nil {
			return err
		}
		fmt.Printf("Updated task %s\n", t.ShortID())
		return nil
	},
}

var startCmd = &cobra.Command{
	Use:   "start <id>",
	Short: "Mark a task as in progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateStatus(args[0], string(task.StatusInProgress))
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateStatus(args[0], string(task.StatusCompleted))
	},
}

func updateStatus(id, status string) error {
	var res task.StatusResult
	params := map[string]string{"id": id, "status": status}
	if err := call("task.updateStatus", params, &res); err != nil {
		return err
	}
	fmt.Printf("Task %s is now %s\n", res.ShortID(), res.Status)
	if res.AllSubtasksCompleted != nil && *res.AllSubtasksCompleted {
		fmt.Printf("All subtasks of %s are completed\n", task.ShortID(res.ParentID))
	}
	return nil
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task and its subtasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := call("task.delete", map[string]string{"id": args[0]}, nil); err != nil {
			return err
		}
		fmt.Println("Task deleted")
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search tasks by title or description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var tasks []task.Task
		if err := call("task.search", map[string]string{"query": args[0]}, &tasks); err != nil {
			return err
		}
		printTasks(tasks)
		return nil
	},
}

func init() {
	addCmd.Flags().StringP("description", "d", "", "Task description")
	addCmd.Flags().StringP("priority", "p", "", "Priority (low|medium|high)")

	listCmd.Flags().StringP("status", "s", "", "Filter by status (pending|in_progress|completed)")
	listCmd.Flags().StringP("priority", "p", "", "Filter by priority (low|medium|high)")
	listCmd.Flags().String("sort", "", "Sort by (priority|createdAt|updatedAt|title|status)")
	listCmd.Flags().String("order", "desc", "Sort order (asc|desc)")

	updateCmd.Flags().StringP("title", "t", "", "New title")
	updateCmd.Flags().StringP("description", "d", "", "New description")
	updateCmd.Flags().StringP("priority", "p", "", "New priority (low|medium|high)")
}
