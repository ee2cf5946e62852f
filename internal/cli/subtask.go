package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cer0un0/yaru/internal/task"
)

var subtaskCmd = &cobra.Command{
	Use:   "subtask",
	Short: "Manage subtasks of a task",
}

var subtaskAddCmd = &cobra.Command{
	Use:   "add <parent-id> <title>",
	Short: "Add a subtask under a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		priority, _ := cmd.Flags().GetString("priority")

		params := map[string]string{
			"parentId":    args[0],
			"title":       args[1],
			"description": description,
			"priority":    priority,
		}
		var t task.Task
		if err := call("subtask.create", params, &t); err != nil {
			return err
		}
		fmt.Printf("Added subtask %s under %s\n", t.ShortID(), task.ShortID(t.ParentID))
		return nil
	},
}

var subtaskListCmd = &cobra.Command{
	Use:   "list <parent-id>",
	Short: "List a task's subtasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var tasks []task.Task
		if err := call("subtask.list", map[string]string{"parentId": args[0]}, &tasks); err != nil {
			return err
		}
		printTasks(tasks)
		return nil
	},
}

var subtaskProgressCmd = &cobra.Command{
	Use:   "progress <parent-id>",
	Short: "Show subtask completion progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var p task.Progress
		if err := call("subtask.progress", map[string]string{"parentId": args[0]}, &p); err != nil {
			return err
		}
		fmt.Printf("%d/%d subtasks completed (%d%%)\n", p.Completed, p.Total, p.Percentage)
		return nil
	},
}

func init() {
	subtaskAddCmd.Flags().StringP("description", "d", "", "Subtask description")
	subtaskAddCmd.Flags().StringP("priority", "p", "", "Priority (low|medium|high)")

	subtaskCmd.AddCommand(subtaskAddCmd)
	subtaskCmd.AddCommand(subtaskListCmd)
	subtaskCmd.AddCommand(subtaskProgressCmd)
}
