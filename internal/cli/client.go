package cli

import (
	"errors"
	"fmt"

	"github.com/Cer0un0/yaru/internal/config"
	"github.com/Cer0un0/yaru/internal/daemon"
	"github.com/Cer0un0/yaru/internal/ipc"
	"github.com/Cer0un0/yaru/internal/task"
)

// call opens a channel to the daemon (starting one when none is running),
// performs a single request, and closes. result may be nil.
func call(method string, params any, result any) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	mgr := daemon.NewManager(cfg)
	if !mgr.CurrentStatus().Running {
		if _, err := mgr.Start(); err != nil {
			var de *daemon.Error
			if !errors.As(err, &de) || de.Code != daemon.CodeAlreadyRunning {
				return fmt.Errorf("failed to start daemon: %w", err)
			}
		}
	}

	client, err := ipc.Dial(cfg.SocketPath, cfg.ClientTimeout)
	if err != nil {
		return err
	}
	defer client.Close()

	return client.Call(method, params, result)
}

// printTask renders one task as plain indented lines.
func printTask(t *task.Task) {
	fmt.Printf("%s  [%s] [%s] %s\n", t.ShortID(), t.Status, t.Priority, t.Title)
	if t.Description != "" {
		fmt.Printf("          %s\n", t.Description)
	}
}

func printTaskDetail(t *task.Task) {
	fmt.Printf("ID:          %s\n", t.ID)
	fmt.Printf("Title:       %s\n", t.Title)
	if t.Description != "" {
		fmt.Printf("Description: %s\n", t.Description)
	}
	fmt.Printf("Status:      %s\n", t.Status)
	fmt.Printf("Priority:    %s\n", t.Priority)
	if t.ParentID != "" {
		fmt.Printf("Parent:      %s\n", task.ShortID(t.ParentID))
	}
	fmt.Printf("Created:     %s\n", t.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated:     %s\n", t.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	if t.StartedAt != nil {
		fmt.Printf("Started:     %s\n", t.StartedAt.Local().Format("2006-01-02 15:04:05"))
	}
	if t.CompletedAt != nil {
		fmt.Printf("Completed:   %s\n", t.CompletedAt.Local().Format("2006-01-02 15:04:05"))
	}
}

func printTasks(tasks []task.Task) {
	if len(tasks) == 0 {
		fmt.Println("No tasks found")
		return
	}
	for i := range tasks {
		printTask(&tasks[i])
	}
}
