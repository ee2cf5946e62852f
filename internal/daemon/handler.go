package daemon

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Cer0un0/yaru/internal/ipc"
	"github.com/Cer0un0/yaru/internal/storage"
	"github.com/Cer0un0/yaru/internal/task"
)

// One typed params struct per method; the flat wire map is decoded into the
// matching struct at this boundary, never accessed by untyped field lookup.

type createParams struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

type listParams struct {
	Status    string `json:"status,omitempty"`
	Priority  string `json:"priority,omitempty"`
	SortBy    string `json:"sortBy,omitempty"`
	SortOrder string `json:"sortOrder,omitempty"`
}

type idParams struct {
	ID string `json:"id"`
}

type updateParams struct {
	ID          string  `json:"id"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
}

type updateStatusParams struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type searchParams struct {
	Query string `json:"query"`
}

type subtaskCreateParams struct {
	ParentID    string `json:"parentId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

type parentParams struct {
	ParentID string `json:"parentId"`
}

// Handler dispatches protocol requests to the task service.
type Handler struct {
	tasks *task.Service
	stop  func()
}

// NewHandler returns a dispatcher. stop is invoked after a daemon.stop
// request has been answered.
func NewHandler(tasks *task.Service, stop func()) *Handler {
	return &Handler{tasks: tasks, stop: stop}
}

// Handle implements ipc.Handler.
func (h *Handler) Handle(req ipc.Request) ipc.Response {
	switch req.Method {
	case "task.create":
		var p createParams
		if resp, ok := h.decode(req, &p); !ok {
			return resp
		}
		t, err := h.tasks.Create(task.CreateInput{Title: p.Title, Description: p.Description, Priority: p.Priority})
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return ipc.NewResponse(req.ID, t)

	case "task.list":
		var p listParams
		if resp, ok := h.decode(req, &p); !ok {
			return resp
		}
		tasks, err := h.tasks.List(task.Filter{Status: p.Status, Priority: p.Priority, SortBy: p.SortBy, SortOrder: p.SortOrder})
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return ipc.NewResponse(req.ID, tasks)

	case "task.get":
		var p idParams
		if resp, ok := h.decode(req, &p); !ok {
			return resp
		}
		t, err := h.tasks.Get(p.ID)
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return ipc.NewResponse(req.ID, t)

	case "task.update":
		var p updateParams
		if resp, ok := h.decode(req, &p); !ok {
			return resp
		}
		t, err := h.tasks.Update(p.ID, task.UpdateInput{Title: p.Title, Description: p.Description, Priority: p.Priority})
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return ipc.NewResponse(req.ID, t)

	case "task.updateStatus":
		var p updateStatusParams
		if resp, ok := h.decode(req, &p); !ok {
			return resp
		}
		res, err := h.tasks.UpdateStatus(p.ID, p.Status)
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return ipc.NewResponse(req.ID, res)

	case "task.delete":
		var p idParams
		if resp, ok := h.decode(req, &p); !ok {
			return resp
		}
		if err := h.tasks.Delete(p.ID); err != nil {
			return errorResponse(req.ID, err)
		}
		return ipc.NewResponse(req.ID, map[string]bool{"success": true})

	case "task.search":
		var p searchParams
		if resp, ok := h.decode(req, &p); !ok {
			return resp
		}
		tasks, err := h.tasks.Search(p.Query)
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return ipc.NewResponse(req.ID, tasks)

	case "subtask.create":
		var p subtaskCreateParams
		if resp, ok := h.decode(req, &p); !ok {
			return resp
		}
		t, err := h.tasks.CreateSubtask(task.SubtaskInput{ParentID: p.ParentID, Title: p.Title, Description: p.Description, Priority: p.Priority})
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return ipc.NewResponse(req.ID, t)

	case "subtask.list":
		var p parentParams
		if resp, ok := h.decode(req, &p); !ok {
			return resp
		}
		tasks, err := h.tasks.ListSubtasks(p.ParentID)
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return ipc.NewResponse(req.ID, tasks)

	case "subtask.progress":
		var p parentParams
		if resp, ok := h.decode(req, &p); !ok {
			return resp
		}
		progress, err := h.tasks.Progress(p.ParentID)
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return ipc.NewResponse(req.ID, progress)

	case "daemon.status":
		return ipc.NewResponse(req.ID, map[string]string{"status": "running"})

	case "daemon.stop":
		if h.stop != nil {
			h.stop()
		}
		return ipc.NewResponse(req.ID, map[string]string{"status": "stopping"})

	default:
		return ipc.NewErrorResponse(req.ID, "UNKNOWN_METHOD", fmt.Sprintf("unknown method: %s", req.Method))
	}
}

func (h *Handler) decode(req ipc.Request, params any) (ipc.Response, bool) {
	if len(req.Params) == 0 {
		return ipc.Response{}, true
	}
	if err := json.Unmarshal(req.Params, params); err != nil {
		return ipc.NewErrorResponse(req.ID, task.CodeValidation, fmt.Sprintf("invalid params: %v", err)), false
	}
	return ipc.Response{}, true
}

// errorResponse maps domain and storage errors to their stable codes;
// anything unrecognized degrades to INTERNAL_ERROR.
func errorResponse(id string, err error) ipc.Response {
	var te *task.Error
	if errors.As(err, &te) {
		return ipc.NewErrorResponse(id, te.Code, te.Message)
	}
	var se *storage.Error
	if errors.As(err, &se) {
		return ipc.NewErrorResponse(id, se.Code, se.Message)
	}
	return ipc.NewErrorResponse(id, ipc.CodeInternalError, err.Error())
}
