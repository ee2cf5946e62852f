package task

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Storage is the persistence boundary the service depends on. The concrete
// codec lives in internal/storage.
type Storage interface {
	Load() (*Store, error)
	Save(*Store) error
}

// CreateInput carries the fields for a new task.
type CreateInput struct {
	Title       string
	Description string
	Priority    string
}

// SubtaskInput carries the fields for a new subtask. ParentID may be any
// unambiguous prefix of the parent's id.
type SubtaskInput struct {
	ParentID    string
	Title       string
	Description string
	Priority    string
}

// UpdateInput is a partial patch; empty fields are left untouched.
type UpdateInput struct {
	Title       *string
	Description *string
	Priority    *string
}

// Filter narrows and orders List results.
type Filter struct {
	Status    string
	Priority  string
	SortBy    string
	SortOrder string
}

// Service implements all task operations against one shared store.
type Service struct {
	mu    sync.Mutex
	store Storage
}

// NewService returns a service backed by the given storage.
func NewService(store Storage) *Service {
	return &Service{store: store}
}

// findByPrefix resolves an id prefix against the collection. It never
// guesses: multiple matches are reported back as a validation error naming
// every candidate's short id.
func findByPrefix(tasks []Task, prefix string) (int, error) {
	var matches []int
	for i := range tasks {
		if strings.HasPrefix(tasks[i].ID, prefix) {
			matches = append(matches, i)
		}
	}
	switch len(matches) {
	case 0:
		return -1, errNotFound(prefix)
	case 1:
		return matches[0], nil
	}
	shorts := make([]string, len(matches))
	for i, idx := range matches {
		shorts[i] = tasks[idx].ShortID()
	}
	return -1, errValidation("multiple tasks match %q, use a longer id: %s", prefix, strings.Join(shorts, ", "))
}

// Create adds a new top-level task.
func (s *Service) Create(in CreateInput) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := newTask(in.Title, in.Description, in.Priority, "")
	if err != nil {
		return nil, err
	}

	store, err := s.load()
	if err != nil {
		return nil, err
	}
	store.Tasks = append(store.Tasks, *t)
	if err := s.save(store); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateSubtask adds a new task under an existing top-level parent.
func (s *Service) CreateSubtask(in SubtaskInput) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.load()
	if err != nil {
		return nil, err
	}
	idx, err := findByPrefix(store.Tasks, in.ParentID)
	if err != nil {
		return nil, err
	}
	parent := store.Tasks[idx]
	if parent.IsSubtask() {
		return nil, errValidation("cannot add a subtask to a subtask: %s", parent.ShortID())
	}

	// The stored parentId is always the resolved full id, never the
	// abbreviated input.
	t, err := newTask(in.Title, in.Description, in.Priority, parent.ID)
	if err != nil {
		return nil, err
	}
	store.Tasks = append(store.Tasks, *t)
	if err := s.save(store); err != nil {
		return nil, err
	}
	return t, nil
}

func newTask(title, description, priority string, parentID string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errValidation("title is required")
	}
	prio := PriorityMedium
	if priority != "" {
		if !ValidPriority(priority) {
			return nil, errValidation("invalid priority: %s", priority)
		}
		prio = Priority(priority)
	}
	now := time.Now().UTC()
	return &Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Status:      StatusPending,
		Priority:    prio,
		CreatedAt:   now,
		UpdatedAt:   now,
		ParentID:    parentID,
	}, nil
}

// List returns a fresh copy of the collection, filtered and ordered.
func (s *Service) List(filter Filter) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.load()
	if err != nil {
		return nil, err
	}

	tasks := make([]Task, 0, len(store.Tasks))
	for _, t := range store.Tasks {
		if filter.Status != "" && t.Status != Status(filter.Status) {
			continue
		}
		if filter.Priority != "" && t.Priority != Priority(filter.Priority) {
			continue
		}
		tasks = append(tasks, t)
	}

	if filter.SortBy != "" {
		sortTasks(tasks, filter.SortBy, filter.SortOrder)
	}
	return tasks, nil
}

func sortTasks(tasks []Task, sortBy, sortOrder string) {
	desc := sortOrder != "asc"
	sort.SliceStable(tasks, func(i, j int) bool {
		c := compareField(tasks[i], tasks[j], sortBy)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareField(a, b Task, field string) int {
	switch field {
	case "priority":
		return priorityRank[a.Priority] - priorityRank[b.Priority]
	case "createdAt":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "status":
		return strings.Compare(string(a.Status), string(b.Status))
	default:
		return 0
	}
}

// Get resolves a task by id prefix.
func (s *Service) Get(id string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.load()
	if err != nil {
		return nil, err
	}
	idx, err := findByPrefix(store.Tasks, id)
	if err != nil {
		return nil, err
	}
	t := store.Tasks[idx]
	return &t, nil
}

// Update applies a partial patch to the task resolved by id prefix.
func (s *Service) Update(id string, in UpdateInput) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.load()
	if err != nil {
		return nil, err
	}
	idx, err := findByPrefix(store.Tasks, id)
	if err != nil {
		return nil, err
	}

	t := &store.Tasks[idx]
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Priority != nil {
		if !ValidPriority(*in.Priority) {
			return nil, errValidation("invalid priority: %s", *in.Priority)
		}
		t.Priority = Priority(*in.Priority)
	}
	t.UpdatedAt = time.Now().UTC()

	if err := s.save(store); err != nil {
		return nil, err
	}
	out := *t
	return &out, nil
}

// UpdateStatus transitions the task resolved by id prefix to a new status.
// A subtask whose parent is already completed cannot transition. When a
// subtask is completed the result additionally reports whether every sibling
// is now completed.
func (s *Service) UpdateStatus(id string, status string) (*StatusResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !ValidStatus(status) {
		return nil, errValidation("invalid status: %s", status)
	}

	store, err := s.load()
	if err != nil {
		return nil, err
	}
	idx, err := findByPrefix(store.Tasks, id)
	if err != nil {
		return nil, err
	}

	t := &store.Tasks[idx]
	if t.IsSubtask() {
		if parent := findByID(store.Tasks, t.ParentID); parent != nil && parent.Status == StatusCompleted {
			return nil, errParentCompleted(parent.ID)
		}
	}

	now := time.Now().UTC()
	t.Status = Status(status)
	t.UpdatedAt = now
	if t.Status == StatusInProgress && t.StartedAt == nil {
		t.StartedAt = &now
	}
	if t.Status == StatusCompleted {
		completed := now
		t.CompletedAt = &completed
	}

	if err := s.save(store); err != nil {
		return nil, err
	}

	res := &StatusResult{Task: *t}
	if t.IsSubtask() && t.Status == StatusCompleted {
		all := allSiblingsCompleted(store.Tasks, t.ParentID)
		res.AllSubtasksCompleted = &all
	}
	return res, nil
}

func findByID(tasks []Task, id string) *Task {
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i]
		}
	}
	return nil
}

func allSiblingsCompleted(tasks []Task, parentID string) bool {
	for i := range tasks {
		if tasks[i].ParentID == parentID && tasks[i].Status != StatusCompleted {
			return false
		}
	}
	return true
}

// Delete removes the task resolved by id prefix. Deleting a top-level task
// cascades to every subtask referencing it; both removals land in a single
// save.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.load()
	if err != nil {
		return err
	}
	idx, err := findByPrefix(store.Tasks, id)
	if err != nil {
		return err
	}
	target := store.Tasks[idx].ID

	remaining := make([]Task, 0, len(store.Tasks))
	for _, t := range store.Tasks {
		if t.ID == target || t.ParentID == target {
			continue
		}
		remaining = append(remaining, t)
	}
	store.Tasks = remaining

	return s.save(store)
}

// Search returns tasks whose title or description contains the query,
// case-insensitively. An empty result is not an error.
func (s *Service) Search(query string) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.load()
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	tasks := make([]Task, 0)
	for _, t := range store.Tasks {
		if strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Description), q) {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

// ListSubtasks returns every subtask of the parent resolved by id prefix.
func (s *Service) ListSubtasks(parentID string) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.load()
	if err != nil {
		return nil, err
	}
	idx, err := findByPrefix(store.Tasks, parentID)
	if err != nil {
		return nil, err
	}
	return subtasksOf(store.Tasks, store.Tasks[idx].ID), nil
}

// Progress reports completed/total subtask counts for the parent resolved by
// id prefix. Zero subtasks yields zero percent.
func (s *Service) Progress(parentID string) (*Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.load()
	if err != nil {
		return nil, err
	}
	idx, err := findByPrefix(store.Tasks, parentID)
	if err != nil {
		return nil, err
	}

	subs := subtasksOf(store.Tasks, store.Tasks[idx].ID)
	p := &Progress{Total: len(subs)}
	for _, t := range subs {
		if t.Status == StatusCompleted {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percentage = int(math.Round(100 * float64(p.Completed) / float64(p.Total)))
	}
	return p, nil
}

func subtasksOf(tasks []Task, parentID string) []Task {
	subs := make([]Task, 0)
	for _, t := range tasks {
		if t.ParentID == parentID {
			subs = append(subs, t)
		}
	}
	return subs
}

func (s *Service) load() (*Store, error) {
	store, err := s.store.Load()
	if err != nil {
		return nil, errStorage(err)
	}
	return store, nil
}

func (s *Service) save(store *Store) error {
	if err := s.store.Save(store); err != nil {
		return errStorage(err)
	}
	return nil
}
