package client

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"tasknotes-backend/internal/domain"
	"tasknotes-backend/internal/view"
)

const (
	msgLoading  = "Loading tasks..."
	msgCreating = "Creating task..."
	msgCreated  = "Task added"
	msgDeleting = "Deleting task..."
	msgDeleted  = "Task deleted"
	msgRequired = "Title and content are required"
	msgCleared  = "Cleared"
)

// ErrFieldsRequired is returned by Board.Create when title or content is
// blank after trimming. No request is sent.
var ErrFieldsRequired = errors.New(msgRequired)

// API is the part of Client a Board needs.
type API interface {
	List(ctx context.Context) ([]domain.Task, error)
	Create(ctx context.Context, title, content string) (domain.Task, error)
	Delete(ctx context.Context, id string) error
}

// Board holds the last-known server collection plus the user's search and
// sort choice. The cache only changes after the server confirms.
type Board struct {
	api API

	mu     sync.Mutex
	cache  []domain.Task
	search string
	sort   view.SortMode
	status view.Status
}

func NewBoard(api API) *Board {
	return &Board{api: api, cache: []domain.Task{}}
}

// Refresh clears the search and replaces the cache with the server's list.
func (b *Board) Refresh(ctx context.Context) error {
	b.mu.Lock()
	b.search = ""
	b.status = view.Info(msgLoading)
	b.mu.Unlock()

	tasks, err := b.api.List(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.status = view.Error(err.Error())
		return err
	}
	b.cache = tasks
	b.status = view.Status{}
	return nil
}

func (b *Board) Create(ctx context.Context, title, content string) (domain.Task, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if title == "" || content == "" {
		b.SetStatus(view.Error(msgRequired))
		return domain.Task{}, ErrFieldsRequired
	}

	b.SetStatus(view.Info(msgCreating))
	task, err := b.api.Create(ctx, title, content)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.status = view.Error(err.Error())
		return domain.Task{}, err
	}
	b.cache = append(slices.Clip(b.cache), task)
	b.status = view.OK(msgCreated)
	return task, nil
}

func (b *Board) Delete(ctx context.Context, id string) error {
	b.SetStatus(view.Info(msgDeleting))
	err := b.api.Delete(ctx, id)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.status = view.Error(err.Error())
		return err
	}
	b.cache = slices.DeleteFunc(slices.Clone(b.cache), func(t domain.Task) bool { return t.ID == id })
	b.status = view.OK(msgDeleted)
	return nil
}

// Cleared reports that the caller discarded its title/content inputs. The
// search and the cache are left alone.
func (b *Board) Cleared() {
	b.SetStatus(view.Info(msgCleared))
}

func (b *Board) SetSearch(q string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.search = q
}

func (b *Board) Search() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.search
}

func (b *Board) SetSort(m view.SortMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sort = m
}

func (b *Board) Sort() view.SortMode {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sort
}

// View is the cache filtered by the search and ordered by the sort mode.
func (b *Board) View() []domain.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return view.Compute(b.cache, b.search, b.sort)
}

// Count is the number of tasks in the current view.
func (b *Board) Count() int {
	return len(b.View())
}

func (b *Board) Empty() bool {
	return b.Count() == 0
}

func (b *Board) Status() view.Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

func (b *Board) SetStatus(s view.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = s
}
