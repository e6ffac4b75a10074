package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasknotes-backend/internal/domain"
	"tasknotes-backend/internal/view"
)

// fakeAPI records calls and returns canned results.
type fakeAPI struct {
	tasks   []domain.Task
	err     error
	created domain.Task
	calls   int
}

func (f *fakeAPI) List(context.Context) ([]domain.Task, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.tasks, nil
}

func (f *fakeAPI) Create(_ context.Context, title, content string) (domain.Task, error) {
	f.calls++
	if f.err != nil {
		return domain.Task{}, f.err
	}
	f.created = domain.Task{ID: "new", Title: title, Content: content, Date: 99}
	return f.created, nil
}

func (f *fakeAPI) Delete(context.Context, string) error {
	f.calls++
	return f.err
}

func seeded() []domain.Task {
	return []domain.Task{
		{ID: "1", Title: "Groceries", Content: "milk", Date: 10},
		{ID: "2", Title: "Dentist", Content: "call", Date: 20},
	}
}

func TestBoardRefreshReplacesCacheAndClearsSearch(t *testing.T) {
	api := &fakeAPI{tasks: seeded()}
	b := NewBoard(api)
	b.SetSearch("milk")

	require.NoError(t, b.Refresh(context.Background()))
	assert.Equal(t, "", b.Search())
	assert.Equal(t, 2, b.Count())
	assert.Equal(t, view.Status{}, b.Status())
}

func TestBoardRefreshFailureKeepsCache(t *testing.T) {
	api := &fakeAPI{tasks: seeded()}
	b := NewBoard(api)
	require.NoError(t, b.Refresh(context.Background()))

	api.err = &APIError{Status: 500, Message: "store read: boom"}
	require.Error(t, b.Refresh(context.Background()))
	assert.Equal(t, 2, b.Count())
	assert.Equal(t, view.Error("store read: boom"), b.Status())
}

func TestBoardCreateRequiresFields(t *testing.T) {
	api := &fakeAPI{}
	b := NewBoard(api)

	_, err := b.Create(context.Background(), "   ", "content")
	assert.ErrorIs(t, err, ErrFieldsRequired)
	assert.Equal(t, 0, api.calls)
	assert.Equal(t, view.Error("Title and content are required"), b.Status())
}

func TestBoardCreateAppendsAfterConfirmation(t *testing.T) {
	api := &fakeAPI{}
	b := NewBoard(api)

	task, err := b.Create(context.Background(), "  Title ", " body ")
	require.NoError(t, err)
	assert.Equal(t, "Title", task.Title)
	assert.Equal(t, "body", task.Content)
	assert.Equal(t, []domain.Task{task}, b.View())
	assert.Equal(t, view.OK("Task added"), b.Status())
}

func TestBoardCreateFailureLeavesCache(t *testing.T) {
	api := &fakeAPI{err: errors.New("connection refused")}
	b := NewBoard(api)

	_, err := b.Create(context.Background(), "a", "b")
	require.Error(t, err)
	assert.True(t, b.Empty())
	assert.Equal(t, view.Error("connection refused"), b.Status())
}

func TestBoardDelete(t *testing.T) {
	api := &fakeAPI{tasks: seeded()}
	b := NewBoard(api)
	require.NoError(t, b.Refresh(context.Background()))

	require.NoError(t, b.Delete(context.Background(), "1"))
	assert.Equal(t, 1, b.Count())
	assert.Equal(t, view.OK("Task deleted"), b.Status())

	api.err = &APIError{Status: 404, Message: "Task not found"}
	require.Error(t, b.Delete(context.Background(), "2"))
	assert.Equal(t, 1, b.Count())
	assert.Equal(t, view.Error("Task not found"), b.Status())
}

func TestBoardViewAppliesSearchAndSort(t *testing.T) {
	b := NewBoard(&fakeAPI{tasks: seeded()})
	require.NoError(t, b.Refresh(context.Background()))

	b.SetSort(view.SortNewest)
	got := b.View()
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)

	b.SetSearch("MILK")
	got = b.View()
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)

	b.SetSearch("nothing")
	assert.True(t, b.Empty())
}

func TestBoardClearedKeepsSearch(t *testing.T) {
	b := NewBoard(&fakeAPI{tasks: seeded()})
	require.NoError(t, b.Refresh(context.Background()))
	b.SetSearch("milk")

	b.Cleared()

	assert.Equal(t, "milk", b.Search())
	assert.Equal(t, 1, b.Count())
	assert.Equal(t, view.Info("Cleared"), b.Status())
}
