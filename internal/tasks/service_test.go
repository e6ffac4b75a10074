package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasknotes-backend/internal/domain"
	"tasknotes-backend/internal/store"
)

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("id-%d", n.Add(1)) }
}

func newTestService(t *testing.T, opts ...Option) (*Service, store.Store) {
	t.Helper()
	st := store.New(store.NewMemory())
	return NewService(st, opts...), st
}

type failingStore struct{ err error }

func (f failingStore) LoadAll(context.Context) ([]domain.Task, error) { return nil, f.err }

func (f failingStore) SaveAll(context.Context, []domain.Task) error { return f.err }

func TestCreateAssignsIDAndDate(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	svc, st := newTestService(t, WithClock(func() time.Time { return now }), WithIDGenerator(sequentialIDs()))

	task, err := svc.Create(context.Background(), CreateRequest{Title: "Buy milk", Content: "2%"})
	require.NoError(t, err)
	assert.Equal(t, domain.Task{ID: "id-1", Title: "Buy milk", Content: "2%", Date: now.UnixMilli()}, task)

	stored, err := st.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Task{task}, stored)
}

func TestCreateUsesRandomUUIDsByDefault(t *testing.T) {
	svc, _ := newTestService(t)
	seen := map[string]bool{}
	start := time.Now().UnixMilli()

	for i := 0; i < 20; i++ {
		task, err := svc.Create(context.Background(), CreateRequest{Title: "t", Content: "c"})
		require.NoError(t, err)
		assert.Len(t, task.ID, 36)
		assert.False(t, seen[task.ID], "duplicate id %s", task.ID)
		seen[task.ID] = true
		assert.GreaterOrEqual(t, task.Date, start)
		assert.LessOrEqual(t, task.Date, time.Now().UnixMilli())
	}
}

func TestCreateSkipsTakenIDs(t *testing.T) {
	ids := []string{"dup", "dup", "fresh"}
	var i int
	svc, _ := newTestService(t, WithIDGenerator(func() string {
		id := ids[i]
		i++
		return id
	}))

	first, err := svc.Create(context.Background(), CreateRequest{Title: "a", Content: "b"})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), CreateRequest{Title: "a", Content: "b"})
	require.NoError(t, err)

	assert.Equal(t, "dup", first.ID)
	assert.Equal(t, "fresh", second.ID)
}

func TestCreateRejectsMissingFields(t *testing.T) {
	svc, st := newTestService(t)
	for _, req := range []CreateRequest{{}, {Title: "t"}, {Content: "c"}, {Title: "", Content: "x"}} {
		_, err := svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, ErrValidation, "request %+v", req)
	}
	tasks, err := st.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCreateAllowsDuplicates(t *testing.T) {
	svc, _ := newTestService(t)
	for i := 0; i < 2; i++ {
		_, err := svc.Create(context.Background(), CreateRequest{Title: "same", Content: "same"})
		require.NoError(t, err)
	}
	tasks, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestGetFindsByExactID(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Create(context.Background(), CreateRequest{Title: "t", Content: "c"})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = svc.Get(context.Background(), created.ID[:8])
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRemovesTask(t *testing.T) {
	svc, _ := newTestService(t, WithIDGenerator(sequentialIDs()))
	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), CreateRequest{Title: "t", Content: "c"})
		require.NoError(t, err)
	}

	require.NoError(t, svc.Delete(context.Background(), "id-2"))

	tasks, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "id-1", tasks[0].ID)
	assert.Equal(t, "id-3", tasks[1].ID)
}

func TestDeleteUnknownLeavesCollection(t *testing.T) {
	svc, st := newTestService(t)
	_, err := svc.Create(context.Background(), CreateRequest{Title: "t", Content: "c"})
	require.NoError(t, err)
	before, err := st.LoadAll(context.Background())
	require.NoError(t, err)

	err = svc.Delete(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := st.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCountAfterCreatesAndDeletes(t *testing.T) {
	svc, _ := newTestService(t)
	var ids []string
	for i := 0; i < 7; i++ {
		task, err := svc.Create(context.Background(), CreateRequest{Title: "t", Content: "c"})
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}
	for _, id := range ids[:3] {
		require.NoError(t, svc.Delete(context.Background(), id))
	}
	tasks, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 4)
}

func TestStoreFailuresPropagate(t *testing.T) {
	boom := &store.Error{Op: "read", Err: errors.New("boom")}
	svc := NewService(failingStore{err: boom})
	ctx := context.Background()

	_, err := svc.List(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = svc.Get(ctx, "x")
	assert.ErrorIs(t, err, boom)
	_, err = svc.Create(ctx, CreateRequest{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, boom)
	err = svc.Delete(ctx, "x")
	assert.ErrorIs(t, err, boom)
}

// barrierStore makes every LoadAll wait until `parties` callers have loaded,
// forcing their load-modify-save cycles to overlap.
type barrierStore struct {
	store.Store
	parties int

	mu      sync.Mutex
	arrived int
	release chan struct{}
}

func newBarrierStore(base store.Store, parties int) *barrierStore {
	return &barrierStore{Store: base, parties: parties, release: make(chan struct{})}
}

func (b *barrierStore) LoadAll(ctx context.Context) ([]domain.Task, error) {
	tasks, err := b.Store.LoadAll(ctx)
	b.mu.Lock()
	b.arrived++
	if b.arrived == b.parties {
		close(b.release)
	}
	b.mu.Unlock()

	select {
	case <-b.release:
	case <-time.After(200 * time.Millisecond):
	}
	return tasks, err
}

// slowStore widens the window between load and save.
type slowStore struct {
	store.Store
	delay time.Duration
}

func (s slowStore) LoadAll(ctx context.Context) ([]domain.Task, error) {
	time.Sleep(s.delay)
	return s.Store.LoadAll(ctx)
}

func TestUnserialisedCreatesLoseUpdates(t *testing.T) {
	base := store.New(store.NewMemory())
	svc := NewService(newBarrierStore(base, 2))

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), CreateRequest{Title: "t", Content: "c"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	tasks, err := base.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 1, "both cycles saw the same empty collection; the later save wins")
}

func TestSerialisedCreatesKeepEveryTask(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWriter(16)
	go func() { _ = w.Run(ctx) }()

	base := store.New(store.NewMemory())
	svc := NewService(slowStore{Store: base, delay: time.Millisecond}, WithWriter(w))

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, CreateRequest{Title: "t", Content: "c"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	tasks, err := base.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, n)
}

// pausingStore holds the next armed LoadAll after it has read, until resume
// is closed.
type pausingStore struct {
	store.Store

	armed  atomic.Bool
	paused chan struct{}
	resume chan struct{}
}

func newPausingStore(base store.Store) *pausingStore {
	return &pausingStore{Store: base, paused: make(chan struct{}), resume: make(chan struct{})}
}

func (p *pausingStore) LoadAll(ctx context.Context) ([]domain.Task, error) {
	tasks, err := p.Store.LoadAll(ctx)
	if p.armed.CompareAndSwap(true, false) {
		close(p.paused)
		<-p.resume
	}
	return tasks, err
}

func titles(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func TestCachedReadRacingCreateKeepsAcknowledgedTasks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWriter(4)
	go func() { _ = w.Run(ctx) }()

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	base := store.New(store.NewMemory())
	gate := newPausingStore(base)
	svc := NewService(store.NewCache(gate, rc, time.Minute, quietLogger()),
		WithWriter(w), WithIDGenerator(sequentialIDs()))

	_, err := svc.Create(ctx, CreateRequest{Title: "A", Content: "c"})
	require.NoError(t, err)

	gate.armed.Store(true)
	listed := make(chan []domain.Task, 1)
	go func() {
		tasks, err := svc.List(ctx)
		assert.NoError(t, err)
		listed <- tasks
	}()
	<-gate.paused

	_, err = svc.Create(ctx, CreateRequest{Title: "B", Content: "c"})
	require.NoError(t, err)

	close(gate.resume)
	assert.Equal(t, []string{"A"}, titles(<-listed))

	_, err = svc.Create(ctx, CreateRequest{Title: "C", Content: "c"})
	require.NoError(t, err)

	durable, err := base.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, titles(durable))

	served, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, titles(served))
}
