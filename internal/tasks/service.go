package tasks

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"tasknotes-backend/internal/domain"
	"tasknotes-backend/internal/store"
)

var (
	ErrNotFound   = errors.New("task not found")
	ErrValidation = errors.New("title and content required")
)

// Service implements the task operations. Each one loads the entire
// collection, works on it in memory and, for mutations, saves it whole.
type Service struct {
	store    store.Store
	writer   *Writer
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
	log      *log.Logger
}

type Option func(*Service)

// WithWriter serialises Create and Delete through w. Without it, concurrent
// mutations race and the later save wins.
func WithWriter(w *Writer) Option {
	return func(s *Service) { s.writer = w }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(st store.Store, opts ...Option) *Service {
	if st == nil {
		panic("tasks.NewService: store is nil")
	}
	s := &Service{
		store:    st,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
		newID:    uuid.NewString,
		log:      log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]domain.Task, error) {
	return s.store.LoadAll(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (domain.Task, error) {
	tasks, err := s.store.LoadAll(ctx)
	if err != nil {
		return domain.Task{}, err
	}
	i := slices.IndexFunc(tasks, func(t domain.Task) bool { return t.ID == id })
	if i < 0 {
		return domain.Task{}, ErrNotFound
	}
	return tasks[i], nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (domain.Task, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.Task{}, ErrValidation
	}

	var created domain.Task
	err := s.mutate(ctx, func(ctx context.Context) error {
		tasks, err := s.loadForWrite(ctx)
		if err != nil {
			return err
		}

		created = domain.Task{
			ID:      s.freshID(tasks),
			Title:   req.Title,
			Content: req.Content,
			Date:    s.now().UnixMilli(),
		}
		return s.store.SaveAll(ctx, append(tasks, created))
	})
	if err != nil {
		return domain.Task{}, err
	}

	s.log.WithField("task_id", created.ID).Debug("task created")
	return created, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.mutate(ctx, func(ctx context.Context) error {
		tasks, err := s.loadForWrite(ctx)
		if err != nil {
			return err
		}

		kept := slices.DeleteFunc(slices.Clone(tasks), func(t domain.Task) bool { return t.ID == id })
		if len(kept) == len(tasks) {
			return ErrNotFound
		}
		return s.store.SaveAll(ctx, kept)
	})
	if err != nil {
		return err
	}

	s.log.WithField("task_id", id).Debug("task deleted")
	return nil
}

func (s *Service) mutate(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.writer == nil {
		return fn(ctx)
	}
	return s.writer.Do(ctx, fn)
}

// loadForWrite reads the collection a mutation will replace. It skips any
// read cache so the save never starts from a stale copy.
func (s *Service) loadForWrite(ctx context.Context) ([]domain.Task, error) {
	if f, ok := s.store.(store.FreshLoader); ok {
		return f.LoadAllFresh(ctx)
	}
	return s.store.LoadAll(ctx)
}

// freshID draws ids until one is not already taken.
func (s *Service) freshID(tasks []domain.Task) string {
	for {
		id := s.newID()
		if !slices.ContainsFunc(tasks, func(t domain.Task) bool { return t.ID == id }) {
			return id
		}
	}
}
