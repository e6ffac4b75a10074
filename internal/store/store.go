// Package store persists the task collection as a single JSON document.
//
// Every medium stores the whole collection and replaces it whole on each
// save. Nothing in this package serialises concurrent read-modify-write
// cycles; callers that need that run them through tasks.Writer.
package store

import (
	"bytes"
	"context"

	"github.com/bytedance/sonic"

	"tasknotes-backend/internal/domain"
)

// Store loads and replaces the full task collection.
type Store interface {
	LoadAll(ctx context.Context) ([]domain.Task, error)
	SaveAll(ctx context.Context, tasks []domain.Task) error
}

// FreshLoader is implemented by stores that can serve LoadAll from a copy.
// LoadAllFresh always reads the underlying medium; read-modify-write cycles
// must start from it.
type FreshLoader interface {
	LoadAllFresh(ctx context.Context) ([]domain.Task, error)
}

// Medium reads and replaces one raw document. Read returns a nil slice and
// no error when the document does not exist yet.
type Medium interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, doc []byte) error
}

// Error is returned for any fault reading, decoding or writing the
// persisted collection.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "store " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Collection implements Store on top of a Medium.
type Collection struct {
	medium Medium
}

func New(m Medium) *Collection {
	if m == nil {
		panic("store.New: medium is nil")
	}
	return &Collection{medium: m}
}

func (c *Collection) LoadAll(ctx context.Context) ([]domain.Task, error) {
	doc, err := c.medium.Read(ctx)
	if err != nil {
		return nil, &Error{Op: "read", Err: err}
	}
	return decode(doc)
}

func (c *Collection) SaveAll(ctx context.Context, tasks []domain.Task) error {
	doc, err := encode(tasks)
	if err != nil {
		return err
	}
	if err := c.medium.Write(ctx, doc); err != nil {
		return &Error{Op: "write", Err: err}
	}
	return nil
}

func decode(doc []byte) ([]domain.Task, error) {
	if len(bytes.TrimSpace(doc)) == 0 {
		return []domain.Task{}, nil
	}
	var tasks []domain.Task
	if err := sonic.ConfigStd.Unmarshal(doc, &tasks); err != nil {
		return nil, &Error{Op: "decode", Err: err}
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

func encode(tasks []domain.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	doc, err := sonic.ConfigStd.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return nil, &Error{Op: "encode", Err: err}
	}
	return doc, nil
}
