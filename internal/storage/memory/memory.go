// Package memory is an in-process storage.Storage. It keeps the encoded
// snapshot bytes, so it exercises the same JSON round-trip as the real
// backends. Tests use it to inspect what was persisted and to inject
// save failures.
package memory

import (
	"context"
	"sync"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

type Memory struct {
	mu    sync.Mutex
	data  []byte
	saves int

	// FailSave, when set, is returned by every Save and nothing is stored.
	FailSave error
}

func New() *Memory {
	return &Memory{}
}

// NewWith returns a backend pre-seeded with students.
func NewWith(students []types.Student) (*Memory, error) {
	data, err := storage.Encode(students)
	if err != nil {
		return nil, err
	}
	return &Memory{data: data}, nil
}

func (m *Memory) Load(_ context.Context) ([]types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return storage.Decode(m.data)
}

func (m *Memory) Save(_ context.Context, students []types.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSave != nil {
		return m.FailSave
	}
	data, err := storage.Encode(students)
	if err != nil {
		return err
	}
	m.data = data
	m.saves++
	return nil
}

// Saves reports how many successful saves happened.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Raw returns the persisted JSON.
func (m *Memory) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

func (m *Memory) Close() error { return nil }
