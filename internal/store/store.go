// Package store holds the authoritative, ordered list of student records.
//
// HOW A MUTATION WORKS:
// ─────────────────────
//  1. Compute the next list from the current one (pure, no side effects).
//  2. Write the whole next list through the storage.Storage port.
//  3. Only if the write succeeded, make the next list the current one.
//
// Step 3 keeps memory and storage in lockstep: a failed write leaves
// both exactly as they were, and the caller gets the error.
//
// Search never replaces the list. It filters a copy and hands it back,
// so a later add/edit/delete always operates on the full list.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

var (
	// ErrNotFound is returned by Edit and Delete for an unknown id.
	ErrNotFound = errors.New("student not found")

	// ErrPersist wraps any failure of the storage port during a mutation.
	ErrPersist = errors.New("failed to persist students")
)

// Store owns the record sequence exclusively. Callers only ever receive
// copies of it.
type Store struct {
	mu       sync.RWMutex
	students []types.Student
	storage  storage.Storage
	log      *slog.Logger
}

// New builds a Store initialised from the persisted snapshot.
// A nil logger falls back to slog.Default().
func New(ctx context.Context, st storage.Storage, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}

	students, err := st.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.New: load snapshot: %w", err)
	}

	log.Debug("store loaded", slog.Int("count", len(students)))

	return &Store{
		students: students,
		storage:  st,
		log:      log,
	}, nil
}

// List returns a copy of every record in insertion order.
func (s *Store) List() []types.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.students)
}

// Get returns the record with id.
func (s *Store) Get(id string) (types.Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.students {
		if st.ID == id {
			return st.Clone(), true
		}
	}
	return types.Student{}, false
}

// Len reports how many records the store holds.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.students)
}

// Add appends student to the end of the list. Uniqueness is the form's
// job; the store accepts whatever it is given.
func (s *Store) Add(ctx context.Context, student types.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]types.Student, 0, len(s.students)+1)
	next = append(next, cloneAll(s.students)...)
	next = append(next, student.Clone())

	if err := s.commit(ctx, "add", next); err != nil {
		return err
	}
	s.log.Info("student added", slog.String("id", student.ID))
	return nil
}

// Delete removes every record whose id equals id.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]types.Student, 0, len(s.students))
	for _, st := range s.students {
		if st.ID != id {
			next = append(next, st.Clone())
		}
	}
	if len(next) == len(s.students) {
		return fmt.Errorf("delete %q: %w", id, ErrNotFound)
	}

	if err := s.commit(ctx, "delete", next); err != nil {
		return err
	}
	s.log.Info("student deleted", slog.String("id", id))
	return nil
}

// Edit shallow-merges patch into the record with id. Fields absent from
// the patch keep their values; the patch may carry a new id.
func (s *Store) Edit(ctx context.Context, id string, patch types.StudentPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	next := make([]types.Student, 0, len(s.students))
	for _, st := range s.students {
		if st.ID == id {
			found = true
			st = types.Merge(st, patch)
		}
		next = append(next, st.Clone())
	}
	if !found {
		return fmt.Errorf("edit %q: %w", id, ErrNotFound)
	}

	if err := s.commit(ctx, "edit", next); err != nil {
		return err
	}
	s.log.Info("student edited", slog.String("id", id))
	return nil
}

// Search returns the records whose name contains name, ignoring case.
// An empty (or all-space) name returns every record.
func (s *Store) Search(name string) []types.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return cloneAll(s.students)
	}

	found := make([]types.Student, 0)
	for _, st := range s.students {
		if strings.Contains(strings.ToLower(st.Name), needle) {
			found = append(found, st.Clone())
		}
	}
	return found
}

// commit persists next and swaps it in. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, op string, next []types.Student) error {
	if err := s.storage.Save(ctx, next); err != nil {
		s.log.Error("failed to persist students",
			slog.String("op", op),
			slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w: %w", op, ErrPersist, err)
	}
	s.students = next
	return nil
}

func cloneAll(in []types.Student) []types.Student {
	out := make([]types.Student, len(in))
	for i, st := range in {
		out[i] = st.Clone()
	}
	return out
}
