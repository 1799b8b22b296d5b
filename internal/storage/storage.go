// Package storage defines the Storage interface — the persistence port
// the record store writes its snapshot through.
//
// WHY AN INTERFACE?
// ─────────────────
// The store should not know or care where the snapshot lives. By
// depending only on this interface:
//
//   - Switching backends = implement the interface for the new medium,
//     change the storage.driver config value. Zero store changes.
//
//   - Writing tests = pass the in-memory backend. No database or Redis
//     server needed to test the store's mutation logic.
//
// A backend holds ONE snapshot: the full ordered list of students,
// encoded as a JSON array under a single named key. Every save
// overwrites the previous snapshot completely.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aanand-mishra/student-records/internal/types"
)

// DefaultKey is the key the snapshot is stored under when the config
// does not name one.
const DefaultKey = "students"

// Storage is the persistence contract.
type Storage interface {
	// Load returns the persisted snapshot. A missing snapshot is not an
	// error: it yields an empty (non-nil) slice.
	Load(ctx context.Context) ([]types.Student, error)

	// Save replaces the persisted snapshot with students.
	Save(ctx context.Context, students []types.Student) error

	// Close releases the backend's resources.
	Close() error
}

// Encode turns a snapshot into its persisted JSON form.
// A nil slice is written as [] so readers never see null.
func Encode(students []types.Student) ([]byte, error) {
	if students == nil {
		students = make([]types.Student, 0)
	}
	data, err := json.Marshal(students)
	if err != nil {
		return nil, fmt.Errorf("storage.Encode: %w", err)
	}
	return data, nil
}

// Decode parses a persisted snapshot. Empty input decodes to an empty
// slice so a freshly created key behaves like a missing one.
func Decode(data []byte) ([]types.Student, error) {
	students := make([]types.Student, 0)
	if len(data) == 0 {
		return students, nil
	}
	if err := json.Unmarshal(data, &students); err != nil {
		return nil, fmt.Errorf("storage.Decode: %w", err)
	}
	if students == nil {
		// the stored value was the JSON literal null
		students = make([]types.Student, 0)
	}
	return students, nil
}
