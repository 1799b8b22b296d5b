package store

import (
	"context"

	"github.com/aanand-mishra/student-records/internal/types"
)

// Kind names an action understood by Dispatch.
type Kind string

const (
	KindAdd    Kind = "ADD"
	KindEdit   Kind = "EDIT"
	KindDelete Kind = "DELETE"
	KindSearch Kind = "SEARCH"
	KindFilter Kind = "FILTER"
	KindSort   Kind = "SORT"
)

// Action is one intent for the store. Which fields matter depends on
// Kind: Student for ADD, ID+Patch for EDIT, ID for DELETE, Name for SEARCH.
type Action struct {
	Kind    Kind
	ID      string
	Name    string
	Student types.Student
	Patch   types.StudentPatch
}

// Dispatch routes an action to the matching method and returns the list
// the caller should now display. SEARCH returns the matches without
// touching the stored list. FILTER, SORT and unknown kinds change nothing
// and return the full list.
func (s *Store) Dispatch(ctx context.Context, a Action) ([]types.Student, error) {
	var err error
	switch a.Kind {
	case KindAdd:
		err = s.Add(ctx, a.Student)
	case KindEdit:
		err = s.Edit(ctx, a.ID, a.Patch)
	case KindDelete:
		err = s.Delete(ctx, a.ID)
	case KindSearch:
		return s.Search(a.Name), nil
	case KindFilter, KindSort:
		// accepted, no transition
	default:
		s.log.Debug("ignoring unknown action", "kind", string(a.Kind))
	}
	return s.List(), err
}
