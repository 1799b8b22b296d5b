// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// the store, the form, storage backends and handlers can all import
// types without depending on each other.
package types

// Gender is the closed set of values the gender field may hold.
// The values are stored verbatim in the persisted snapshot.
type Gender string

const (
	GenderMale   Gender = "Nam"
	GenderFemale Gender = "Nữ"
)

// Student represents a student record in our system.
//
// Struct tags serve two purposes:
//
//  1. json:"..."  — controls how the field appears in the persisted
//     snapshot and in HTTP bodies. Age is omitted when unset so older
//     snapshots without an age round-trip unchanged.
//
//  2. validate:"..." — rules checked by the go-playground/validator
//     package when a draft is submitted through the form. "notfuture"
//     is a custom rule registered by the form package.
type Student struct {
	ID       string `json:"id"       validate:"required"`
	Name     string `json:"name"     validate:"required"`
	Gender   Gender `json:"gender"   validate:"required,oneof=Nam Nữ"`
	Birthday string `json:"birthday" validate:"required,datetime=2006-01-02,notfuture"`
	Hometown string `json:"hometown" validate:"required"`
	Address  string `json:"address"  validate:"required"`
	Age      *int   `json:"age,omitempty" validate:"required,min=0"`
}

// StudentPatch is a partial Student used by edits. A nil field means
// "not present in the payload" and keeps the stored value.
type StudentPatch struct {
	ID       *string `json:"id,omitempty"`
	Name     *string `json:"name,omitempty"`
	Gender   *Gender `json:"gender,omitempty"`
	Birthday *string `json:"birthday,omitempty"`
	Hometown *string `json:"hometown,omitempty"`
	Address  *string `json:"address,omitempty"`
	Age      *int    `json:"age,omitempty"`
}

// Merge returns s with every field present in p copied over it.
// It is a shallow merge: s itself is not modified.
func Merge(s Student, p StudentPatch) Student {
	if p.ID != nil {
		s.ID = *p.ID
	}
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Gender != nil {
		s.Gender = *p.Gender
	}
	if p.Birthday != nil {
		s.Birthday = *p.Birthday
	}
	if p.Hometown != nil {
		s.Hometown = *p.Hometown
	}
	if p.Address != nil {
		s.Address = *p.Address
	}
	if p.Age != nil {
		age := *p.Age
		s.Age = &age
	}
	return s
}

// PatchFrom builds a patch carrying every field of s. Used when a whole
// draft is submitted as an edit.
func PatchFrom(s Student) StudentPatch {
	p := StudentPatch{
		ID:       &s.ID,
		Name:     &s.Name,
		Gender:   &s.Gender,
		Birthday: &s.Birthday,
		Hometown: &s.Hometown,
		Address:  &s.Address,
	}
	if s.Age != nil {
		age := *s.Age
		p.Age = &age
	}
	return p
}

// Clone returns a copy of s that shares no pointers with it.
func (s Student) Clone() Student {
	if s.Age != nil {
		age := *s.Age
		s.Age = &age
	}
	return s
}

// IntPtr is a small helper for building records with an age.
func IntPtr(v int) *int { return &v }
