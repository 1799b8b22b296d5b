// Package form implements the student form: a draft record, field input
// coercion, validation against the current records, and submission.
//
// The form never changes the record list itself. It proposes a record
// and hands it to Records.Add (create mode) or Records.Edit (edit mode).
//
// STATE MACHINE:
//
//	Editing ── submit, invalid ──────────► Editing (errors set)
//	Editing ── submit, valid, create ────► Editing (draft reset, focus on id)
//	Editing ── submit, valid, edit ──────► Editing (draft kept)
package form

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-records/internal/types"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidAge   = errors.New("age must be a whole number")
)

// Records is what the form needs from the record store.
type Records interface {
	List() []types.Student
	Add(ctx context.Context, student types.Student) error
	Edit(ctx context.Context, id string, patch types.StudentPatch) error
}

// Mode tells the form whether a submit creates a record or updates the
// record with a given id.
type Mode struct {
	edit     bool
	recordID string
}

func CreateMode() Mode { return Mode{} }

func EditMode(recordID string) Mode { return Mode{edit: true, recordID: recordID} }

func (m Mode) IsEdit() bool { return m.edit }

// RecordID is the id of the record being edited; empty in create mode.
func (m Mode) RecordID() string { return m.recordID }

func (m Mode) String() string {
	if m.edit {
		return "edit(" + m.recordID + ")"
	}
	return "create"
}

// OutcomeKind says what a successful submit did.
type OutcomeKind int

const (
	Created OutcomeKind = iota + 1
	Updated
)

// Outcome describes a successful submit.
type Outcome struct {
	Kind    OutcomeKind
	Student types.Student
}

// Option customises a Form.
type Option func(*Form)

// WithClock sets the clock used to reject future birthdays.
func WithClock(now func() time.Time) Option {
	return func(f *Form) { f.now = now }
}

type Form struct {
	records  Records
	mode     Mode
	original types.Student
	draft    types.Student
	errors   Errors
	focus    string
	validate *validator.Validate
	now      func() time.Time
}

// NewCreate returns a form in create mode with an empty draft.
func NewCreate(records Records, opts ...Option) *Form {
	f := newForm(records, opts)
	f.draft = emptyDraft()
	return f
}

// NewEdit returns a form in edit mode, its draft initialised from record.
func NewEdit(records Records, record types.Student, opts ...Option) *Form {
	f := newForm(records, opts)
	f.Sync(record)
	return f
}

func newForm(records Records, opts []Option) *Form {
	f := &Form{records: records, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	f.validate = newValidator(func() time.Time { return f.now() })
	return f
}

// emptyDraft is the create-mode template; gender defaults to "Nam".
func emptyDraft() types.Student {
	return types.Student{Gender: types.GenderMale}
}

// Sync re-initialises the form from an externally supplied record and
// switches it to edit mode for that record.
func (f *Form) Sync(record types.Student) {
	f.mode = EditMode(record.ID)
	f.original = record.Clone()
	f.draft = record.Clone()
	f.errors = nil
	f.focus = ""
}

// Reset returns a create-mode form to the empty template. In edit mode
// the draft goes back to the record being edited.
func (f *Form) Reset() {
	if f.mode.IsEdit() {
		f.Sync(f.original)
		return
	}
	f.draft = emptyDraft()
	f.errors = nil
	f.focus = ""
}

func (f *Form) Mode() Mode { return f.mode }

// Draft returns a copy of the working record.
func (f *Form) Draft() types.Student { return f.draft.Clone() }

// Errors returns the messages from the last failed submit, or nil.
func (f *Form) Errors() Errors {
	if len(f.errors) == 0 {
		return nil
	}
	out := make(Errors, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// Focus names the field that should receive input focus, if any.
func (f *Form) Focus() string { return f.focus }

// SetField stores a raw input value in the draft. Only age is coerced:
// blank clears it, anything else must parse as an integer.
func (f *Form) SetField(field, raw string) error {
	switch field {
	case FieldID:
		f.draft.ID = raw
	case FieldName:
		f.draft.Name = raw
	case FieldGender:
		f.draft.Gender = types.Gender(raw)
	case FieldBirthday:
		f.draft.Birthday = raw
	case FieldHometown:
		f.draft.Hometown = raw
	case FieldAddress:
		f.draft.Address = raw
	case FieldAge:
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			f.draft.Age = nil
			return nil
		}
		age, err := strconv.Atoi(trimmed)
		if err != nil {
			f.draft.Age = nil
			return fmt.Errorf("%w: %q", ErrInvalidAge, raw)
		}
		f.draft.Age = &age
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Apply copies every field present in patch into the draft.
func (f *Form) Apply(patch types.StudentPatch) {
	f.draft = types.Merge(f.draft, patch)
}

// Validate checks the draft and returns every failing field, or nil.
// Rules are evaluated per field; one field failing does not hide another.
func (f *Form) Validate() Errors {
	errs := make(Errors)

	var verrs validator.ValidationErrors
	if err := f.validate.Struct(f.draft); errors.As(err, &verrs) {
		for _, fe := range verrs {
			if _, seen := errs[fe.Field()]; !seen {
				errs[fe.Field()] = message(fe)
			}
		}
	}

	if _, bad := errs[FieldID]; !bad && f.idChanged() && f.taken(func(s types.Student) bool {
		return s.ID == f.draft.ID
	}) {
		errs[FieldID] = alreadyExists(FieldID)
	}

	if _, bad := errs[FieldName]; !bad && f.nameChanged() && f.taken(func(s types.Student) bool {
		return sameName(s.Name, f.draft.Name)
	}) {
		errs[FieldName] = alreadyExists(FieldName)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Submit validates the draft and, when it is clean, creates or updates
// the record depending on the mode. Validation failures come back as
// Errors and nothing is sent to the store.
func (f *Form) Submit(ctx context.Context) (Outcome, error) {
	f.focus = ""

	if errs := f.Validate(); errs != nil {
		f.errors = errs
		return Outcome{}, errs
	}
	f.errors = nil

	submitted := f.draft.Clone()

	if f.mode.IsEdit() {
		if err := f.records.Edit(ctx, f.mode.RecordID(), types.PatchFrom(submitted)); err != nil {
			return Outcome{}, err
		}
		// the draft stays as typed; only identity follows a changed id
		f.mode = EditMode(submitted.ID)
		f.original = submitted.Clone()
		return Outcome{Kind: Updated, Student: submitted}, nil
	}

	if err := f.records.Add(ctx, submitted); err != nil {
		return Outcome{}, err
	}
	f.draft = emptyDraft()
	f.focus = FieldID
	return Outcome{Kind: Created, Student: submitted}, nil
}

// idChanged reports whether the id needs a uniqueness check.
func (f *Form) idChanged() bool {
	return !f.mode.IsEdit() || f.draft.ID != f.original.ID
}

func (f *Form) nameChanged() bool {
	return !f.mode.IsEdit() || !sameName(f.draft.Name, f.original.Name)
}

// taken reports whether any record other than the one being edited
// matches.
func (f *Form) taken(match func(types.Student) bool) bool {
	for _, s := range f.records.List() {
		if f.mode.IsEdit() && s.ID == f.mode.RecordID() {
			continue
		}
		if match(s) {
			return true
		}
	}
	return false
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
