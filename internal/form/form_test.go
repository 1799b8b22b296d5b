package form

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records/internal/storage/memory"
	"github.com/aanand-mishra/student-records/internal/store"
	"github.com/aanand-mishra/student-records/internal/types"
)

var fixedNow = time.Date(2024, time.June, 1, 15, 30, 0, 0, time.UTC)

func clock() Option {
	return WithClock(func() time.Time { return fixedNow })
}

func sv1() types.Student {
	return types.Student{
		ID:       "SV1",
		Name:     "A",
		Gender:   types.GenderMale,
		Birthday: "2000-01-01",
		Hometown: "X",
		Address:  "Y",
		Age:      types.IntPtr(20),
	}
}

func newRecords(t *testing.T, seed ...types.Student) (*store.Store, *memory.Memory) {
	t.Helper()
	backend, err := memory.NewWith(seed)
	require.NoError(t, err)
	s, err := store.New(context.Background(), backend, nil)
	require.NoError(t, err)
	return s, backend
}

func fill(t *testing.T, f *Form, s types.Student) {
	t.Helper()
	require.NoError(t, f.SetField(FieldID, s.ID))
	require.NoError(t, f.SetField(FieldName, s.Name))
	require.NoError(t, f.SetField(FieldGender, string(s.Gender)))
	require.NoError(t, f.SetField(FieldBirthday, s.Birthday))
	require.NoError(t, f.SetField(FieldHometown, s.Hometown))
	require.NoError(t, f.SetField(FieldAddress, s.Address))
	if s.Age != nil {
		f.Apply(types.StudentPatch{Age: s.Age})
	}
}

func TestNewCreate_EmptyTemplate(t *testing.T) {
	records, _ := newRecords(t)
	f := NewCreate(records)

	assert.Equal(t, types.Student{Gender: types.GenderMale}, f.Draft())
	assert.False(t, f.Mode().IsEdit())
	assert.Nil(t, f.Errors())
}

func TestSetField(t *testing.T) {
	records, _ := newRecords(t)
	f := NewCreate(records)

	t.Run("age is coerced", func(t *testing.T) {
		require.NoError(t, f.SetField(FieldAge, " 21 "))
		require.NotNil(t, f.Draft().Age)
		assert.Equal(t, 21, *f.Draft().Age)
	})

	t.Run("blank age unsets", func(t *testing.T) {
		require.NoError(t, f.SetField(FieldAge, ""))
		assert.Nil(t, f.Draft().Age)
	})

	t.Run("non-numeric age", func(t *testing.T) {
		err := f.SetField(FieldAge, "twenty")
		assert.ErrorIs(t, err, ErrInvalidAge)
		assert.Nil(t, f.Draft().Age)
	})

	t.Run("other fields are stored verbatim", func(t *testing.T) {
		require.NoError(t, f.SetField(FieldName, "  An  "))
		assert.Equal(t, "  An  ", f.Draft().Name)
	})

	t.Run("unknown field", func(t *testing.T) {
		assert.ErrorIs(t, f.SetField("email", "x"), ErrUnknownField)
	})
}

func TestSubmit_Create(t *testing.T) {
	ctx := context.Background()
	records, backend := newRecords(t)
	f := NewCreate(records, clock())

	fill(t, f, sv1())
	outcome, err := f.Submit(ctx)
	require.NoError(t, err)

	assert.Equal(t, Created, outcome.Kind)
	assert.Equal(t, sv1(), outcome.Student)
	assert.Equal(t, 1, records.Len())

	stored, err := backend.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 1)

	// the draft goes back to the template and focus returns to id
	assert.Equal(t, types.Student{Gender: types.GenderMale}, f.Draft())
	assert.Equal(t, FieldID, f.Focus())
	assert.Nil(t, f.Errors())

	t.Run("same id again is blocked", func(t *testing.T) {
		dup := sv1()
		dup.Name = "Other"
		fill(t, f, dup)

		_, err := f.Submit(ctx)
		var errs Errors
		require.ErrorAs(t, err, &errs)
		assert.Equal(t, Errors{FieldID: "student id already exists"}, errs)
		assert.Contains(t, f.Errors()[FieldID], "already exists")
		assert.Equal(t, 1, records.Len())
		assert.Equal(t, "", f.Focus())
		assert.Equal(t, dup, f.Draft(), "draft is kept for correction")
	})
}

func TestSubmit_DuplicateName(t *testing.T) {
	ctx := context.Background()
	a := sv1()
	b := sv1()
	b.ID = "SV2"
	records, backend := newRecords(t, a, b)
	f := NewCreate(records, clock())

	c := sv1()
	c.ID = "SV3"
	c.Name = " a " // same name, different case and padding
	fill(t, f, c)

	_, err := f.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, "student name already exists", f.Errors()[FieldName])
	assert.NotContains(t, f.Errors(), FieldID)
	assert.Equal(t, 2, records.Len())
	assert.Equal(t, 0, backend.Saves())
}

func TestSubmit_RequiredFields(t *testing.T) {
	records, _ := newRecords(t)
	f := NewCreate(records, clock())
	require.NoError(t, f.SetField(FieldGender, ""))

	_, err := f.Submit(context.Background())
	require.Error(t, err)

	assert.Equal(t, Errors{
		FieldID:       "student id is required",
		FieldName:     "student name is required",
		FieldGender:   "gender is required",
		FieldBirthday: "birthday is required",
		FieldHometown: "hometown is required",
		FieldAddress:  "address is required",
		FieldAge:      "age is required",
	}, f.Errors())
	assert.Equal(t, 0, records.Len())
}

func TestSubmit_FieldRules(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
		want  string
	}{
		{"future birthday", FieldBirthday, "2024-06-02", "birthday cannot be in the future"},
		{"malformed birthday", FieldBirthday, "01/02/2000", "birthday must be a date in YYYY-MM-DD format"},
		{"unknown gender", FieldGender, "Other", "gender must be one of Nam, Nữ"},
		{"negative age", FieldAge, "-1", "age must be 0 or greater"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, _ := newRecords(t)
			f := NewCreate(records, clock())
			fill(t, f, sv1())
			require.NoError(t, f.SetField(tt.field, tt.value))

			_, err := f.Submit(context.Background())
			require.Error(t, err)
			assert.Equal(t, Errors{tt.field: tt.want}, f.Errors())
		})
	}

	t.Run("birthday today and age zero are fine", func(t *testing.T) {
		records, _ := newRecords(t)
		f := NewCreate(records, clock())
		fill(t, f, sv1())
		require.NoError(t, f.SetField(FieldBirthday, "2024-06-01"))
		require.NoError(t, f.SetField(FieldAge, "0"))

		_, err := f.Submit(context.Background())
		assert.NoError(t, err)
	})
}

func TestSubmit_Edit(t *testing.T) {
	ctx := context.Background()
	other := sv1()
	other.ID = "SV2"
	other.Name = "Other"
	records, _ := newRecords(t, sv1(), other)

	t.Run("unchanged id is not a collision", func(t *testing.T) {
		f := NewEdit(records, sv1(), clock())
		require.NoError(t, f.SetField(FieldHometown, "Hue"))

		outcome, err := f.Submit(ctx)
		require.NoError(t, err)
		assert.Equal(t, Updated, outcome.Kind)
	})

	t.Run("only the name changes and the draft is kept", func(t *testing.T) {
		current, ok := records.Get("SV1")
		require.True(t, ok)

		f := NewEdit(records, current, clock())
		require.NoError(t, f.SetField(FieldName, "B"))

		_, err := f.Submit(ctx)
		require.NoError(t, err)

		got, _ := records.Get("SV1")
		want := current
		want.Name = "B"
		assert.Equal(t, want, got)
		assert.Equal(t, want, f.Draft(), "draft is not reset in edit mode")
		assert.Equal(t, "", f.Focus())
	})

	t.Run("changing to another record's id is a collision", func(t *testing.T) {
		current, _ := records.Get("SV1")
		f := NewEdit(records, current, clock())
		require.NoError(t, f.SetField(FieldID, "SV2"))
		require.NoError(t, f.SetField(FieldName, "Other"))

		_, err := f.Submit(ctx)
		require.Error(t, err)
		assert.Equal(t, Errors{
			FieldID:   "student id already exists",
			FieldName: "student name already exists",
		}, f.Errors())
	})

	t.Run("renaming the id follows the record", func(t *testing.T) {
		current, _ := records.Get("SV1")
		f := NewEdit(records, current, clock())
		require.NoError(t, f.SetField(FieldID, "SV7"))

		_, err := f.Submit(ctx)
		require.NoError(t, err)
		assert.Equal(t, EditMode("SV7"), f.Mode())

		_, ok := records.Get("SV1")
		assert.False(t, ok)
		_, ok = records.Get("SV7")
		assert.True(t, ok)

		// a second submit edits the renamed record
		require.NoError(t, f.SetField(FieldAddress, "Hanoi"))
		_, err = f.Submit(ctx)
		require.NoError(t, err)
		got, _ := records.Get("SV7")
		assert.Equal(t, "Hanoi", got.Address)
	})
}

func TestSubmit_ErrorsClearedOnSuccess(t *testing.T) {
	records, _ := newRecords(t)
	f := NewCreate(records, clock())

	_, err := f.Submit(context.Background())
	require.Error(t, err)
	require.NotEmpty(t, f.Errors())

	fill(t, f, sv1())
	_, err = f.Submit(context.Background())
	require.NoError(t, err)
	assert.Nil(t, f.Errors())
}

type failingRecords struct {
	*store.Store
	err error
}

func (r failingRecords) Add(context.Context, types.Student) error { return r.err }

func TestSubmit_StoreFailureKeepsDraft(t *testing.T) {
	records, _ := newRecords(t)
	boom := errors.New("disk full")
	f := NewCreate(failingRecords{Store: records, err: boom}, clock())
	fill(t, f, sv1())

	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, sv1(), f.Draft())
	assert.Nil(t, f.Errors())
}

func TestSyncAndReset(t *testing.T) {
	records, _ := newRecords(t, sv1())
	f := NewEdit(records, sv1())

	require.NoError(t, f.SetField(FieldName, "changed"))
	f.Reset()
	assert.Equal(t, sv1(), f.Draft())

	next := sv1()
	next.ID = "SV5"
	f.Sync(next)
	assert.Equal(t, EditMode("SV5"), f.Mode())
	assert.Equal(t, next, f.Draft())

	c := NewCreate(records)
	require.NoError(t, c.SetField(FieldName, "x"))
	c.Reset()
	assert.Equal(t, types.Student{Gender: types.GenderMale}, c.Draft())
}

func TestErrors_Error(t *testing.T) {
	err := Errors{FieldName: "student name is required", FieldID: "student id already exists"}
	assert.Equal(t, "id: student id already exists; name: student name is required", err.Error())
}
