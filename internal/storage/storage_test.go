package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records/internal/types"
)

func TestEncode_NilIsEmptyArray(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []types.Student
	}{
		{name: "empty input", in: "", want: []types.Student{}},
		{name: "null literal", in: "null", want: []types.Student{}},
		{
			name: "older record without age",
			in:   `[{"id":"SV1","name":"A","gender":"Nam","birthday":"2000-01-01","hometown":"X","address":"Y"}]`,
			want: []types.Student{{ID: "SV1", Name: "A", Gender: types.GenderMale, Birthday: "2000-01-01", Hometown: "X", Address: "Y"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("malformed", func(t *testing.T) {
		_, err := Decode([]byte(`{"id":`))
		assert.Error(t, err)
	})
}

func TestEncode_OmitsUnsetAge(t *testing.T) {
	data, err := Encode([]types.Student{{ID: "SV1", Gender: types.GenderFemale}})
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"age"`)
	assert.Contains(t, string(data), `"gender":"Nữ"`)
}
