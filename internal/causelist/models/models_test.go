package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionListOptions(t *testing.T) {
	t.Run("placeholder first, then labels in backend order", func(t *testing.T) {
		list := NewOptionList(LevelDistrict, []string{"North", "South"})
		opts := list.Options()

		require.Len(t, opts, 3)
		assert.Equal(t, Option{Value: "", Label: "--Select District--"}, opts[0])
		assert.Equal(t, Option{Value: "North", Label: "North"}, opts[1])
		assert.Equal(t, Option{Value: "South", Label: "South"}, opts[2])
	})

	t.Run("length is always labels plus one", func(t *testing.T) {
		for _, labels := range [][]string{nil, {}, {"a"}, {"a", "b", "c", "d"}} {
			for _, level := range Levels {
				opts := NewOptionList(level, labels).Options()
				assert.Len(t, opts, len(labels)+1)
				assert.Empty(t, opts[0].Value)
			}
		}
	})

	t.Run("copies caller slice", func(t *testing.T) {
		labels := []string{"a", "b"}
		list := NewOptionList(LevelState, labels)
		labels[0] = "changed"
		assert.Equal(t, "a", list.Labels[0])
	})
}

func TestLevel(t *testing.T) {
	assert.Equal(t, []Level{LevelDistrict, LevelComplex, LevelCourt}, LevelState.Descendants())
	assert.Equal(t, []Level{LevelCourt}, LevelComplex.Descendants())
	assert.Empty(t, LevelCourt.Descendants())

	l, err := ParseLevel("complex")
	require.NoError(t, err)
	assert.Equal(t, LevelComplex, l)

	_, err = ParseLevel("village")
	assert.Error(t, err)

	assert.Equal(t, "courts", LevelCourt.ResponseKey())
	assert.False(t, Level(9).Valid())
}

func TestSelection(t *testing.T) {
	full := Selection{State: "Delhi", District: "North", Complex: "ComplexA", Court: "Court1", Date: "2024-01-15"}

	t.Run("changing an ancestor clears every descendant", func(t *testing.T) {
		s := full.With(LevelState, "Goa")
		assert.Equal(t, "Goa", s.State)
		assert.Empty(t, s.District)
		assert.Empty(t, s.Complex)
		assert.Empty(t, s.Court)
		assert.Equal(t, "2024-01-15", s.Date, "date is not part of the chain")

		s = full.With(LevelComplex, "ComplexB")
		assert.Equal(t, "North", s.District)
		assert.Empty(t, s.Court)
	})

	t.Run("path requires all ancestors", func(t *testing.T) {
		path, ok := full.Path(LevelCourt)
		require.True(t, ok)
		assert.Equal(t, []string{"Delhi", "North", "ComplexA"}, path)

		path, ok = full.Path(LevelState)
		assert.True(t, ok)
		assert.Empty(t, path)

		_, ok = Selection{State: "Delhi"}.Path(LevelComplex)
		assert.False(t, ok)
	})

	t.Run("validate names missing fields in order", func(t *testing.T) {
		require.NoError(t, full.Validate())

		err := Selection{State: "Delhi", Court: "Court1"}.Validate()
		require.Error(t, err)
		assert.True(t, IsValidation(err))
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, []Field{FieldDistrict, FieldComplex, FieldDate}, ve.Missing)
		assert.Equal(t, MissingFieldsMessage, ve.UserMessage())
	})
}

func TestCauseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-03-07", "07-03-2024"},
		{"2024-01-15", "15-01-2024"},
		{"2024-02-29", "29-02-2024"},
		{"1999-12-31", "31-12-1999"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseInputDate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
			assert.Equal(t, tt.in, d.Input())

			back, err := ParseSubmissionDate(d.String())
			require.NoError(t, err)
			assert.Equal(t, d, back)
		})
	}

	for _, bad := range []string{"9999-99-99", "2023-02-29", "07-03-2024", "2024/03/07", "", "2024-3-7"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			_, err := ParseInputDate(bad)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Criminal")
	require.NoError(t, err)
	assert.Equal(t, KindCriminal, k)

	k, err = ParseKind("civil")
	require.NoError(t, err)
	assert.Equal(t, KindCivil, k)

	_, err = ParseKind("tax")
	assert.Error(t, err)
}
