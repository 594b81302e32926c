package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClass(t *testing.T) {
	c, err := NewClass("6º A", "2025", ElementaryII, LevelYear6, ShiftMorning, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, DefaultClassCapacity, c.Capacity)
	assert.Equal(t, RosterAlphabetic, c.RosterOrder)

	tests := []struct {
		name    string
		mutate  func(c *Class)
		wantErr error
	}{
		{"short name", func(c *Class) { c.Name = "A" }, ErrValidation},
		{"bad period", func(c *Class) { c.Period = "25" }, ErrInvalidFormat},
		{"level outside type", func(c *Class) { c.GradeLevel = LevelHighYear1 }, ErrValidation},
		{"unknown shift", func(c *Class) { c.Shift = "MADRUGADA" }, ErrValidation},
		{"zero capacity", func(c *Class) { c.Capacity = 0 }, ErrOutOfRange},
		{"capacity too large", func(c *Class) { c.Capacity = MaxClassCapacity + 1 }, ErrOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp := *c
			tt.mutate(&cp)
			assert.ErrorIs(t, cp.Validate(), tt.wantErr)
		})
	}
}

func TestClassCapacity(t *testing.T) {
	c := &Class{Capacity: 1}
	assert.True(t, c.HasCapacity(0))
	assert.False(t, c.HasCapacity(1))
	assert.Equal(t, 0, c.AvailableSeats(3))

	c.Capacity = 30
	assert.Equal(t, 50, c.Occupancy(15))
	assert.Equal(t, 3, c.Occupancy(1))
}

func TestGradeLevelsFor(t *testing.T) {
	levels := GradeLevelsFor(HighSchool)
	assert.Equal(t, []GradeLevel{LevelHighYear1, LevelHighYear2, LevelHighYear3}, levels)
	levels[0] = LevelNursery
	assert.Equal(t, LevelHighYear1, GradeLevelsFor(HighSchool)[0])
	assert.Nil(t, GradeLevelsFor("SUPERIOR"))
}

func TestStudentArchive(t *testing.T) {
	s, err := NewStudent("Maria", time.Date(2014, 4, 2, 0, 0, 0, 0, time.UTC), SexFemale)
	require.NoError(t, err)
	assert.False(t, s.IsArchived())

	require.NoError(t, s.Archive(time.Now()))
	assert.True(t, s.IsArchived())
	assert.ErrorIs(t, s.Archive(time.Now()), ErrStudentArchived)

	_, err = NewStudent("Jo", time.Now().Add(48*time.Hour), SexMale)
	assert.ErrorIs(t, err, ErrValidation)
}
