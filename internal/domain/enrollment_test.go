package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollmentLifecycle(t *testing.T) {
	actor := Actor{UserID: uuid.New(), Username: "secretaria"}
	now := time.Date(2025, 2, 3, 8, 0, 0, 0, time.UTC)

	e, err := NewEnrollment(7, uuid.New(), actor, now)
	require.NoError(t, err)
	assert.True(t, e.Active)
	assert.Equal(t, actor.UserID, e.EnrolledBy)
	assert.Equal(t, now, e.EnrolledAt)

	later := now.Add(24 * time.Hour)
	require.NoError(t, e.Disenroll("  transferido  ", actor, later))
	assert.False(t, e.Active)
	require.NotNil(t, e.DisenrolledAt)
	assert.Equal(t, later, *e.DisenrolledAt)
	assert.Equal(t, "transferido", e.DisenrollReason)
	require.NotNil(t, e.DisenrolledBy)
	assert.Equal(t, actor.UserID, *e.DisenrolledBy)

	err = e.Disenroll("again", actor, later)
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestNewEnrollmentValidation(t *testing.T) {
	actor := Actor{UserID: uuid.New()}
	_, err := NewEnrollment(0, uuid.New(), actor, time.Now())
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = NewEnrollment(1, uuid.Nil, actor, time.Now())
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = NewEnrollment(1, uuid.New(), Actor{}, time.Now())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func intPtr(v int) *int { return &v }

func rosterNames(entries []RosterEntry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Student.Name
	}
	return names
}

func TestSortRoster(t *testing.T) {
	date := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	base := func() []RosterEntry {
		return []RosterEntry{
			{Student: Student{Code: 3, Name: "Bruno", BirthDate: date(2015, 5, 1)}, Position: intPtr(2)},
			{Student: Student{Code: 1, Name: "alice", BirthDate: date(2014, 1, 9)}},
			{Student: Student{Code: 2, Name: "Ágata", BirthDate: date(2015, 5, 1)}, Position: intPtr(1)},
			{Student: Student{Code: 4, Name: "Caio", BirthDate: date(2013, 12, 31)}},
		}
	}

	tests := []struct {
		order RosterOrder
		want  []string
	}{
		{RosterAlphabetic, []string{"Ágata", "alice", "Bruno", "Caio"}},
		{"", []string{"Ágata", "alice", "Bruno", "Caio"}},
		{RosterStudentCode, []string{"alice", "Ágata", "Bruno", "Caio"}},
		{RosterBirthDate, []string{"Caio", "alice", "Ágata", "Bruno"}},
		{RosterCustom, []string{"Ágata", "Bruno", "alice", "Caio"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			entries := base()
			SortRoster(entries, tt.order)
			assert.Equal(t, tt.want, rosterNames(entries))
		})
	}
}

func TestRosterOrderValid(t *testing.T) {
	for _, o := range []RosterOrder{RosterAlphabetic, RosterBirthDate, RosterStudentCode, RosterCustom} {
		assert.True(t, o.Valid(), o)
	}
	assert.False(t, RosterOrder("RANDOM").Valid())
}
