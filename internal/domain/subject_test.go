package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectCodeBase(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Matemática", "MAT"},
		{"Língua Portuguesa", "PORT"},
		{"Português", "PORT"},
		{"Educação Física", "EDFIS"},
		{"Física", "FIS"},
		{"Ciências", "CIEN"},
		{"Ensino Religioso", "ENS_REL"},
		{"Geometria", "GEOM"},
		{"Artes Visuais", "ART"},
		{"Robótica Educacional", "ROED"},
		{"Música", "MUSI"},
		{"Ed", "ED"},
		{"  teatro  ", "TEAT"},
		{"123", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SubjectCodeBase(tt.name))
		})
	}
}

func TestNextSubjectCode(t *testing.T) {
	assert.Equal(t, "MAT001", NextSubjectCode("MAT", nil))
	assert.Equal(t, "MAT003", NextSubjectCode("MAT", []string{"MAT001", "MAT002"}))
	assert.Equal(t, "MAT001", NextSubjectCode("MAT", []string{"MAT002"}))
	assert.Equal(t, "ROED001", NextSubjectCode("ROED", []string{"MAT001"}))
}

func TestNewSubject(t *testing.T) {
	s, err := NewSubject("Artes", GradingConcept, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultSubjectHours, s.WeeklyHours)
	assert.True(t, s.Active)
	assert.True(t, s.ConceptGraded())
	assert.Error(t, s.Validate(), "code is not allocated yet")

	s.Code = NextSubjectCode(SubjectCodeBase(s.Name), nil)
	assert.NoError(t, s.Validate())
	assert.Equal(t, "ART001", s.Code)

	_, err = NewSubject("!!!", GradingScore, 40)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewSubject("Química", "LETTER", 40)
	assert.ErrorIs(t, err, ErrValidation)
}
