package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// GradingMode tells how a subject is assessed.
type GradingMode string

// Grading modes.
const (
	GradingScore   GradingMode = "SCORE"
	GradingConcept GradingMode = "CONCEPT"
)

// Valid reports whether m is a known grading mode.
func (m GradingMode) Valid() bool {
	return m == GradingScore || m == GradingConcept
}

// DefaultSubjectHours is the workload given to subjects created without one.
const DefaultSubjectHours = 40

// Subject is a course taught across classes. Code is unique and allocated
// from the name when the subject is created.
type Subject struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Code        string      `json:"code"`
	GradingMode GradingMode `json:"grading_mode"`
	WeeklyHours int         `json:"weekly_hours"`
	Active      bool        `json:"active"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewSubject creates an active subject without a code. The code is filled
// in by the allocator before the subject is stored.
func NewSubject(name string, mode GradingMode, weeklyHours int) (*Subject, error) {
	if weeklyHours == 0 {
		weeklyHours = DefaultSubjectHours
	}
	now := time.Now().UTC()
	s := &Subject{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(name),
		GradingMode: mode,
		WeeklyHours: weeklyHours,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.validateFields(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Subject) validateFields() error {
	if s.ID == uuid.Nil {
		return NewValidationError("id", "is required", ErrInvalidID)
	}
	if SubjectCodeBase(s.Name) == "" {
		return NewValidationError("name", "must contain letters", ErrValidation)
	}
	if !s.GradingMode.Valid() {
		return NewValidationError("grading_mode", "is invalid", ErrValidation)
	}
	if s.WeeklyHours < 1 {
		return NewValidationError("weekly_hours", "must be positive", ErrOutOfRange)
	}
	return nil
}

// Validate checks the subject, including its allocated code.
func (s *Subject) Validate() error {
	if err := s.validateFields(); err != nil {
		return err
	}
	if s.Code == "" || len(s.Code) > 20 {
		return NewValidationError("code", "is required and at most 20 characters", ErrValidation)
	}
	return nil
}

// ConceptGraded reports whether the subject uses qualitative concepts.
func (s *Subject) ConceptGraded() bool {
	return s.GradingMode == GradingConcept
}

// subjectAbbreviations maps normalized names of common subjects to their codes.
var subjectAbbreviations = map[string]string{
	"MATEMATICA":        "MAT",
	"PORTUGUES":         "PORT",
	"LINGUA PORTUGUESA": "PORT",
	"HISTORIA":          "HIST",
	"GEOGRAFIA":         "GEO",
	"CIENCIAS":          "CIEN",
	"BIOLOGIA":          "BIO",
	"FISICA":            "FIS",
	"QUIMICA":           "QUIM",
	"FILOSOFIA":         "FIL",
	"SOCIOLOGIA":        "SOC",
	"EDUCACAO FISICA":   "EDFIS",
	"ARTES":             "ART",
	"INGLES":            "ING",
	"ESPANHOL":          "ESP",
	"INFORMATICA":       "INFO",
	"LITERATURA":        "LIT",
	"REDACAO":           "RED",
	"GEOMETRIA":         "GEOM",
	"ALGEBRA":           "ALG",
	"ENSINO RELIGIOSO":  "ENS_REL",
}

// abbreviationKeys holds the map keys longest first, so "EDUCACAO FISICA"
// wins over "FISICA".
var abbreviationKeys = func() []string {
	keys := make([]string, 0, len(subjectAbbreviations))
	for k := range subjectAbbreviations {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// normalizeSubjectName uppercases name, strips diacritics and drops every
// character that is not an ASCII letter or a space.
func normalizeSubjectName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}
	var b strings.Builder
	for _, r := range strings.ToUpper(stripped) {
		if (r >= 'A' && r <= 'Z') || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// SubjectCodeBase derives the code prefix for a subject name. Known
// subjects use their abbreviation. Other names take the first two letters
// of each of the first two words, or up to four letters of a single word.
// It returns "" when the name has no letters.
func SubjectCodeBase(name string) string {
	normalized := normalizeSubjectName(name)
	if normalized == "" {
		return ""
	}
	for _, key := range abbreviationKeys {
		if strings.Contains(normalized, key) {
			return subjectAbbreviations[key]
		}
	}

	words := strings.Fields(normalized)
	if len(words) >= 2 {
		return prefix(words[0], 2) + prefix(words[1], 2)
	}
	return prefix(words[0], 4)
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// FormatSubjectCode renders base with a three-digit sequence number.
func FormatSubjectCode(base string, seq int) string {
	return fmt.Sprintf("%s%03d", base, seq)
}

// NextSubjectCode returns the first code base001, base002, ... not present
// in taken.
func NextSubjectCode(base string, taken []string) string {
	used := make(map[string]struct{}, len(taken))
	for _, code := range taken {
		used[code] = struct{}{}
	}
	for seq := 1; ; seq++ {
		code := FormatSubjectCode(base, seq)
		if _, ok := used[code]; !ok {
			return code
		}
	}
}
