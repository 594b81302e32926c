package domain

import (
	"strings"
	"time"
)

// StaffRole is the functional role of an employee.
type StaffRole string

// Staff roles.
const (
	RoleTeacher              StaffRole = "DOCENTE"
	RoleEducationalAssistant StaffRole = "AUXILIAR_EDUCACIONAL"
	RoleActivityMonitor      StaffRole = "PROFISSIONAL_MONITOR"
	RoleLibrasInterpreter    StaffRole = "TRADUTOR_LIBRAS"
	RolePrincipal            StaffRole = "DIRETOR"
	RoleVicePrincipal        StaffRole = "VICE_DIRETOR"
	RolePedagogicalCoord     StaffRole = "COORDENADOR_PEDAGOGICO"
	RoleEducationalCounselor StaffRole = "ORIENTADOR_EDUCACIONAL"
	RoleSchoolSupervisor     StaffRole = "SUPERVISOR_ESCOLAR"
	RoleSchoolSecretary      StaffRole = "SECRETARIO_ESCOLAR"
	RoleSecretaryAssistant   StaffRole = "AUXILIAR_SECRETARIA"
	RoleLibrarian            StaffRole = "BIBLIOTECARIO"
	RoleLibraryAssistant     StaffRole = "AUXILIAR_BIBLIOTECA"
	RoleLabTechnician        StaffRole = "LABORATORISTA"
	RoleGeneralServices      StaffRole = "AUXILIAR_SERVICOS_GERAIS"
	RoleWatchman             StaffRole = "VIGIA"
	RoleDoorkeeper           StaffRole = "PORTEIRO"
	RoleCook                 StaffRole = "COZINHEIRO"
	RoleKitchenAssistant     StaffRole = "AUXILIAR_COZINHA"
	RoleNutritionist         StaffRole = "NUTRICIONISTA"
	RolePsychologist         StaffRole = "PSICOLOGO"
	RoleSocialWorker         StaffRole = "ASSISTENTE_SOCIAL"
	RoleOther                StaffRole = "OUTRO"
)

var staffRoles = map[StaffRole]struct{}{
	RoleTeacher: {}, RoleEducationalAssistant: {}, RoleActivityMonitor: {},
	RoleLibrasInterpreter: {}, RolePrincipal: {}, RoleVicePrincipal: {},
	RolePedagogicalCoord: {}, RoleEducationalCounselor: {}, RoleSchoolSupervisor: {},
	RoleSchoolSecretary: {}, RoleSecretaryAssistant: {}, RoleLibrarian: {},
	RoleLibraryAssistant: {}, RoleLabTechnician: {}, RoleGeneralServices: {},
	RoleWatchman: {}, RoleDoorkeeper: {}, RoleCook: {}, RoleKitchenAssistant: {},
	RoleNutritionist: {}, RolePsychologist: {}, RoleSocialWorker: {}, RoleOther: {},
}

// Valid reports whether r is a known role.
func (r StaffRole) Valid() bool {
	_, ok := staffRoles[r]
	return ok
}

// EmploymentStatus is the functional situation of an employee.
type EmploymentStatus string

// Employment statuses.
const (
	EmploymentActive        EmploymentStatus = "ATIVO"
	EmploymentRetired       EmploymentStatus = "APOSENTADO"
	EmploymentOnLeave       EmploymentStatus = "AFASTADO_LICENCA"
	EmploymentSeconded      EmploymentStatus = "CEDIDO"
	EmploymentOutsourced    EmploymentStatus = "CONTRATO_TERCEIRIZADO"
	EmploymentTemporary     EmploymentStatus = "CONTRATO_TEMPORARIO"
	EmploymentDeceased      EmploymentStatus = "FALECIDO"
	EmploymentContractEnded EmploymentStatus = "RESCISAO_CONTRATO"
	EmploymentDismissed     EmploymentStatus = "DESLIGADO"
)

// Valid reports whether s is a known employment status.
func (s EmploymentStatus) Valid() bool {
	switch s {
	case EmploymentActive, EmploymentRetired, EmploymentOnLeave, EmploymentSeconded,
		EmploymentOutsourced, EmploymentTemporary, EmploymentDeceased,
		EmploymentContractEnded, EmploymentDismissed:
		return true
	}
	return false
}

// EmploymentBond is the contractual link between employee and school.
type EmploymentBond string

// Employment bonds.
const (
	BondTenured      EmploymentBond = "CONCURSADO_EFETIVO"
	BondTemporary    EmploymentBond = "CONTRATO_TEMPORARIO"
	BondOutsourced   EmploymentBond = "CONTRATO_TERCEIRIZADO"
	BondCLT          EmploymentBond = "CONTRATO_CLT"
	BondCommissioned EmploymentBond = "COMISSIONADO"
	BondVolunteer    EmploymentBond = "VOLUNTARIO"
)

// Valid reports whether b is a known bond. An empty bond is allowed.
func (b EmploymentBond) Valid() bool {
	switch b {
	case "", BondTenured, BondTemporary, BondOutsourced, BondCLT, BondCommissioned, BondVolunteer:
		return true
	}
	return false
}

// Staff is the canonical employee record. Code is assigned by the store.
type Staff struct {
	Code          int64            `json:"code"`
	Name          string           `json:"name"`
	BirthDate     time.Time        `json:"birth_date"`
	Sex           Sex              `json:"sex"`
	Role          StaffRole        `json:"role"`
	Status        EmploymentStatus `json:"status"`
	Bond          EmploymentBond   `json:"bond,omitempty"`
	AdmissionDate *time.Time       `json:"admission_date,omitempty"`
	WeeklyHours   int              `json:"weekly_hours"`
	ArchiveStatus ArchiveStatus    `json:"archive_status"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// NewStaff creates an active staff record with a 40-hour week.
func NewStaff(name string, birthDate time.Time, sex Sex, role StaffRole) (*Staff, error) {
	now := time.Now().UTC()
	s := &Staff{
		Name:          strings.TrimSpace(name),
		BirthDate:     birthDate,
		Sex:           sex,
		Role:          role,
		Status:        EmploymentActive,
		WeeklyHours:   40,
		ArchiveStatus: ArchiveCurrent,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the staff record's required fields.
func (s *Staff) Validate() error {
	if len([]rune(strings.TrimSpace(s.Name))) < 2 {
		return NewValidationError("name", "must have at least 2 characters", ErrValidation)
	}
	if s.BirthDate.IsZero() || s.BirthDate.After(time.Now().UTC()) {
		return NewValidationError("birth_date", "is required and cannot be in the future", ErrValidation)
	}
	if !s.Sex.Valid() {
		return NewValidationError("sex", "must be M or F", ErrValidation)
	}
	if !s.Role.Valid() {
		return NewValidationError("role", "is invalid", ErrValidation)
	}
	if !s.Status.Valid() {
		return NewValidationError("status", "is invalid", ErrValidation)
	}
	if !s.Bond.Valid() {
		return NewValidationError("bond", "is invalid", ErrValidation)
	}
	if s.WeeklyHours < 0 || s.WeeklyHours > 60 {
		return NewValidationError("weekly_hours", "must be between 0 and 60", ErrOutOfRange)
	}
	if !s.ArchiveStatus.Valid() {
		return NewValidationError("archive_status", "is invalid", ErrValidation)
	}
	return nil
}

// IsActive reports whether the employee is currently working.
func (s *Staff) IsActive() bool {
	return s.Status == EmploymentActive
}
