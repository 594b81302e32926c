package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/guto-escola/guto-api/internal/domain"
	"github.com/guto-escola/guto-api/internal/service"
)

// StudentRequest is the body of POST /students and PUT /students/{code}.
type StudentRequest struct {
	Name                 string `json:"name"                   validate:"required,min=3,max=200"`
	SocialName           string `json:"social_name"            validate:"max=200"`
	BirthDate            string `json:"birth_date"             validate:"required,datetime=2006-01-02"`
	Sex                  string `json:"sex"                    validate:"required,oneof=M F"`
	MotherName           string `json:"mother_name"            validate:"max=200"`
	FatherName           string `json:"father_name"            validate:"max=200"`
	Twin                 bool   `json:"twin"`
	MissingSchoolHistory bool   `json:"missing_school_history"`
	ExclusiveAEE         bool   `json:"exclusive_aee"`
}

// apply copies the request onto student.
func (req StudentRequest) apply(student *domain.Student) error {
	birth, err := parseDate("birth_date", req.BirthDate)
	if err != nil {
		return err
	}
	student.Name = req.Name
	student.SocialName = req.SocialName
	student.BirthDate = birth
	student.Sex = domain.Sex(req.Sex)
	student.MotherName = req.MotherName
	student.FatherName = req.FatherName
	student.Twin = req.Twin
	student.MissingSchoolHistory = req.MissingSchoolHistory
	student.ExclusiveAEE = req.ExclusiveAEE
	return nil
}

// StaffRequest is the body of POST /staff and PUT /staff/{code}.
type StaffRequest struct {
	Name          string  `json:"name"           validate:"required,min=3,max=200"`
	BirthDate     string  `json:"birth_date"     validate:"required,datetime=2006-01-02"`
	Sex           string  `json:"sex"            validate:"required,oneof=M F"`
	Role          string  `json:"role"           validate:"required"`
	Status        string  `json:"status"`
	Bond          string  `json:"bond"`
	AdmissionDate *string `json:"admission_date" validate:"omitempty,datetime=2006-01-02"`
	WeeklyHours   int     `json:"weekly_hours"   validate:"gte=0,lte=60"`
}

// apply copies the request onto staff. Empty status and weekly hours keep
// the current values.
func (req StaffRequest) apply(staff *domain.Staff) error {
	birth, err := parseDate("birth_date", req.BirthDate)
	if err != nil {
		return err
	}
	admission, err := parseOptionalDate("admission_date", req.AdmissionDate)
	if err != nil {
		return err
	}
	staff.Name = req.Name
	staff.BirthDate = birth
	staff.Sex = domain.Sex(req.Sex)
	staff.Role = domain.StaffRole(req.Role)
	if req.Status != "" {
		staff.Status = domain.EmploymentStatus(req.Status)
	}
	staff.Bond = domain.EmploymentBond(req.Bond)
	staff.AdmissionDate = admission
	if req.WeeklyHours > 0 {
		staff.WeeklyHours = req.WeeklyHours
	}
	return nil
}

// ClassRequest is the body of POST /classes.
type ClassRequest struct {
	Name                string `json:"name"                  validate:"required,max=100"`
	Period              string `json:"period"                validate:"required,len=4,numeric"`
	EducationType       string `json:"education_type"        validate:"required"`
	GradeLevel          string `json:"grade_level"           validate:"required"`
	Shift               string `json:"shift"                 validate:"required"`
	Capacity            int    `json:"capacity"              validate:"gte=0,lte=100"`
	RosterOrder         string `json:"roster_order"`
	HomeroomTeacherCode *int64 `json:"homeroom_teacher_code" validate:"omitempty,gt=0"`
}

func (req ClassRequest) params() service.ClassParams {
	return service.ClassParams{
		Name:                req.Name,
		Period:              req.Period,
		EducationType:       domain.EducationType(req.EducationType),
		GradeLevel:          domain.GradeLevel(req.GradeLevel),
		Shift:               domain.Shift(req.Shift),
		Capacity:            req.Capacity,
		RosterOrder:         domain.RosterOrder(req.RosterOrder),
		HomeroomTeacherCode: req.HomeroomTeacherCode,
	}
}

// CapacityRequest is the body of PUT /classes/{id}/capacity.
type CapacityRequest struct {
	Capacity int `json:"capacity" validate:"required,gt=0,lte=100"`
}

// EnrollRequest is the body of POST /classes/{id}/enrollments.
type EnrollRequest struct {
	StudentCode int64 `json:"student_code" validate:"required,gt=0"`
}

// DisenrollRequest is the body of POST /enrollments/{id}/disenroll.
type DisenrollRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// TransferRequest is the body of POST /enrollments/transfer.
type TransferRequest struct {
	StudentCode int64  `json:"student_code" validate:"required,gt=0"`
	ToClassID   string `json:"to_class_id"  validate:"required,uuid"`
	Reason      string `json:"reason"       validate:"max=500"`
}

// PositionRequest is the body of PUT /enrollments/{id}/position.
type PositionRequest struct {
	Position int `json:"position" validate:"required,gt=0"`
}

// SubjectRequest is the body of POST /subjects.
type SubjectRequest struct {
	Name        string `json:"name"         validate:"required,max=100"`
	GradingMode string `json:"grading_mode" validate:"required,oneof=SCORE CONCEPT"`
	WeeklyHours int    `json:"weekly_hours" validate:"gte=0,lte=40"`
}

// DivisionRequest is the body of POST /periods/{period}/divisions.
type DivisionRequest struct {
	Name      string `json:"name"       validate:"required,max=50"`
	Kind      string `json:"kind"       validate:"required"`
	Order     int    `json:"order"      validate:"required,gt=0"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date"   validate:"required,datetime=2006-01-02"`
}

func (req DivisionRequest) toDomain(period string) (*domain.PeriodDivision, error) {
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		return nil, err
	}
	return domain.NewPeriodDivision(req.Name, domain.DivisionKind(req.Kind), period, req.Order, start, end)
}

// ConceptRequest is the body of POST /concepts.
type ConceptRequest struct {
	Name         string  `json:"name"          validate:"required,max=50"`
	Description  string  `json:"description"   validate:"max=200"`
	NumericValue float64 `json:"numeric_value" validate:"gte=0,lte=10"`
}

// EvaluationTypeRequest is the body of POST /evaluation-types.
type EvaluationTypeRequest struct {
	Name          string  `json:"name"           validate:"required,max=100"`
	Description   string  `json:"description"    validate:"max=500"`
	DefaultWeight float64 `json:"default_weight" validate:"gte=0"`
}

// EvaluationRequest is the body of POST /evaluations.
type EvaluationRequest struct {
	ClassID    string  `json:"class_id"    validate:"required,uuid"`
	SubjectID  string  `json:"subject_id"  validate:"required,uuid"`
	DivisionID string  `json:"division_id" validate:"required,uuid"`
	TypeID     string  `json:"type_id"     validate:"required,uuid"`
	Name       string  `json:"name"        validate:"required,max=100"`
	AppliedOn  string  `json:"applied_on"  validate:"required,datetime=2006-01-02"`
	MaxValue   float64 `json:"max_value"   validate:"gte=0"`
	Weight     float64 `json:"weight"      validate:"gte=0"`
}

func (req EvaluationRequest) params() (domain.EvaluationParams, error) {
	applied, err := parseDate("applied_on", req.AppliedOn)
	if err != nil {
		return domain.EvaluationParams{}, err
	}
	// The validator has already checked the UUIDs.
	return domain.EvaluationParams{
		ClassID:    uuid.MustParse(req.ClassID),
		SubjectID:  uuid.MustParse(req.SubjectID),
		DivisionID: uuid.MustParse(req.DivisionID),
		TypeID:     uuid.MustParse(req.TypeID),
		Name:       req.Name,
		AppliedOn:  applied,
		MaxValue:   req.MaxValue,
		Weight:     req.Weight,
	}, nil
}

// GradeRequest is the body of POST /evaluations/{id}/grades. Exclusivity of
// score, concept, absent and exempted is checked by the grading rules.
type GradeRequest struct {
	StudentCode int64      `json:"student_code" validate:"required,gt=0"`
	Score       *float64   `json:"score"`
	ConceptID   *uuid.UUID `json:"concept_id"`
	Absent      bool       `json:"absent"`
	Exempted    bool       `json:"exempted"`
	Notes       string     `json:"notes"        validate:"max=500"`
}

func (req GradeRequest) input() domain.GradeInput {
	return domain.GradeInput{
		Score:     req.Score,
		ConceptID: req.ConceptID,
		Absent:    req.Absent,
		Exempted:  req.Exempted,
		Notes:     req.Notes,
	}
}

// RecoveryRequest is the body of POST /recoveries. Exactly one of score and
// did_not_opt is checked by the grading rules.
type RecoveryRequest struct {
	ClassID     string   `json:"class_id"     validate:"required,uuid"`
	SubjectID   string   `json:"subject_id"   validate:"required,uuid"`
	StudentCode int64    `json:"student_code" validate:"required,gt=0"`
	Score       *float64 `json:"score"`
	DidNotOpt   bool     `json:"did_not_opt"`
}

func (req RecoveryRequest) params() service.RecoveryParams {
	return service.RecoveryParams{
		ClassID:     uuid.MustParse(req.ClassID),
		SubjectID:   uuid.MustParse(req.SubjectID),
		StudentCode: req.StudentCode,
		Input:       domain.RecoveryInput{Score: req.Score, DidNotOpt: req.DidNotOpt},
	}
}

// CertificateRequest is the body of POST /certificates.
type CertificateRequest struct {
	StudentCode int64  `json:"student_code" validate:"required,gt=0"`
	ClassID     string `json:"class_id"     validate:"required,uuid"`
	IssuedOn    string `json:"issued_on"    validate:"required,datetime=2006-01-02"`
	Days        int    `json:"days"         validate:"required,min=1,max=180"`
	Reason      string `json:"reason"       validate:"required,max=255"`
	Description string `json:"description"  validate:"max=2000"`
}

func (req CertificateRequest) params() (service.CertificateParams, error) {
	issuedOn, err := parseDate("issued_on", req.IssuedOn)
	if err != nil {
		return service.CertificateParams{}, err
	}
	return service.CertificateParams{
		StudentCode: req.StudentCode,
		ClassID:     uuid.MustParse(req.ClassID),
		IssuedOn:    issuedOn,
		Days:        req.Days,
		Reason:      req.Reason,
		Description: req.Description,
	}, nil
}

// LessonRequest is the body of POST /lessons.
type LessonRequest struct {
	ClassID     string `json:"class_id"     validate:"required,uuid"`
	SubjectID   string `json:"subject_id"   validate:"required,uuid"`
	Date        string `json:"date"         validate:"required,datetime=2006-01-02"`
	StartTime   string `json:"start_time"   validate:"required,datetime=15:04"`
	EndTime     string `json:"end_time"     validate:"required,datetime=15:04"`
	Content     string `json:"content"      validate:"max=2000"`
	TeacherCode *int64 `json:"teacher_code" validate:"omitempty,gt=0"`
}

func (req LessonRequest) params() (service.LessonParams, error) {
	date, err := parseDate("date", req.Date)
	if err != nil {
		return service.LessonParams{}, err
	}
	return service.LessonParams{
		ClassID:     uuid.MustParse(req.ClassID),
		SubjectID:   uuid.MustParse(req.SubjectID),
		Date:        date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Content:     req.Content,
		TeacherCode: req.TeacherCode,
	}, nil
}

// AttendanceRequest is the body of POST /lessons/{id}/attendance.
type AttendanceRequest struct {
	Entries []AttendanceEntryRequest `json:"entries" validate:"required,min=1,dive"`
}

// AttendanceEntryRequest is the roll-call result of one student.
type AttendanceEntryRequest struct {
	StudentCode int64  `json:"student_code" validate:"required,gt=0"`
	Situation   string `json:"situation"    validate:"required,oneof=PRESENT ABSENT JUSTIFIED LATE"`
	Notes       string `json:"notes"        validate:"max=500"`
}

func (req AttendanceRequest) entries() []service.AttendanceEntry {
	out := make([]service.AttendanceEntry, len(req.Entries))
	for i, e := range req.Entries {
		out[i] = service.AttendanceEntry{
			StudentCode: e.StudentCode,
			Situation:   domain.AttendanceSituation(e.Situation),
			Notes:       e.Notes,
		}
	}
	return out
}

// ListResponse wraps collection responses.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func listOf[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Count: len(items)}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}
