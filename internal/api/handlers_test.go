package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guto-escola/guto-api/internal/api/middleware"
	"github.com/guto-escola/guto-api/internal/domain"
	"github.com/guto-escola/guto-api/internal/platform/logger"
	"github.com/guto-escola/guto-api/internal/service"
	"github.com/guto-escola/guto-api/internal/service/auth"
	"github.com/guto-escola/guto-api/internal/store"
)

// The fakes embed the service interfaces so that only the methods a test
// sets are implemented. Calling anything else panics on the nil interface.

type fakeRegistry struct {
	RegistryService
	createStudent func(ctx context.Context, actor domain.Actor, student *domain.Student) error
	getStudent    func(ctx context.Context, code int64) (*domain.Student, error)
	createSubject func(ctx context.Context, actor domain.Actor, name string, mode domain.GradingMode, hours int) (*domain.Subject, error)
}

func (f *fakeRegistry) CreateStudent(ctx context.Context, actor domain.Actor, student *domain.Student) error {
	return f.createStudent(ctx, actor, student)
}

func (f *fakeRegistry) GetStudent(ctx context.Context, code int64) (*domain.Student, error) {
	return f.getStudent(ctx, code)
}

func (f *fakeRegistry) CreateSubject(ctx context.Context, actor domain.Actor, name string, mode domain.GradingMode, hours int) (*domain.Subject, error) {
	return f.createSubject(ctx, actor, name, mode, hours)
}

type fakeEnrollments struct {
	EnrollmentService
	enroll   func(ctx context.Context, actor domain.Actor, studentCode int64, classID uuid.UUID) (*domain.Enrollment, error)
	transfer func(ctx context.Context, actor domain.Actor, studentCode int64, toClassID uuid.UUID, reason string) (*domain.Enrollment, error)
}

func (f *fakeEnrollments) Enroll(ctx context.Context, actor domain.Actor, studentCode int64, classID uuid.UUID) (*domain.Enrollment, error) {
	return f.enroll(ctx, actor, studentCode, classID)
}

func (f *fakeEnrollments) Transfer(ctx context.Context, actor domain.Actor, studentCode int64, toClassID uuid.UUID, reason string) (*domain.Enrollment, error) {
	return f.transfer(ctx, actor, studentCode, toClassID, reason)
}

type fakeGrading struct {
	GradingService
	recordGrade    func(ctx context.Context, actor domain.Actor, evaluationID uuid.UUID, studentCode int64, in domain.GradeInput) (*domain.Grade, error)
	computeAverage func(ctx context.Context, studentCode int64, scope store.EvaluationScope) (service.AverageResult, error)
	recordRecovery func(ctx context.Context, actor domain.Actor, p service.RecoveryParams) (*domain.Recovery, error)
}

func (f *fakeGrading) RecordRecovery(ctx context.Context, actor domain.Actor, p service.RecoveryParams) (*domain.Recovery, error) {
	return f.recordRecovery(ctx, actor, p)
}

func (f *fakeGrading) RecordGrade(ctx context.Context, actor domain.Actor, evaluationID uuid.UUID, studentCode int64, in domain.GradeInput) (*domain.Grade, error) {
	return f.recordGrade(ctx, actor, evaluationID, studentCode, in)
}

func (f *fakeGrading) ComputeAverage(ctx context.Context, studentCode int64, scope store.EvaluationScope) (service.AverageResult, error) {
	return f.computeAverage(ctx, studentCode, scope)
}

type fakeGradebooks struct {
	GradebookService
	close               func(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Gradebook, error)
	registerCertificate func(ctx context.Context, actor domain.Actor, p service.CertificateParams) (*domain.MedicalCertificate, error)
}

func (f *fakeGradebooks) RegisterCertificate(ctx context.Context, actor domain.Actor, p service.CertificateParams) (*domain.MedicalCertificate, error) {
	return f.registerCertificate(ctx, actor, p)
}

func (f *fakeGradebooks) Close(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Gradebook, error) {
	return f.close(ctx, actor, id)
}

type fakeDashboard struct {
	DashboardService
	recentActivity func(ctx context.Context, limit int) ([]*domain.ActivityEntry, error)
}

func (f *fakeDashboard) RecentActivity(ctx context.Context, limit int) ([]*domain.ActivityEntry, error) {
	return f.recentActivity(ctx, limit)
}

type testServer struct {
	registry    *fakeRegistry
	enrollments *fakeEnrollments
	grading     *fakeGrading
	gradebooks  *fakeGradebooks
	dashboard   *fakeDashboard
	router      chi.Router
	actor       domain.Actor
	token       string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log, _ := logger.NewTestLogger()

	ts := &testServer{
		registry:    &fakeRegistry{},
		enrollments: &fakeEnrollments{},
		grading:     &fakeGrading{},
		gradebooks:  &fakeGradebooks{},
		dashboard:   &fakeDashboard{},
		actor:       domain.Actor{UserID: uuid.New(), Username: "secretaria"},
	}
	ts.token = auth.GenerateTestToken(t, ts.actor)

	jwtService := auth.NewTestJWTService(auth.TestJWTSecret, time.Hour, nil)
	r := chi.NewRouter()
	RegisterRoutes(r, Handlers{
		Registry:   NewRegistryHandler(ts.registry, log),
		Classes:    NewClassHandler(ts.registry, ts.enrollments, log),
		Grading:    NewGradingHandler(ts.grading, log),
		Gradebooks: NewGradebookHandler(ts.gradebooks, log),
		Dashboard:  NewDashboardHandler(ts.dashboard, log),
	}, middleware.NewAuthMiddleware(jwtService).Authenticate)
	ts.router = r
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Error   string          `json:"error"`
	TraceID string          `json:"trace_id"`
	Details json.RawMessage `json:"details"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestEnroll(t *testing.T) {
	classID := uuid.New()

	t.Run("creates the enrollment", func(t *testing.T) {
		ts := newTestServer(t)
		ts.enrollments.enroll = func(_ context.Context, actor domain.Actor, code int64, id uuid.UUID) (*domain.Enrollment, error) {
			assert.Equal(t, ts.actor.UserID, actor.UserID)
			assert.Equal(t, int64(42), code)
			assert.Equal(t, classID, id)
			return &domain.Enrollment{ID: uuid.New(), StudentCode: code, ClassID: id, Active: true, EnrolledBy: actor.UserID}, nil
		}

		w := ts.do(t, http.MethodPost, "/classes/"+classID.String()+"/enrollments", EnrollRequest{StudentCode: 42})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var got domain.Enrollment
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.True(t, got.Active)
		assert.Equal(t, int64(42), got.StudentCode)
	})

	t.Run("full class is a conflict", func(t *testing.T) {
		ts := newTestServer(t)
		ts.enrollments.enroll = func(context.Context, domain.Actor, int64, uuid.UUID) (*domain.Enrollment, error) {
			return nil, fmt.Errorf("enroll: %w", domain.ErrCapacityExceeded)
		}

		w := ts.do(t, http.MethodPost, "/classes/"+classID.String()+"/enrollments", EnrollRequest{StudentCode: 42})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Class capacity exceeded", decodeError(t, w).Error)
	})

	t.Run("already enrolled is a conflict", func(t *testing.T) {
		ts := newTestServer(t)
		ts.enrollments.enroll = func(context.Context, domain.Actor, int64, uuid.UUID) (*domain.Enrollment, error) {
			return nil, domain.ErrAlreadyEnrolled
		}

		w := ts.do(t, http.MethodPost, "/classes/"+classID.String()+"/enrollments", EnrollRequest{StudentCode: 42})

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("malformed class id", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(t, http.MethodPost, "/classes/not-a-uuid/enrollments", EnrollRequest{StudentCode: 42})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing student code", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(t, http.MethodPost, "/classes/"+classID.String()+"/enrollments", `{}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "Invalid student_code: required field", body.Error)
		var fields []FieldError
		require.NoError(t, json.Unmarshal(body.Details, &fields))
		assert.Equal(t, []FieldError{{Field: "student_code", Rule: "required"}}, fields)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(t, http.MethodPost, "/classes/"+classID.String()+"/enrollments", `{"student_code":1,"seat":3}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid request format", decodeError(t, w).Error)
	})
}

func TestAuthenticationRequired(t *testing.T) {
	ts := newTestServer(t)
	ts.token = ""

	w := ts.do(t, http.MethodGet, "/dashboard/activity", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTransfer(t *testing.T) {
	ts := newTestServer(t)
	toClass := uuid.New()
	ts.enrollments.transfer = func(_ context.Context, _ domain.Actor, code int64, id uuid.UUID, reason string) (*domain.Enrollment, error) {
		assert.Equal(t, int64(7), code)
		assert.Equal(t, toClass, id)
		assert.Equal(t, "mudança de turno", reason)
		return &domain.Enrollment{ID: uuid.New(), StudentCode: code, ClassID: id, Active: true}, nil
	}

	w := ts.do(t, http.MethodPost, "/enrollments/transfer", TransferRequest{
		StudentCode: 7,
		ToClassID:   toClass.String(),
		Reason:      "mudança de turno",
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPost, "/enrollments/transfer", TransferRequest{StudentCode: 7, ToClassID: "turma-b"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid to_class_id: invalid ID", decodeError(t, w).Error)
}

func TestTransfer_SameClass(t *testing.T) {
	ts := newTestServer(t)
	ts.enrollments.transfer = func(context.Context, domain.Actor, int64, uuid.UUID, string) (*domain.Enrollment, error) {
		return nil, service.ErrSameClass
	}

	w := ts.do(t, http.MethodPost, "/enrollments/transfer", TransferRequest{
		StudentCode: 7,
		ToClassID:   uuid.NewString(),
	})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Equal(t, "Student is already enrolled in the target class", decodeError(t, w).Error)
}

func TestCreateStudent(t *testing.T) {
	ts := newTestServer(t)
	ts.registry.createStudent = func(_ context.Context, _ domain.Actor, student *domain.Student) error {
		assert.Equal(t, "Maria da Silva", student.Name)
		assert.Equal(t, domain.ArchiveCurrent, student.ArchiveStatus)
		assert.Equal(t, time.Date(2015, 3, 9, 0, 0, 0, 0, time.UTC), student.BirthDate)
		student.Code = 101
		return nil
	}

	w := ts.do(t, http.MethodPost, "/students", StudentRequest{
		Name:      "Maria da Silva",
		BirthDate: "2015-03-09",
		Sex:       "F",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var got domain.Student
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(101), got.Code)
}

func TestGetStudent(t *testing.T) {
	ts := newTestServer(t)
	ts.registry.getStudent = func(context.Context, int64) (*domain.Student, error) {
		return nil, store.NewStoreError("student", "get", "not found", store.ErrStudentNotFound)
	}

	w := ts.do(t, http.MethodGet, "/students/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Student not found", decodeError(t, w).Error)

	w = ts.do(t, http.MethodGet, "/students/-3", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateSubject_RejectsUnknownGradingMode(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/subjects", SubjectRequest{Name: "Matemática", GradingMode: "LETTER"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "Invalid grading_mode: invalid value", body.Error)
}

func TestRecordGrade(t *testing.T) {
	evaluationID := uuid.New()

	t.Run("records a score", func(t *testing.T) {
		ts := newTestServer(t)
		ts.grading.recordGrade = func(_ context.Context, _ domain.Actor, id uuid.UUID, code int64, in domain.GradeInput) (*domain.Grade, error) {
			assert.Equal(t, evaluationID, id)
			assert.Equal(t, int64(5), code)
			require.NotNil(t, in.Score)
			assert.InDelta(t, 8.5, *in.Score, 0.0001)
			return &domain.Grade{ID: uuid.New(), EvaluationID: id, StudentCode: code, Score: in.Score}, nil
		}

		w := ts.do(t, http.MethodPost, "/evaluations/"+evaluationID.String()+"/grades", `{"student_code":5,"score":8.5}`)

		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("closed gradebook is a conflict", func(t *testing.T) {
		ts := newTestServer(t)
		ts.grading.recordGrade = func(context.Context, domain.Actor, uuid.UUID, int64, domain.GradeInput) (*domain.Grade, error) {
			return nil, domain.ErrGradebookClosed
		}

		w := ts.do(t, http.MethodPost, "/evaluations/"+evaluationID.String()+"/grades", `{"student_code":5,"absent":true}`)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("score and absence together", func(t *testing.T) {
		ts := newTestServer(t)
		ts.grading.recordGrade = func(context.Context, domain.Actor, uuid.UUID, int64, domain.GradeInput) (*domain.Grade, error) {
			return nil, domain.ErrConflictingGradeInput
		}

		w := ts.do(t, http.MethodPost, "/evaluations/"+evaluationID.String()+"/grades", `{"student_code":5,"score":7,"absent":true}`)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("archived student is a conflict", func(t *testing.T) {
		ts := newTestServer(t)
		ts.grading.recordGrade = func(context.Context, domain.Actor, uuid.UUID, int64, domain.GradeInput) (*domain.Grade, error) {
			return nil, fmt.Errorf("%w: student 5", domain.ErrStudentArchived)
		}

		w := ts.do(t, http.MethodPost, "/evaluations/"+evaluationID.String()+"/grades", `{"student_code":5,"score":7}`)

		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Student is archived", decodeError(t, w).Error)
	})
}

func TestRecordRecovery(t *testing.T) {
	classID, subjectID := uuid.New(), uuid.New()

	t.Run("records a score", func(t *testing.T) {
		ts := newTestServer(t)
		ts.grading.recordRecovery = func(_ context.Context, _ domain.Actor, p service.RecoveryParams) (*domain.Recovery, error) {
			assert.Equal(t, classID, p.ClassID)
			assert.Equal(t, subjectID, p.SubjectID)
			assert.Equal(t, int64(5), p.StudentCode)
			require.NotNil(t, p.Input.Score)
			assert.False(t, p.Input.DidNotOpt)
			return &domain.Recovery{ID: uuid.New(), ClassID: p.ClassID, SubjectID: p.SubjectID,
				StudentCode: p.StudentCode, Score: p.Input.Score}, nil
		}

		w := ts.do(t, http.MethodPost, "/recoveries", RecoveryRequest{
			ClassID:     classID.String(),
			SubjectID:   subjectID.String(),
			StudentCode: 5,
			Score:       func() *float64 { v := 6.5; return &v }(),
		})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("score and refusal together", func(t *testing.T) {
		ts := newTestServer(t)
		ts.grading.recordRecovery = func(context.Context, domain.Actor, service.RecoveryParams) (*domain.Recovery, error) {
			return nil, domain.ErrConflictingGradeInput
		}

		body := fmt.Sprintf(`{"class_id":%q,"subject_id":%q,"student_code":5,"score":7,"did_not_opt":true}`,
			classID, subjectID)
		w := ts.do(t, http.MethodPost, "/recoveries", body)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("class id must be a UUID", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(t, http.MethodPost, "/recoveries", RecoveryRequest{
			ClassID:     "5A",
			SubjectID:   subjectID.String(),
			StudentCode: 5,
			DidNotOpt:   true,
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid class_id: invalid ID", decodeError(t, w).Error)
	})
}

func TestRegisterCertificate(t *testing.T) {
	classID := uuid.New()

	t.Run("creates the certificate", func(t *testing.T) {
		ts := newTestServer(t)
		ts.gradebooks.registerCertificate = func(_ context.Context, actor domain.Actor, p service.CertificateParams) (*domain.MedicalCertificate, error) {
			assert.Equal(t, ts.actor.UserID, actor.UserID)
			assert.Equal(t, time.Date(2026, time.April, 6, 0, 0, 0, 0, time.UTC), p.IssuedOn)
			assert.Equal(t, 3, p.Days)
			return &domain.MedicalCertificate{ID: uuid.New(), StudentCode: p.StudentCode, ClassID: p.ClassID,
				IssuedOn: p.IssuedOn, Days: p.Days, Reason: p.Reason}, nil
		}

		w := ts.do(t, http.MethodPost, "/certificates", CertificateRequest{
			StudentCode: 5,
			ClassID:     classID.String(),
			IssuedOn:    "2026-04-06",
			Days:        3,
			Reason:      "Gripe",
		})
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("days are bounded", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(t, http.MethodPost, "/certificates", CertificateRequest{
			StudentCode: 5,
			ClassID:     classID.String(),
			IssuedOn:    "2026-04-06",
			Days:        400,
			Reason:      "Cirurgia",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid days: too large", decodeError(t, w).Error)
	})

	t.Run("closed gradebook is a conflict", func(t *testing.T) {
		ts := newTestServer(t)
		ts.gradebooks.registerCertificate = func(context.Context, domain.Actor, service.CertificateParams) (*domain.MedicalCertificate, error) {
			return nil, domain.ErrGradebookClosed
		}

		w := ts.do(t, http.MethodPost, "/certificates", CertificateRequest{
			StudentCode: 5,
			ClassID:     classID.String(),
			IssuedOn:    "2026-04-06",
			Days:        2,
			Reason:      "Gripe",
		})
		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Gradebook is closed", decodeError(t, w).Error)
	})
}

func TestAverage(t *testing.T) {
	ts := newTestServer(t)
	classID, subjectID := uuid.New(), uuid.New()
	ts.grading.computeAverage = func(_ context.Context, code int64, scope store.EvaluationScope) (service.AverageResult, error) {
		assert.Equal(t, int64(3), code)
		assert.Equal(t, classID, scope.ClassID)
		assert.Equal(t, subjectID, scope.SubjectID)
		assert.Nil(t, scope.DivisionID)
		return service.AverageResult{}, nil
	}

	w := ts.do(t, http.MethodGet, fmt.Sprintf("/reports/average?student_code=3&class_id=%s&subject_id=%s", classID, subjectID), nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"average":null,"weighted_average":null,"count":0}`, w.Body.String())

	w = ts.do(t, http.MethodGet, "/reports/average?student_code=3&class_id="+classID.String(), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCloseGradebook_PendingGrades(t *testing.T) {
	ts := newTestServer(t)
	gradebookID := uuid.New()
	items := make([]domain.PendingItem, 12)
	for i := range items {
		items[i] = domain.PendingItem{
			StudentCode:    int64(i + 1),
			StudentName:    fmt.Sprintf("Aluno %02d", i+1),
			EvaluationName: "Trabalho",
			Kind:           domain.PendingGradeMissing,
		}
	}
	ts.gradebooks.close = func(_ context.Context, _ domain.Actor, id uuid.UUID) (*domain.Gradebook, error) {
		assert.Equal(t, gradebookID, id)
		return nil, domain.NewPendingGradesError(items, 5)
	}

	w := ts.do(t, http.MethodPost, "/gradebooks/"+gradebookID.String()+"/close", nil)

	require.Equal(t, http.StatusConflict, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "Gradebook has 12 pending grade(s)", body.Error)
	var details PendingGradesDetails
	require.NoError(t, json.Unmarshal(body.Details, &details))
	assert.Equal(t, 12, details.Total)
	require.Len(t, details.Items, 12)
	assert.Equal(t, "Aluno 12", details.Items[11].StudentName)
}

func TestCloseGradebook_Succeeds(t *testing.T) {
	ts := newTestServer(t)
	ts.gradebooks.close = func(_ context.Context, actor domain.Actor, id uuid.UUID) (*domain.Gradebook, error) {
		now := time.Now().UTC()
		return &domain.Gradebook{ID: id, Status: domain.GradebookClosed, ClosedAt: &now, ClosedBy: &actor.UserID}, nil
	}

	w := ts.do(t, http.MethodPost, "/gradebooks/"+uuid.NewString()+"/close", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got domain.Gradebook
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, domain.GradebookClosed, got.Status)
	require.NotNil(t, got.ClosedBy)
	assert.Equal(t, ts.actor.UserID, *got.ClosedBy)
}

func TestDashboardActivity(t *testing.T) {
	ts := newTestServer(t)
	var gotLimit int
	ts.dashboard.recentActivity = func(_ context.Context, limit int) ([]*domain.ActivityEntry, error) {
		gotLimit = limit
		return nil, nil
	}

	w := ts.do(t, http.MethodGet, "/dashboard/activity", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, gotLimit)
	assert.JSONEq(t, `{"items":[],"count":0}`, w.Body.String())

	w = ts.do(t, http.MethodGet, "/dashboard/activity?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, gotLimit)

	w = ts.do(t, http.MethodGet, "/dashboard/activity?limit=muitos", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestErrorResponsesCarryNoInternals(t *testing.T) {
	ts := newTestServer(t)
	ts.dashboard.recentActivity = func(context.Context, int) ([]*domain.ActivityEntry, error) {
		return nil, service.NewServiceError("dashboard", "recent_activity", "query failed",
			fmt.Errorf("dial tcp 10.0.0.5:5432: password=hunter2"))
	}

	w := ts.do(t, http.MethodGet, "/dashboard/activity", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "hunter2")
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
	assert.True(t, strings.Contains(w.Body.String(), "An unexpected error occurred"))
}

func TestNewHandlersPanicOnNilDependencies(t *testing.T) {
	log := slog.Default()
	assert.Panics(t, func() { NewRegistryHandler(nil, log) })
	assert.Panics(t, func() { NewClassHandler(&fakeRegistry{}, nil, log) })
	assert.Panics(t, func() { NewGradingHandler(&fakeGrading{}, nil) })
	assert.Panics(t, func() { NewGradebookHandler(nil, log) })
	assert.Panics(t, func() { NewDashboardHandler(nil, log) })
}
