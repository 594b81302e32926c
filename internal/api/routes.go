package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Registry   *RegistryHandler
	Classes    *ClassHandler
	Grading    *GradingHandler
	Gradebooks *GradebookHandler
	Dashboard  *DashboardHandler
}

// RegisterRoutes mounts every API route on r behind authenticate.
func RegisterRoutes(r chi.Router, h Handlers, authenticate func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Route("/students", func(r chi.Router) {
			r.Post("/", h.Registry.CreateStudent)
			r.Get("/", h.Registry.ListStudents)
			r.Get("/{code}", h.Registry.GetStudent)
			r.Put("/{code}", h.Registry.UpdateStudent)
			r.Delete("/{code}", h.Registry.DeleteStudent)
			r.Post("/{code}/archive", h.Registry.ArchiveStudent)
			r.Get("/{code}/enrollments", h.Classes.StudentEnrollments)
		})

		r.Route("/staff", func(r chi.Router) {
			r.Post("/", h.Registry.CreateStaff)
			r.Get("/", h.Registry.ListStaff)
			r.Get("/{code}", h.Registry.GetStaff)
			r.Put("/{code}", h.Registry.UpdateStaff)
		})

		r.Route("/classes", func(r chi.Router) {
			r.Post("/", h.Classes.CreateClass)
			r.Get("/", h.Classes.ListClasses)
			r.Get("/{id}", h.Classes.GetClass)
			r.Delete("/{id}", h.Classes.DeleteClass)
			r.Put("/{id}/capacity", h.Classes.UpdateCapacity)
			r.Get("/{id}/roster", h.Classes.Roster)
			r.Post("/{id}/enrollments", h.Classes.Enroll)
		})

		r.Route("/enrollments", func(r chi.Router) {
			r.Post("/transfer", h.Classes.Transfer)
			r.Post("/{id}/disenroll", h.Classes.Disenroll)
			r.Put("/{id}/position", h.Classes.SetPosition)
		})

		r.Post("/subjects", h.Registry.CreateSubject)
		r.Get("/subjects", h.Registry.ListSubjects)
		r.Post("/periods/{period}/divisions", h.Registry.CreateDivision)
		r.Get("/periods/{period}/divisions", h.Registry.ListDivisions)
		r.Post("/concepts", h.Registry.CreateConcept)
		r.Get("/concepts", h.Registry.ListConcepts)
		r.Post("/evaluation-types", h.Registry.CreateEvaluationType)
		r.Get("/evaluation-types", h.Registry.ListEvaluationTypes)

		r.Route("/evaluations", func(r chi.Router) {
			r.Post("/", h.Grading.CreateEvaluation)
			r.Get("/", h.Grading.ListEvaluations)
			r.Get("/{id}", h.Grading.GetEvaluation)
			r.Post("/{id}/grades", h.Grading.RecordGrade)
			r.Get("/{id}/grades", h.Grading.ListGrades)
		})

		r.Route("/gradebooks", func(r chi.Router) {
			r.Get("/", h.Gradebooks.Lookup)
			r.Get("/{id}", h.Gradebooks.Get)
			r.Post("/{id}/close", h.Gradebooks.Close)
			r.Post("/{id}/reopen", h.Gradebooks.Reopen)
			r.Get("/{id}/frequency", h.Gradebooks.Frequency)
		})

		r.Post("/lessons", h.Gradebooks.RegisterLesson)
		r.Post("/lessons/{id}/attendance", h.Gradebooks.RecordAttendance)
		r.Post("/certificates", h.Gradebooks.RegisterCertificate)
		r.Get("/certificates", h.Gradebooks.ListCertificates)
		r.Post("/recoveries", h.Grading.RecordRecovery)
		r.Get("/recoveries", h.Grading.GetRecovery)

		r.Get("/reports/average", h.Grading.Average)
		r.Get("/reports/attendance", h.Grading.Attendance)
		r.Get("/reports/students/{code}", h.Grading.StudentReport)

		r.Get("/dashboard/summary", h.Dashboard.Summary)
		r.Get("/dashboard/activity", h.Dashboard.Activity)
	})
}
