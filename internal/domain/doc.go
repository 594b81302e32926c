// Package domain contains the school's core entities (students, staff,
// classes, enrollments, subjects, evaluations, grades, attendance and
// gradebooks) together with the rules that do not need storage: field
// validation, grade input exclusivity, averages, attendance percentages,
// roster ordering, subject code derivation and the gradebook state machine.
package domain
