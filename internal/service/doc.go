// Package service holds the use cases of the school: enrollment, the
// registries, grading, the electronic gradebook and the dashboard.
//
// Services receive their stores through constructor injection (Stores) and
// run every mutation inside one transaction with store.RunInTransaction.
// Each mutating method takes an explicit domain.Actor that stamps audit
// fields and the activity log.
//
// Errors follow one rule: domain and store sentinels are returned as they
// are, so callers match them with errors.Is, while unexpected storage
// failures are wrapped in *ServiceError.
package service
