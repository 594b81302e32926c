// Package api exposes the enrollment and gradebook services over HTTP.
//
// Handlers decode and validate JSON bodies, take the acting user from the
// request context (set by middleware.AuthMiddleware) and translate service
// errors to status codes in one place, HandleAPIError. Raw error text never
// reaches the client.
package api
