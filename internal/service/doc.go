// Package service contains the application use cases for tasks and users.
// Services coordinate the stores defined in internal/store, own transaction
// boundaries, and translate store errors into service-level sentinels that
// the API layer maps to HTTP responses.
package service
