// Package api handles incoming HTTP requests, request validation, and
// response formatting. It adapts the task and user services to the JSON
// envelope API mounted under /api.
package api
