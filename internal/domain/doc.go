// Package domain contains the core business entities of the board: tasks,
// their status pipeline, merge-patch updates, and the users listed alongside
// them. It has no knowledge of storage or transport.
package domain
