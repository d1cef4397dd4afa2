// Package config loads server and client settings from config.yaml and
// KANBAN_-prefixed environment variables, validating them before use.
package config
