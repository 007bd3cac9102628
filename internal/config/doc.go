// Package config loads and validates the server's yaml configuration and
// watches it for runtime threshold changes.
package config
