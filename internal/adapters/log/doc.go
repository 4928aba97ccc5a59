// Package log provides ports.Logger implementations: a zerolog adapter for
// the CLI and a no-op logger used as the library default.
package log
