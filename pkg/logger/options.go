package logger

import (
	"io"
	"log/slog"
)

// Option tunes a Logger built by New.
type Option func(*config)

// WithDebug lowers the level to Debug; otherwise the logger stays at Info.
func WithDebug(debug bool) Option {
	return func(c *config) {
		if debug {
			c.level = slog.LevelDebug
		} else {
			c.level = slog.LevelInfo
		}
	}
}

// WithPretty switches to the charmbracelet handler for colorized terminal
// output. Meant for the CLI commands, not the server.
func WithPretty(pretty bool) Option {
	return func(c *config) {
		c.pretty = pretty
	}
}

// WithJSON emits structured JSON lines instead of text.
func WithJSON(json bool) Option {
	return func(c *config) {
		c.json = json
	}
}

// WithWriter redirects output to a single writer. Defaults to os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		c.writers = []io.Writer{w}
	}
}

// WithWriters fans output out to several writers at once.
func WithWriters(w ...io.Writer) Option {
	return func(c *config) {
		c.writers = w
	}
}

// WithSource annotates each record with its file:line origin.
func WithSource(source bool) Option {
	return func(c *config) {
		c.source = source
	}
}
