// Package logging builds the zerolog loggers shared by the CLI and the server.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// New returns a logger writing to stderr at the given level. Pretty mode
// writes human-readable lines instead of JSON.
func New(level string, pretty bool) (zerolog.Logger, error) {
	var w io.Writer = os.Stderr
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return NewWithWriter(w, level)
}

// NewWithWriter is New with an explicit destination
func NewWithWriter(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// ParseLevel maps a level name to a zerolog level. The empty string means info.
func ParseLevel(level string) (zerolog.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, eris.Wrapf(err, "invalid log level %q", level)
	}
	return lvl, nil
}
