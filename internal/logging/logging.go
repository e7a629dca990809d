// Package logging wraps zerolog with the same surface the teacher's
// pkg/logger exposed — level control, a boot banner, section headers — but
// backed by structured, leveled logging instead of ad hoc ANSI codes.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog.Logger with the banner/section helpers the rest of
// the codebase expects.
type Logger struct {
	zerolog.Logger
}

// New builds a console-rendered Logger writing to w at the given level.
// "debug", "info", "warn", "error" are recognized; anything else falls
// back to info.
func New(w io.Writer, level string) Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	l := zerolog.New(cw).With().Timestamp().Logger().Level(parseLevel(level))
	return Logger{Logger: l}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Section prints a boxed section header to stdout, mirroring pkg/logger's
// Section but without the ANSI escape soup.
func Section(title string) {
	border := strings.Repeat("=", 61)
	fmt.Printf("\n+%s+\n| %-57s |\n+%s+\n\n", border, title, border)
}

// Banner prints the application boot banner with a role and version,
// mirroring pkg/logger's Banner.
func Banner(role, version string) {
	fmt.Printf(`
+-------------------------------------------------------------+
|                        WHTS  %-6s                         |
|                      version %-8s                      |
+-------------------------------------------------------------+
`, role, version)
}

// Default is a process-wide logger for packages that do not carry their
// own logger reference (mirrors pkg/logger's package-level functions).
var Default = New(os.Stderr, "info")
