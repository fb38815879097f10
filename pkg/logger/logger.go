package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Printf adapts a slog.Logger to libraries that log through Printf, such as golang-migrate.
type Printf struct {
	log       *slog.Logger
	component string
	verbose   bool
}

// NewPrintf wraps log; lines are emitted at debug level tagged with component.
// A nil log discards everything.
func NewPrintf(log *slog.Logger, component string) *Printf {
	return &Printf{log: log, component: component}
}

// WithVerbose toggles the library's verbose output.
func (p *Printf) WithVerbose(v bool) *Printf {
	p.verbose = v
	return p
}

// Printf implements the Printf-style logger contract.
func (p *Printf) Printf(format string, v ...interface{}) {
	if p == nil || p.log == nil {
		return
	}
	msg := strings.TrimRight(fmt.Sprintf(format, v...), "\n")
	p.log.Log(context.Background(), slog.LevelDebug, msg, "component", p.component)
}

// Verbose reports whether verbose library output is wanted.
func (p *Printf) Verbose() bool {
	return p != nil && p.verbose
}
