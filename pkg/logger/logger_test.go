package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintfWritesDebugLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p := NewPrintf(log, "migrate")
	p.Printf("applied %d/%s\n", 1, "u init")

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, `msg="applied 1/u init"`)
	assert.Contains(t, out, "component=migrate")
	assert.False(t, p.Verbose())
	assert.True(t, p.WithVerbose(true).Verbose())
}

func TestPrintfNilLogger(t *testing.T) {
	t.Parallel()

	var p *Printf
	p.Printf("ignored")
	assert.False(t, p.Verbose())
	NewPrintf(nil, "x").Printf("ignored")
}
