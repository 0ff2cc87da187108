// internal/display/display_test.go
package display

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

// A row written at a sparse index must still reach the log.
func TestLogDisplay_FlushSparseRow(t *testing.T) {
	buf := captureLog(t)

	d := NewLogDisplay()
	d.WriteRow(5, "ONLY ROW")
	d.Flush()

	assert.Contains(t, buf.String(), "ONLY ROW")
}

func TestLogDisplay_ClearDropsRows(t *testing.T) {
	buf := captureLog(t)

	d := NewLogDisplay()
	d.WriteRow(0, "STALE")
	d.Clear()
	d.Flush()

	assert.NotContains(t, buf.String(), "STALE")
	assert.Equal(t, "", d.Row(0))
}
