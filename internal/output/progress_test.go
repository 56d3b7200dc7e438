package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpinnerNonTTY(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("Working")
	s.SetWriter(&buf)

	s.Start()
	s.Stop()

	// Non-TTY writers get the message once, no animation frames.
	assert.Equal(t, "Working...\n", buf.String())
}

func TestSpinnerStopWithMessage(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("Working")
	s.SetWriter(&buf)

	s.Start()
	s.StopWithMessage("Done.")

	assert.Contains(t, buf.String(), "Done.\n")
}

func TestSpinnerDoubleStartStop(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("Working")
	s.SetWriter(&buf)

	s.Start()
	s.Start()
	s.Stop()
	s.Stop()

	assert.Equal(t, "Working...\n", buf.String())
}
