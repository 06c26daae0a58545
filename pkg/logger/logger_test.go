package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		hasError bool
	}{
		{"debug", Debug, false},
		{"DEBUG", Debug, false},
		{"info", Info, false},
		{"warn", Warn, false},
		{"error", Error, false},
		{"fatal", Fatal, false},
		{"unknown", Info, true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			level, err := ParseLevel(test.input)
			if test.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, test.expected, level)
			}
		})
	}
}

func TestNew(t *testing.T) {
	log, err := New(&Config{Level: "debug", UseColors: false})
	require.NoError(t, err)
	assert.Equal(t, Debug, log.level)
	assert.False(t, log.UseColors)

	_, err = New(&Config{Level: "nope"})
	assert.Error(t, err)
}

func TestLogger_LevelFiltering(t *testing.T) {
	log := NewDefault()
	log.UseColors = false
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetLevel(Warn)

	log.Debug("debug message")
	log.Info("info message")
	log.Warn("warn message")
	log.Error("error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "WARN warn message")
	assert.Contains(t, out, "ERROR error message")
}

func TestLogger_Formatting(t *testing.T) {
	log := NewDefault()
	log.UseColors = false
	buf := &bytes.Buffer{}
	log.SetOutput(buf)

	log.Info("forwarding %s:%d", "localhost", 8080)
	assert.Contains(t, buf.String(), "forwarding localhost:8080")
}

func TestLogger_WithFields(t *testing.T) {
	log := NewDefault()
	log.UseColors = false
	buf := &bytes.Buffer{}
	log.SetOutput(buf)

	log.WithField("forward", "local *:80 -> 127.0.0.1:80").Warn("relay failed")

	out := buf.String()
	assert.Contains(t, out, "relay failed")
	assert.Contains(t, out, "forward=local *:80 -> 127.0.0.1:80")

	// The parent logger is untouched.
	buf.Reset()
	log.Warn("plain")
	assert.False(t, strings.Contains(buf.String(), "forward="))
}
