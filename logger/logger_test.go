package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/teranos/interopgen/errors"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
	}{
		{name: "JSON output mode", jsonOutput: true},
		{name: "Console output mode", jsonOutput: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Logger = nil
			JSONOutput = false

			require.NoError(t, Initialize(tt.jsonOutput, VerbosityInfo))
			require.NotNil(t, Logger)
			assert.Equal(t, tt.jsonOutput, JSONOutput)

			Cleanup()
		})
	}
}

func TestNewConsoleRespectsVerbosity(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, false, VerbosityUser)
	require.NoError(t, err)

	l.Infow("hidden", "section", "Interop.Structs")
	l.Warnw("shown", "override", "lrtc_x_t.y")
	require.NoError(t, l.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "lrtc_x_t.y")
}

func TestNewJSONWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, true, VerbosityInfo)
	require.NoError(t, err)

	l.Debugw("hidden")
	l.Infow("Wrote generated file", FieldPath, "Interop.Structs.g.cs")
	require.NoError(t, l.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Wrote generated file", entry["msg"])
	assert.Equal(t, "Interop.Structs.g.cs", entry[FieldPath])
}

func TestErrorFields(t *testing.T) {
	err := errors.WithHint(errors.Reference("handles.handles[0].release", "release function %s is not declared", "x"),
		"declare it")
	fields := ErrorFields(err)
	assert.Equal(t, []interface{}{
		FieldError, err,
		FieldKind, "reference",
		FieldPath, "handles.handles[0].release",
		FieldHint, "declare it",
	}, fields)

	plain := errors.New("disk full")
	assert.Equal(t, []interface{}{FieldError, plain}, ErrorFields(plain))
}

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zapcore.Level
		name      string
	}{
		{-1, zapcore.WarnLevel, "User"},
		{VerbosityUser, zapcore.WarnLevel, "User"},
		{VerbosityInfo, zapcore.InfoLevel, "Info (-v)"},
		{VerbosityDebug, zapcore.DebugLevel, "Debug (-vv)"},
		{7, zapcore.DebugLevel, "Debug (-vv)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, VerbosityToLevel(tt.verbosity))
		assert.Equal(t, tt.name, LevelName(tt.verbosity))
	}
}
