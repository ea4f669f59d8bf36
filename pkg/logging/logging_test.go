package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{in: "", want: LevelInfo},
		{in: "debug", want: LevelDebug},
		{in: "INFO", want: LevelInfo},
		{in: " warning ", want: LevelWarn},
		{in: "error", want: LevelError},
		{in: "verbose", want: LevelInfo, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCLIMode(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelInfo, &buf)

	Debug("adapter", "hidden %d", 1)
	Info("adapter", "probe result %v", true)
	Error("bluez", errors.New("boom"), "watch failed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "probe result true")
	assert.Contains(t, out, "subsystem=adapter")
	assert.Contains(t, out, "error=boom")
}

func TestTUIMode(t *testing.T) {
	ch := InitForTUI(LevelWarn)
	defer CloseTUIChannel()

	Info("session", "filtered")
	WarnErr("adapter", errors.New("no adapter"), "probe failed")

	select {
	case entry := <-ch:
		assert.Equal(t, LevelWarn, entry.Level)
		assert.Equal(t, "adapter", entry.Subsystem)
		assert.Equal(t, "probe failed", entry.Message)
		require.Error(t, entry.Err)
		assert.Equal(t, "no adapter", entry.Err.Error())
	default:
		t.Fatal("expected a log entry on the TUI channel")
	}

	select {
	case entry := <-ch:
		t.Fatalf("unexpected entry %+v", entry)
	default:
	}
}
