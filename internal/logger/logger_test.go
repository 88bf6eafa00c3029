package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func console(buf *bytes.Buffer, component string) *zeroLogger {
	return newZeroLogger(component, zerolog.ConsoleWriter{Out: buf, NoColor: true})
}

func TestZeroLogger_DebugGatedByEnv(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		wants bool
	}{
		{"set to 1", "1", true},
		{"any value", "true", true},
		{"unset", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(DebugEnv, tt.env)
			var buf bytes.Buffer

			console(&buf, "discovery").Debug("probing %s", "web1")

			if !tt.wants {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), "DBG")
			assert.Contains(t, buf.String(), "probing web1")
			assert.Contains(t, buf.String(), "component=discovery")
		})
	}
}

func TestZeroLogger_Levels(t *testing.T) {
	tests := []struct {
		name string
		log  func(Logger)
		tag  string
		msg  string
	}{
		{"info", func(l Logger) { l.Info("saved %d hosts", 3) }, "INF", "saved 3 hosts"},
		{"warn", func(l Logger) { l.Warn("slow host %s", "db1") }, "WRN", "slow host db1"},
		{"error", func(l Logger) { l.Error("rsync exited %d", 23) }, "ERR", "rsync exited 23"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(console(&buf, "rpio"))

			assert.Contains(t, buf.String(), tt.tag)
			assert.Contains(t, buf.String(), tt.msg)
		})
	}
}

func TestZeroLogger_NoComponent(t *testing.T) {
	var buf bytes.Buffer
	console(&buf, "").Info("plain")

	assert.Contains(t, buf.String(), "plain")
	assert.NotContains(t, buf.String(), "component=")
}

func TestNoop(t *testing.T) {
	l := Noop()
	assert.NotPanics(t, func() {
		l.Debug("d")
		l.Info("i")
		l.Warn("w")
		l.Error("e")
	})
}

func TestBufferLogger(t *testing.T) {
	t.Setenv(DebugEnv, "")
	l := NewBufferLogger()

	l.Debug("probe %s failed", "web1")
	l.Info("refreshed")
	l.Warn("no containers")
	l.Debug("probe %s failed", "db1")
	l.Error("boom")

	entries := l.Entries()
	require.Len(t, entries, 5)
	assert.Equal(t, Entry{Level: zerolog.InfoLevel, Message: "refreshed"}, entries[1])

	assert.Equal(t, []string{"probe web1 failed", "probe db1 failed"}, l.Messages(zerolog.DebugLevel))
	assert.Equal(t, []string{"boom"}, l.Messages(zerolog.ErrorLevel))
	assert.Empty(t, l.Messages(zerolog.TraceLevel))
}
