package cli

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerFiltersByLevel(t *testing.T) {
	tests := []struct {
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{log.InfoLevel, func(l *log.Logger) { l.Info("laid out") }, true},
		{log.InfoLevel, func(l *log.Logger) { l.Debug("cache miss") }, false},
		{log.DebugLevel, func(l *log.Logger) { l.Debug("cache miss") }, true},
		{log.WarnLevel, func(l *log.Logger) { l.Info("laid out") }, false},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		tt.emit(newLogger(&buf, tt.level))
		if got := buf.Len() > 0; got != tt.want {
			t.Errorf("level %s: logged = %v, want %v (%q)", tt.level, got, tt.want, buf.String())
		}
	}
}

func TestNewLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("ready")

	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(buf.String()) {
		t.Errorf("line = %q, want an HH:MM:SS.ms prefix", buf.String())
	}
	if !strings.Contains(buf.String(), "ready") {
		t.Errorf("line = %q, want the message", buf.String())
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.DebugLevel))
	time.Sleep(10 * time.Millisecond)
	prog.done("Read 3 nodes")

	if !strings.Contains(buf.String(), "Read 3 nodes (") {
		t.Errorf("output = %q, want message with elapsed time", buf.String())
	}

	buf.Reset()
	newProgress(newLogger(&buf, log.InfoLevel)).done("quiet")
	if buf.Len() != 0 {
		t.Errorf("progress logged %q at info level, want nothing", buf.String())
	}
}
