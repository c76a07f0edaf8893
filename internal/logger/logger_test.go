package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(func() { Configure("info", "json") })

	tests := []struct {
		level, format string
		wantLevel     logrus.Level
		wantText      bool
	}{
		{"debug", "json", logrus.DebugLevel, false},
		{"WARN", "text", logrus.WarnLevel, true},
		{"error", "", logrus.ErrorLevel, false},
		{"bogus", "bogus", logrus.InfoLevel, false},
	}

	for _, tt := range tests {
		Configure(tt.level, tt.format)
		assert.Equal(t, tt.wantLevel, Logger.GetLevel(), tt.level)
		_, isText := Logger.Formatter.(*logrus.TextFormatter)
		assert.Equal(t, tt.wantText, isText, tt.format)
	}
}
