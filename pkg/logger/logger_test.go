package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInitLogger(t *testing.T) {
	t.Setenv("LOG_FORMAT", "")

	tests := []struct {
		name      string
		level     string
		dev       bool
		wantLevel logrus.Level
		wantJSON  bool
	}{
		{"explicit level", "warn", false, logrus.WarnLevel, true},
		{"development default", "", true, logrus.DebugLevel, false},
		{"production default", "", false, logrus.InfoLevel, true},
		{"invalid level", "loud", true, logrus.InfoLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", "")
			log := InitLogger(tt.level, tt.dev)

			assert.Equal(t, tt.wantLevel, log.GetLevel())
			_, isJSON := log.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.wantJSON, isJSON)
			assert.Same(t, log, GetLogger())
		})
	}
}

func TestContextHelpers(t *testing.T) {
	InitLogger("info", false)

	entry := WithMatch("s1", 3, "Arsenal", "Chelsea")
	assert.Equal(t, "s1", entry.Data["season"])
	assert.Equal(t, 3, entry.Data["round"])
	assert.Equal(t, "Chelsea", entry.Data["away"])

	entry = WithClub("", "Arsenal")
	assert.Equal(t, "Arsenal", entry.Data["club"])
	_, ok := entry.Data["season"]
	assert.False(t, ok)

	assert.Equal(t, "s2", WithSeason("s2").Data["season"])
}
