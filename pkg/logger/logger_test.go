package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftdesk/config"
)

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := NewLogger(&config.LogConfig{Level: "debug", Format: format}, "shiftdesk")
		require.NoError(t, err, format)
		assert.NotNil(t, l)
	}
}

func TestNewLogger_BadLevel(t *testing.T) {
	_, err := NewLogger(&config.LogConfig{Level: "loud", Format: "json"}, "")
	assert.Error(t, err)
}
