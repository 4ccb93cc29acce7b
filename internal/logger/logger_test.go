package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitWithWriter_LevelAndServiceField(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "tapbot-test", false)

	Debug().Msg("hidden")
	Info().Str("telegram_id", "42").Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "service:tapbot-test")
	assert.Contains(t, out, "telegram_id:42")
}

func TestInitWithWriter_Debug(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "tapbot-test", true)

	Debug().Msg("now shown")

	assert.Contains(t, buf.String(), "now shown")
}
