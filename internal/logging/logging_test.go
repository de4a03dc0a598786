package logging

import (
	"bytes"
	"testing"

	"github.com/go-kit/kit/log/level"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)

	level.Debug(logger).Log("msg", "hidden")
	level.Info(logger).Log("msg", "shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "service=reservoir")
	assert.Contains(t, out, "ts=")
	assert.Contains(t, out, "level=info")
}

func TestNewVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, true)

	level.Debug(logger).Log("msg", "detail")
	assert.Contains(t, buf.String(), "msg=detail")
}

func TestWithBoot(t *testing.T) {
	var buf bytes.Buffer
	logger, boot := WithBoot(New(&buf, false))

	_, err := uuid.Parse(boot)
	require.NoError(t, err)

	level.Info(logger).Log("msg", "up")
	assert.Contains(t, buf.String(), "boot="+boot)
}
