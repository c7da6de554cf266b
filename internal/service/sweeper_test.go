package service

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupScheduler_StartStop(t *testing.T) {
	f := newCapabilityFixture(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s := NewCleanupScheduler(f.svc, "@hourly", logger)
	require.NoError(t, s.Start())
	s.Stop()
}

func TestCleanupScheduler_BadSchedule(t *testing.T) {
	f := newCapabilityFixture(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s := NewCleanupScheduler(f.svc, "every full moon", logger)
	assert.Error(t, s.Start())
}
