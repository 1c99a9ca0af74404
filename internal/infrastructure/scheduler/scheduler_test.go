package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/infrastructure/scheduler"
)

func TestScheduler_EjecutaTarea(t *testing.T) {
	s := scheduler.New(zerolog.Nop(), nil)
	var runs atomic.Int32
	require.NoError(t, s.Add("retention", "@every 1s", time.Second, func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		runs.Add(1)
		return nil
	}))

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestScheduler_ErrorDeTarea_NoDetieneCron(t *testing.T) {
	s := scheduler.New(zerolog.Nop(), time.UTC)
	var runs atomic.Int32
	require.NoError(t, s.Add("falla", "@every 1s", 0, func(context.Context) error {
		runs.Add(1)
		return errors.New("db caída")
	}))

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 4*time.Second, 50*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_ExpresionInvalida_RetornaError(t *testing.T) {
	s := scheduler.New(zerolog.Nop(), nil)
	err := s.Add("mala", "cada lunes", time.Second, func(context.Context) error { return nil })
	assert.Error(t, err)
}
