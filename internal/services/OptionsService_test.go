package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livenotes/internal/models"
	"livenotes/internal/testutil"
)

func TestOptionsService_DefaultsWhenAbsent(t *testing.T) {
	svc := NewOptionsService(testutil.NewMemoryBackend("mem"), &testutil.MockLogger{})
	require.NoError(t, svc.Load(context.Background()))
	assert.Equal(t, models.ExportOptions{}, svc.Get())
}

func TestOptionsService_LoadsStringOffset(t *testing.T) {
	backend := testutil.NewMemoryBackend("mem")
	backend.Data["vop"] = `{"reltime":true,"toffset":"30"}`
	svc := NewOptionsService(backend, &testutil.MockLogger{})

	require.NoError(t, svc.Load(context.Background()))
	assert.Equal(t, models.ExportOptions{UseRelativeTime: true, TimeOffsetSeconds: 30}, svc.Get())
}

func TestOptionsService_SetPersists(t *testing.T) {
	backend := testutil.NewMemoryBackend("mem")
	svc := NewOptionsService(backend, &testutil.MockLogger{})
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, models.ExportOptions{UseRelativeTime: true, TimeOffsetSeconds: -5}))
	assert.Equal(t, int64(-5), svc.Get().TimeOffsetSeconds)

	reloaded := NewOptionsService(backend, &testutil.MockLogger{})
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, svc.Get(), reloaded.Get())
}

func TestOptionsService_SetFailureKeepsPrevious(t *testing.T) {
	backend := testutil.NewMemoryBackend("mem")
	svc := NewOptionsService(backend, &testutil.MockLogger{})
	ctx := context.Background()
	require.NoError(t, svc.Set(ctx, models.ExportOptions{TimeOffsetSeconds: 10}))

	backend.FailSet = true
	assert.ErrorIs(t, svc.Set(ctx, models.ExportOptions{TimeOffsetSeconds: 99}), testutil.ErrInjected)
	assert.Equal(t, int64(10), svc.Get().TimeOffsetSeconds)
}

func TestOptionsService_MalformedBlob(t *testing.T) {
	backend := testutil.NewMemoryBackend("mem")
	backend.Data["vop"] = `{"toffset":"abc"}`
	svc := NewOptionsService(backend, &testutil.MockLogger{})

	var pe *models.ParseError
	err := svc.Load(context.Background())
	require.Error(t, err)
	assert.ErrorAs(t, err, &pe)
}
