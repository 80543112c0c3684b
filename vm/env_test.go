package vm

import (
	"testing"

	"github.com/bxvs888/robovm/object"
	"github.com/stretchr/testify/require"
)

func TestEnvPendingSlot(t *testing.T) {
	env := NewEnv(NewThread(1, 0x1000, 64))
	require.Nil(t, env.Pending())
	require.Nil(t, env.ClearPending())

	classes := object.Bootstrap()
	oom := object.NewInstance(classes.MustLookup(object.OutOfMemoryErrorClass))

	env.SetPending(oom)
	require.Same(t, oom, env.Pending())

	got := env.ClearPending()
	require.Same(t, oom, got)
	require.Nil(t, env.Pending())
	require.Nil(t, env.ClearPending())
}

func TestEnvEmergencySlot(t *testing.T) {
	env := NewEnv(NewThread(1, 0x1000, 64))
	require.Nil(t, env.Emergency())

	classes := object.Bootstrap()
	oom := object.NewInstance(classes.MustLookup(object.OutOfMemoryErrorClass))
	env.SetEmergency(oom)
	require.Same(t, oom, env.Emergency())

	// The emergency slot is independent of the pending slot.
	require.Nil(t, env.Pending())
}

func TestEnvManagedDepth(t *testing.T) {
	env := NewEnv(NewThread(1, 0x1000, 64))
	require.False(t, env.InManagedFrame())

	env.EnterManaged()
	require.True(t, env.InManagedFrame())

	// Nested managed entries via native callbacks.
	env.EnterManaged()
	env.LeaveManaged()
	require.True(t, env.InManagedFrame())

	env.LeaveManaged()
	require.False(t, env.InManagedFrame())

	// Unbalanced leaves do not go negative.
	env.LeaveManaged()
	require.False(t, env.InManagedFrame())
	env.EnterManaged()
	require.True(t, env.InManagedFrame())
}
