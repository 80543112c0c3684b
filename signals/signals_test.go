package signals_test

import (
	"errors"
	"syscall"
	"testing"

	"github.com/bxvs888/robovm/object"
	"github.com/bxvs888/robovm/signals"
	"github.com/bxvs888/robovm/sigtest"
	"github.com/bxvs888/robovm/vm"
	"github.com/stretchr/testify/require"
)

const (
	testStackBase = uintptr(0x70000000)
	testGuardSize = uintptr(65536)
)

func TestInitRequiresSystem(t *testing.T) {
	r := signals.New(signals.WithContextReader(sigtest.StaticContext(0x1, 0x2)))

	err := r.Init()
	var ierr *signals.InitError
	require.ErrorAs(t, err, &ierr)
	require.Contains(t, err.Error(), "no system wired")
}

func TestInitMissingMetadata(t *testing.T) {
	// A class registry without the reserved field or the exception classes.
	classes := object.NewRegistry()
	obj := classes.Define(object.ObjectClass, nil)
	classes.Define(object.ThrowableClass, obj)

	r := signals.New(
		signals.WithSystem(&sigtest.System{}),
		signals.WithClasses(classes),
		signals.WithContextReader(sigtest.StaticContext(0x1, 0x2)),
	)

	err := r.Init()
	var ierr *signals.InitError
	require.ErrorAs(t, err, &ierr)
	require.Contains(t, err.Error(), object.NullPointerExceptionClass)
	require.Contains(t, err.Error(), object.StackOverflowErrorClass)
	require.Contains(t, err.Error(), object.StackStateField)
}

func TestInitIsOneTime(t *testing.T) {
	r := signals.New(
		signals.WithSystem(&sigtest.System{}),
		signals.WithContextReader(sigtest.StaticContext(0x1, 0x2)),
	)
	require.NoError(t, r.Init())

	err := r.Init()
	var ierr *signals.InitError
	require.ErrorAs(t, err, &ierr)
}

func TestInstallRequiresInit(t *testing.T) {
	threads := vm.NewThreadRegistry()
	r := signals.New(
		signals.WithSystem(&sigtest.System{}),
		signals.WithThreads(threads),
		signals.WithContextReader(sigtest.StaticContext(0x1, 0x2)),
	)

	env, err := threads.Attach(testStackBase, testGuardSize)
	require.NoError(t, err)
	defer threads.Detach()

	var serr *signals.SetupError
	require.ErrorAs(t, r.Install(env), &serr)
}

func TestInstallCapturesMask(t *testing.T) {
	sys := &sigtest.System{}
	original := vm.Sigmask(0).With(syscall.SIGUSR1).With(syscall.SIGPIPE)
	sys.SeedMask(original)

	threads := vm.NewThreadRegistry()
	r := signals.New(
		signals.WithSystem(sys),
		signals.WithThreads(threads),
		signals.WithContextReader(sigtest.StaticContext(0x1, 0x2)),
	)
	require.NoError(t, r.Init())

	env, err := threads.Attach(testStackBase, testGuardSize)
	require.NoError(t, err)
	defer threads.Detach()

	require.NoError(t, r.Install(env))
	require.Equal(t, sigtest.InstalledHandler, sys.Disposition(syscall.SIGSEGV))

	saved, ok := env.Thread().SavedMask()
	require.True(t, ok)
	require.Equal(t, original, saved)
}

func TestMaskRoundTrip(t *testing.T) {
	sys := &sigtest.System{}
	original := vm.Sigmask(0).With(syscall.SIGUSR2)
	sys.SeedMask(original)

	threads := vm.NewThreadRegistry()
	r := signals.New(
		signals.WithSystem(sys),
		signals.WithThreads(threads),
		signals.WithContextReader(sigtest.StaticContext(0x1, 0x2)),
	)
	require.NoError(t, r.Init())

	env, err := threads.Attach(testStackBase, testGuardSize)
	require.NoError(t, err)
	defer threads.Detach()
	require.NoError(t, r.Install(env))

	// Native code scrambles the thread mask; RestoreMask puts back the one
	// captured at install time.
	require.NoError(t, sys.SetMask(vm.Sigmask(0).With(syscall.SIGTERM)))
	require.NotEqual(t, original, sys.CurrentMask())

	require.NoError(t, r.RestoreMask(env))
	require.Equal(t, original, sys.CurrentMask())
}

func TestRestoreMaskWithoutInstall(t *testing.T) {
	threads := vm.NewThreadRegistry()
	r := signals.New(
		signals.WithSystem(&sigtest.System{}),
		signals.WithThreads(threads),
		signals.WithContextReader(sigtest.StaticContext(0x1, 0x2)),
	)
	require.NoError(t, r.Init())

	env, err := threads.Attach(testStackBase, testGuardSize)
	require.NoError(t, err)
	defer threads.Detach()

	require.Error(t, r.RestoreMask(env))
}

func TestInstallFailureLeavesNoState(t *testing.T) {
	denied := errors.New("denied")
	sys := &sigtest.System{
		FailInstall: map[syscall.Signal]error{
			syscall.SIGSEGV: denied,
			syscall.SIGBUS:  denied,
		},
	}
	threads := vm.NewThreadRegistry()
	r := signals.New(
		signals.WithSystem(sys),
		signals.WithThreads(threads),
		signals.WithContextReader(sigtest.StaticContext(0x1, 0x2)),
	)
	require.NoError(t, r.Init())

	env, err := threads.Attach(testStackBase, testGuardSize)
	require.NoError(t, err)
	defer threads.Detach()

	var serr *signals.SetupError
	require.ErrorAs(t, r.Install(env), &serr)
	require.ErrorIs(t, serr.Err, denied)

	_, ok := env.Thread().SavedMask()
	require.False(t, ok)
	require.Zero(t, sys.Disposition(syscall.SIGSEGV))
	require.Zero(t, sys.Disposition(syscall.SIGBUS))
}

func TestInstallMaskFailureRollsBack(t *testing.T) {
	sys := &sigtest.System{FailMask: errors.New("mask query refused")}
	threads := vm.NewThreadRegistry()
	r := signals.New(
		signals.WithSystem(sys),
		signals.WithThreads(threads),
		signals.WithContextReader(sigtest.StaticContext(0x1, 0x2)),
	)
	require.NoError(t, r.Init())

	env, err := threads.Attach(testStackBase, testGuardSize)
	require.NoError(t, err)
	defer threads.Detach()

	var serr *signals.SetupError
	require.ErrorAs(t, r.Install(env), &serr)
	require.Contains(t, serr.Error(), "mask query")

	// The handler that did go in was rolled back.
	require.Zero(t, sys.Disposition(syscall.SIGSEGV))
	_, ok := env.Thread().SavedMask()
	require.False(t, ok)
}

func TestTeardownKeepsDispositions(t *testing.T) {
	sys := &sigtest.System{}
	threads := vm.NewThreadRegistry()
	r := signals.New(
		signals.WithSystem(sys),
		signals.WithThreads(threads),
		signals.WithContextReader(sigtest.StaticContext(0x1, 0x2)),
	)
	require.NoError(t, r.Init())

	env, err := threads.Attach(testStackBase, testGuardSize)
	require.NoError(t, err)
	defer threads.Detach()
	require.NoError(t, r.Install(env))

	r.Teardown(env)
	require.Equal(t, sigtest.InstalledHandler, sys.Disposition(syscall.SIGSEGV))
}
