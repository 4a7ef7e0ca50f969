package supervisor

import (
	"errors"
	"testing"
	"time"

	"farcasterd/internal/address"
	"farcasterd/internal/registry"
	"farcasterd/internal/testutil"
)

type fakeHandle struct {
	waitCh chan error
	killed bool
	pid    int
}

func newFakeHandle(pid int) *fakeHandle {
	return &fakeHandle{waitCh: make(chan error, 1), pid: pid}
}

func (h *fakeHandle) Wait() error { return <-h.waitCh }
func (h *fakeHandle) Kill() error { h.killed = true; h.waitCh <- nil; return nil }
func (h *fakeHandle) Pid() int    { return h.pid }

type fakeLauncher struct {
	handle  *fakeHandle
	launchErr error
	lastBin string
	lastArgs []string
}

func (f *fakeLauncher) Launch(binPath string, args []string) (ProcessHandle, error) {
	f.lastBin, f.lastArgs = binPath, args
	if f.launchErr != nil {
		return nil, f.launchErr
	}
	return f.handle, nil
}

func newTestSupervisor(t *testing.T, kind Kind, launcher Launcher) (*Supervisor, *testutil.Sandbox) {
	t.Helper()
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox: %v", err)
	}
	if err := sb.WriteFile(string(kind), []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Cleanup(func() { sb.Cleanup() })
	sup := New(sb.Root, Sockets{DataDir: sb.Root}, registry.New(), launcher)
	return sup, sb
}

func TestLaunchStartsProcessAndMarksRunningAfterGraceWindow(t *testing.T) {
	handle := newFakeHandle(42)
	launcher := &fakeLauncher{handle: handle}
	sup, _ := newTestSupervisor(t, KindPeer, launcher)
	addr := address.Peer("127.0.0.1:9376")

	if err := sup.Launch(KindPeer, addr, []string{"--listen", "127.0.0.1:9376"}); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if !sup.IsRunning(addr) {
		t.Fatalf("expected the worker to be tracked as running past the grace window")
	}
	if launcher.lastBin == "" {
		t.Fatalf("expected the launcher to be invoked with a resolved binary path")
	}

	handle.waitCh <- errors.New("crashed")
	deadline := time.After(2 * time.Second)
	for sup.IsRunning(addr) {
		select {
		case <-deadline:
			t.Fatalf("expected the worker to be removed from running after it exits")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func TestLaunchIsIdempotentForAlreadySpawningAddr(t *testing.T) {
	handle := newFakeHandle(1)
	launcher := &fakeLauncher{handle: handle}
	sup, _ := newTestSupervisor(t, KindPeer, launcher)
	addr := address.Peer("127.0.0.1:9376")
	sup.registry.MarkSpawning(addr)

	if err := sup.Launch(KindPeer, addr, nil); err != nil {
		t.Fatalf("expected a no-op success for an already-spawning address, got %v", err)
	}
	if launcher.lastBin != "" {
		t.Fatalf("expected the launcher to never be invoked for an already-spawning address")
	}
}

func TestLaunchReportsImmediateExitAsFailure(t *testing.T) {
	handle := newFakeHandle(2)
	handle.waitCh <- errors.New("immediate crash")
	launcher := &fakeLauncher{handle: handle}
	sup, _ := newTestSupervisor(t, KindSwap, launcher)
	addr := address.Swap(address.SwapID{1})

	err := sup.Launch(KindSwap, addr, nil)
	if err == nil {
		t.Fatalf("expected an error when the process exits within the grace window")
	}
	if sup.registry.IsSpawning(addr) || sup.registry.IsRegistered(addr) {
		t.Fatalf("expected the registry entry rolled back after an immediate-exit failure")
	}
}

func TestLaunchPropagatesLauncherError(t *testing.T) {
	launcher := &fakeLauncher{launchErr: errors.New("fork failed")}
	sup, _ := newTestSupervisor(t, KindStore, launcher)
	addr := address.Store()

	if err := sup.Launch(KindStore, addr, nil); err == nil {
		t.Fatalf("expected the launcher's error to propagate")
	}
}

func TestTerminateKillsTrackedProcess(t *testing.T) {
	handle := newFakeHandle(3)
	launcher := &fakeLauncher{handle: handle}
	sup, _ := newTestSupervisor(t, KindGateway, launcher)
	addr := address.Gateway()

	if err := sup.Launch(KindGateway, addr, nil); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if err := sup.Terminate(addr); err != nil {
		t.Fatalf("Terminate: %v", err)
	}
	if !handle.killed {
		t.Fatalf("expected Terminate to kill the tracked process")
	}
}

func TestTerminateUntrackedAddrIsANoop(t *testing.T) {
	sup, _ := newTestSupervisor(t, KindStore, &fakeLauncher{handle: newFakeHandle(0)})
	if err := sup.Terminate(address.Store()); err != nil {
		t.Fatalf("expected Terminate on an untracked address to be a no-op, got %v", err)
	}
}
