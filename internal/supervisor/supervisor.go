// Package supervisor implements worker process management: launching
// child processes with inherited bus socket paths, the
// spawning->registered lifecycle, the 100ms post-spawn crash-detection
// grace window, and single-instance/dedup policy.
package supervisor

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"farcasterd/internal/address"
	"farcasterd/internal/ferrors"
	"farcasterd/internal/registry"
)

var log = logrus.WithField("component", "supervisor")

// GraceWindow is the post-spawn window within which an immediate exit is
// reported synchronously as a launch failure.
const GraceWindow = 100 * time.Millisecond

// Kind names a spawnable worker binary.
type Kind string

const (
	KindKeyManager Kind = "keymanagerd"
	KindStore      Kind = "stored"
	KindGateway    Kind = "gatewayd"
	KindPeer       Kind = "peerd"
	KindSyncer     Kind = "syncerd"
	KindSwap       Kind = "swapd"
)

// ProcessHandle abstracts a running child process for testability.
type ProcessHandle interface {
	Wait() error
	Kill() error
	Pid() int
}

// Launcher starts a binary and returns a handle to it. The default
// implementation execs a real OS process; tests inject a fake.
type Launcher interface {
	Launch(binPath string, args []string) (ProcessHandle, error)
}

// Sockets carries the four lane paths and the auxiliary flags forwarded to
// every launched worker.
type Sockets struct {
	DataDir   string
	MsgSocket string
	CtlSocket string
	RpcSocket string
	SyncSocket string
	TorProxy  string
}

// Supervisor owns the launch policy and tracks live processes so it can
// notify the orchestrator when one exits unexpectedly.
type Supervisor struct {
	mu       sync.Mutex
	launcher Launcher
	binDir   string
	sockets  Sockets
	registry *registry.Registry
	running  map[address.ServiceAddress]ProcessHandle

	// onExit is called (from a background goroutine) when a previously
	// launched worker's process exits after the grace window, i.e. a
	// crash rather than a synchronous launch failure. The orchestrator
	// wires this to push an Abort SwapOutcome for a swap worker, or a
	// PeerdTerminated envelope for a peer worker.
	onExit func(addr address.ServiceAddress, err error)
}

func New(binDir string, sockets Sockets, reg *registry.Registry, launcher Launcher) *Supervisor {
	if launcher == nil {
		launcher = OSLauncher{}
	}
	return &Supervisor{
		launcher: launcher,
		binDir:   binDir,
		sockets:  sockets,
		registry: reg,
		running:  make(map[address.ServiceAddress]ProcessHandle),
	}
}

// OnExit registers the crash-notification callback.
func (s *Supervisor) OnExit(f func(addr address.ServiceAddress, err error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExit = f
}

func binaryName(kind Kind) string {
	name := string(kind)
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return name
}

// resolveBinary finds the worker binary relative to the currently running
// executable's directory.
func (s *Supervisor) resolveBinary(kind Kind) (string, error) {
	dir := s.binDir
	if dir == "" {
		exe, err := os.Executable()
		if err != nil {
			return "", ferrors.Wrap(ferrors.Transport, "resolve executable dir", err)
		}
		dir = filepath.Dir(exe)
	}
	path := filepath.Join(dir, binaryName(kind))
	if _, err := os.Stat(path); err != nil {
		return "", ferrors.Wrap(ferrors.Transport, fmt.Sprintf("worker binary %s missing", path), err)
	}
	return path, nil
}

func (s *Supervisor) baseArgs() []string {
	args := []string{}
	add := func(flag, val string) {
		if val != "" {
			args = append(args, flag, val)
		}
	}
	add("--data-dir", s.sockets.DataDir)
	add("--msg-socket", s.sockets.MsgSocket)
	add("--ctl-socket", s.sockets.CtlSocket)
	add("--rpc-socket", s.sockets.RpcSocket)
	add("--sync-socket", s.sockets.SyncSocket)
	add("--tor-proxy", s.sockets.TorProxy)
	return args
}

// Launch starts kind at addr with the given kind-specific flags appended
// after the common socket flags. It is a no-op returning nil if addr is
// already spawning or registered (idempotent single-instance/dedup
// enforcement: callers pass a fixed addr for singleton kinds, and the
// node-id/chain-network-keyed addr for Peer/Syncer, so address equality
// alone implements the dedup rule).
func (s *Supervisor) Launch(kind Kind, addr address.ServiceAddress, kindArgs []string) error {
	if s.registry.IsSpawning(addr) || s.registry.IsRegistered(addr) {
		log.WithField("addr", addr).Debug("launch: already spawning/registered, no-op")
		return nil
	}

	binPath, err := s.resolveBinary(kind)
	if err != nil {
		return err
	}
	args := append(s.baseArgs(), kindArgs...)

	handle, err := s.launcher.Launch(binPath, args)
	if err != nil {
		return ferrors.Wrap(ferrors.Transport, fmt.Sprintf("launch %s", kind), err)
	}

	s.registry.MarkSpawning(addr)

	exitCh := make(chan error, 1)
	go func() { exitCh <- handle.Wait() }()

	select {
	case exitErr := <-exitCh:
		s.registry.Remove(addr)
		return ferrors.Wrap(ferrors.Transport, fmt.Sprintf("%s exited immediately", kind), exitErr)
	case <-time.After(GraceWindow):
	}

	s.mu.Lock()
	s.running[addr] = handle
	onExit := s.onExit
	s.mu.Unlock()

	go func() {
		exitErr := <-exitCh
		s.mu.Lock()
		delete(s.running, addr)
		cb := s.onExit
		s.mu.Unlock()
		s.registry.Remove(addr)
		if cb == nil {
			cb = onExit
		}
		if cb != nil {
			cb(addr, exitErr)
		}
	}()

	return nil
}

// Terminate sends nothing itself (that's the bus's job via a Terminate
// envelope) but force-kills the OS process as a last resort, e.g. during
// node shutdown.
func (s *Supervisor) Terminate(addr address.ServiceAddress) error {
	s.mu.Lock()
	handle, ok := s.running[addr]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return handle.Kill()
}

// IsRunning reports whether addr has a live tracked process handle.
func (s *Supervisor) IsRunning(addr address.ServiceAddress) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.running[addr]
	return ok
}
