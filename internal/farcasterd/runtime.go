// Package farcasterd implements the Runtime: the aggregating orchestrator
// that wires the registry, progress stream, supervisor, bus and dispatcher
// together and answers the cross-machine queries the registry deliberately
// does not own: whether any running swap still references a given peer or
// syncer address.
package farcasterd

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"farcasterd/internal/address"
	"farcasterd/internal/busproto"
	"farcasterd/internal/config"
	"farcasterd/internal/dispatcher"
	"farcasterd/internal/funding"
	"farcasterd/internal/offer"
	"farcasterd/internal/progress"
	"farcasterd/internal/registry"
	"farcasterd/internal/supervisor"
	"farcasterd/internal/trade"

	"farcasterd/internal/bus"
)

var log = logrus.WithField("component", "farcasterd")

// Runtime owns every piece of shared orchestrator state and implements
// trade.Context (and, by method-set superset, syncerfsm.Context).
type Runtime struct {
	cfg *config.Config

	reg  *registry.Registry
	prog *progress.Stream
	sup  *supervisor.Supervisor
	disp *dispatcher.Dispatcher

	funder *funding.Funder

	router  *bus.Router
	inbox   <-chan busproto.Envelope
	sockets supervisor.Sockets
	listens []*bus.Listener

	startedAt time.Time

	mu                    sync.Mutex
	pendingCheckpointList []address.ServiceAddress
	pendingRestore        map[address.SwapID]address.ServiceAddress
}

// New builds a Runtime from cfg but does not yet bind sockets or spawn
// workers; call Boot for that.
func New(cfg *config.Config) (*Runtime, error) {
	funder, err := funding.New(cfg.FundingConfig())
	if err != nil {
		return nil, err
	}

	reg := registry.New()
	sockets := supervisor.Sockets{
		DataDir:    cfg.Network.DataDir,
		MsgSocket:  filepath.Join(cfg.Network.DataDir, cfg.Network.MsgSocket),
		CtlSocket:  filepath.Join(cfg.Network.DataDir, cfg.Network.CtlSocket),
		RpcSocket:  filepath.Join(cfg.Network.DataDir, cfg.Network.RpcSocket),
		SyncSocket: filepath.Join(cfg.Network.DataDir, cfg.Network.SyncSocket),
		TorProxy:   cfg.Network.TorProxy,
	}

	rt := &Runtime{
		cfg:            cfg,
		reg:            reg,
		prog:           progress.New(),
		disp:           dispatcher.New(),
		funder:         funder,
		router:         bus.NewRouter(),
		sockets:        sockets,
		startedAt:      time.Now(),
		pendingRestore: make(map[address.SwapID]address.ServiceAddress),
	}
	rt.sup = supervisor.New(cfg.Network.BinDir, sockets, reg, nil)
	rt.sup.OnExit(rt.onWorkerExit)
	return rt, nil
}

// --- trade.Context / syncerfsm.Context ---

func (rt *Runtime) Send(lane busproto.Lane, dst address.ServiceAddress, payload busproto.Payload) error {
	return rt.router.Send(busproto.Envelope{Lane: lane, Src: address.Orchestrator(), Dst: dst, Payload: payload})
}

func (rt *Runtime) Launch(kind supervisor.Kind, addr address.ServiceAddress, kindArgs []string) error {
	return rt.sup.Launch(kind, addr, kindArgs)
}

func (rt *Runtime) Registry() *registry.Registry { return rt.reg }

func (rt *Runtime) Progress() *progress.Stream { return rt.prog }

func (rt *Runtime) KeyManagerReady() bool { return rt.reg.IsRegistered(address.KeyManager()) }

func (rt *Runtime) StoreReady() bool { return rt.reg.IsRegistered(address.Store()) }

func (rt *Runtime) AutoFund(chain offer.Chain, addr string, amount uint64) error {
	return rt.funder.AutoFund(chain, addr, amount)
}

func (rt *Runtime) PeerReconnectTimeout() time.Duration { return rt.cfg.PeerReconnectTimeout() }

// ReferencesRemain reports whether any live trade or syncer machine still
// needs addr, so Cleanup knows whether it can tear down a shared peer or
// syncer worker.
func (rt *Runtime) ReferencesRemain(addr address.ServiceAddress) bool {
	for _, m := range rt.disp.Trades() {
		if m.PeerAddr == addr {
			return true
		}
		if m.ReferencesSyncer(addr) {
			return true
		}
	}
	for _, m := range rt.disp.Syncers() {
		if m.SyncerAddr == addr {
			return true
		}
	}
	return false
}

func (rt *Runtime) onWorkerExit(addr address.ServiceAddress, err error) {
	log.WithFields(logrus.Fields{"addr": addr, "err": err}).Warn("worker exited")
	switch addr.Kind {
	case address.KindSwap:
		rt.router.Send(busproto.Envelope{
			Lane: busproto.LaneCtl, Src: addr, Dst: address.Orchestrator(),
			Payload: busproto.SwapOutcome{Outcome: offer.OutcomeAbort},
		})
	case address.KindPeer:
		rt.router.Send(busproto.Envelope{
			Lane: busproto.LaneCtl, Src: addr, Dst: address.Orchestrator(),
			Payload: busproto.PeerdTerminated{},
		})
	}
}

// Dispatch exposes the dispatcher for the message loop in loop.go. It first
// gives handleQuery a chance to answer read-only Rpc requests directly, and
// intercepts Store's checkpoint replies to relay them to the client that
// asked (see query.go's forwardCheckpointQuery/forwardRestoreRequest).
func (rt *Runtime) Dispatch(env busproto.Envelope) {
	if rt.handleQuery(env) {
		return
	}
	switch p := env.Payload.(type) {
	case busproto.ListCheckpointsResponse:
		rt.mu.Lock()
		var to address.ServiceAddress
		if len(rt.pendingCheckpointList) > 0 {
			to, rt.pendingCheckpointList = rt.pendingCheckpointList[0], rt.pendingCheckpointList[1:]
		}
		rt.mu.Unlock()
		if !to.IsZero() {
			rt.reply(to, p)
		}
		return
	case busproto.RestoreCheckpoint:
		rt.mu.Lock()
		to, ok := rt.pendingRestore[p.Entry.SwapID]
		delete(rt.pendingRestore, p.Entry.SwapID)
		rt.mu.Unlock()
		rt.disp.Dispatch(rt, env)
		if ok {
			rt.reply(to, busproto.Success{Details: "restore requested"})
		}
		return
	}
	rt.disp.Dispatch(rt, env)
}

// awaitingFunding exposes trade.PhaseAwaitingFunding for query.go without an
// import cycle (trade doesn't import farcasterd).
func awaitingFunding(m *trade.Machine) bool { return m.Phase == trade.PhaseAwaitingFunding }
