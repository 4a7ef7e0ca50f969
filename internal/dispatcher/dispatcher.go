// Package dispatcher implements the bus-to-state-machine routing layer:
// the trade-match and syncer-match tables that decide whether an inbound
// envelope creates a machine, routes to an existing one by key, or is
// ignored.
package dispatcher

import (
	"sync"

	"github.com/sirupsen/logrus"

	"farcasterd/internal/address"
	"farcasterd/internal/busproto"
	"farcasterd/internal/offer"
	"farcasterd/internal/syncerfsm"
	"farcasterd/internal/trade"
)

var log = logrus.WithField("component", "dispatcher")

// Dispatcher owns the trade and syncer machine collections. It is driven
// single-threaded by the orchestrator's message loop; the mutex here only
// guards against concurrent CLI-triggered reads (e.g. `ls`) racing the
// main loop.
type Dispatcher struct {
	mu         sync.Mutex
	trades     []*trade.Machine
	syncers    []*syncerfsm.Machine
	nextTaskID uint32
}

func New() *Dispatcher {
	return &Dispatcher{}
}

// Trades returns a snapshot of every live trade machine, in insertion
// order, for CLI listing and Hello fan-out.
func (d *Dispatcher) Trades() []*trade.Machine {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*trade.Machine, len(d.trades))
	copy(out, d.trades)
	return out
}

// Syncers returns a snapshot of every live syncer machine, in insertion
// order.
func (d *Dispatcher) Syncers() []*syncerfsm.Machine {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*syncerfsm.Machine, len(d.syncers))
	copy(out, d.syncers)
	return out
}

func (d *Dispatcher) addTrade(m *trade.Machine) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.trades = append(d.trades, m)
}

func (d *Dispatcher) removeTrade(target *trade.Machine) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, m := range d.trades {
		if m == target {
			d.trades = append(d.trades[:i], d.trades[i+1:]...)
			return
		}
	}
}

func (d *Dispatcher) addSyncer(m *syncerfsm.Machine) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.syncers = append(d.syncers, m)
}

func (d *Dispatcher) removeSyncer(target *syncerfsm.Machine) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, m := range d.syncers {
		if m == target {
			d.syncers = append(d.syncers[:i], d.syncers[i+1:]...)
			return
		}
	}
}

func (d *Dispatcher) allocTaskID() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextTaskID++
	return d.nextTaskID
}

// findByOpenOffer returns the trade machine whose OpenOffer() equals po.
func (d *Dispatcher) findByOpenOffer(po offer.PublicOffer) *trade.Machine {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, m := range d.trades {
		if open, ok := m.OpenOffer(); ok && open.Equal(po) {
			return m
		}
	}
	return nil
}

// findByConsumedOffer mirrors findByOpenOffer for ConsumedOffer().
func (d *Dispatcher) findByConsumedOffer(po offer.PublicOffer) *trade.Machine {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, m := range d.trades {
		if consumed, ok := m.ConsumedOffer(); ok && consumed.Equal(po) {
			return m
		}
	}
	return nil
}

func (d *Dispatcher) findBySwapID(id address.SwapID) *trade.Machine {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, m := range d.trades {
		if sid, ok := m.SwapID(); ok && sid == id {
			return m
		}
	}
	return nil
}

func (d *Dispatcher) findByPeerAddr(addr address.ServiceAddress) *trade.Machine {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, m := range d.trades {
		if m.PeerAddr == addr {
			return m
		}
	}
	return nil
}

func (d *Dispatcher) findSyncerByTaskID(id uint32) *syncerfsm.Machine {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, m := range d.syncers {
		if m.TaskID == id {
			return m
		}
	}
	return nil
}

// snapshotTrades/snapshotSyncers drain the respective collections into a
// local slice before Hello fan-out, so a machine transitioning (and this
// dispatcher mutating its own slice as a side effect, e.g. via Cleanup) does
// not corrupt an in-progress range.
func (d *Dispatcher) snapshotTrades() []*trade.Machine {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*trade.Machine, len(d.trades))
	copy(out, d.trades)
	return out
}

func (d *Dispatcher) snapshotSyncers() []*syncerfsm.Machine {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*syncerfsm.Machine, len(d.syncers))
	copy(out, d.syncers)
	return out
}

func replyErr(ctx trade.Context, env busproto.Envelope, err error) {
	if err == nil {
		return
	}
	if sendErr := ctx.Send(busproto.LaneRpc, env.Src, busproto.FromError(err)); sendErr != nil {
		log.WithError(sendErr).Debug("failed to report failure to client")
	}
}

func reply(ctx trade.Context, env busproto.Envelope, payload busproto.Payload) {
	if sendErr := ctx.Send(busproto.LaneRpc, env.Src, payload); sendErr != nil {
		log.WithError(sendErr).Debug("failed to reply to client")
	}
}
