// Command stored is the checkpoint-persistence worker boundary stub: the
// real daemon persists CheckpointEntry to disk so a restart can resume an
// in-flight swap; the storage format itself is out of scope here, kept
// behind this process's interface. This stub keeps entries in memory for
// the daemon's
// lifetime, which is sufficient to exercise the RestoreRequest/
// DeleteCheckpoint/ListCheckpointsRequest contract end-to-end.
package main

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"farcasterd/internal/address"
	"farcasterd/internal/bus"
	"farcasterd/internal/busproto"
	"farcasterd/internal/workerutil"
)

func main() {
	f := workerutil.ParseNoFlags(os.Args[1:])
	log := logrus.WithField("component", "stored")
	self := address.Store()

	ctl, err := bus.Dial(busproto.LaneCtl, f.CtlSocket)
	if err != nil {
		log.WithError(err).Fatal("dial ctl socket")
	}
	defer ctl.Close()

	if err := ctl.Send(busproto.Envelope{Lane: busproto.LaneCtl, Src: self, Dst: address.Orchestrator(), Payload: busproto.Hello{}}); err != nil {
		log.WithError(err).Fatal("send hello")
	}

	var mu sync.Mutex
	entries := make(map[address.SwapID]busproto.CheckpointEntry)

	log.Info("stored ready")
	for env := range ctl.Router.Register(self) {
		switch p := env.Payload.(type) {
		case busproto.Terminate:
			log.Info("terminated by orchestrator")
			return

		case busproto.RestoreCheckpoint:
			mu.Lock()
			entries[p.Entry.SwapID] = p.Entry
			mu.Unlock()

		case busproto.DeleteCheckpoint:
			mu.Lock()
			delete(entries, p.SwapID)
			mu.Unlock()

		case busproto.RestoreRequest:
			mu.Lock()
			entry, ok := entries[p.SwapID]
			mu.Unlock()
			if !ok {
				log.WithField("swap_id", p.SwapID).Debug("restore requested for unknown checkpoint")
				continue
			}
			if err := ctl.Send(busproto.Envelope{
				Lane: busproto.LaneCtl, Src: self, Dst: address.Orchestrator(),
				Payload: busproto.RestoreCheckpoint{Entry: entry},
			}); err != nil {
				log.WithError(err).Warn("failed to reply to restore request")
			}

		case busproto.ListCheckpointsRequest:
			mu.Lock()
			list := make([]busproto.CheckpointEntry, 0, len(entries))
			for _, e := range entries {
				list = append(list, e)
			}
			mu.Unlock()
			if err := ctl.Send(busproto.Envelope{
				Lane: busproto.LaneCtl, Src: self, Dst: address.Orchestrator(),
				Payload: busproto.ListCheckpointsResponse{Entries: list},
			}); err != nil {
				log.WithError(err).Warn("failed to reply to checkpoint list request")
			}
		}
	}
}
