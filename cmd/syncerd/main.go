// Command syncerd is the blockchain-watcher worker boundary stub: in a real
// deployment it would watch an Electrum/monero-wallet-rpc endpoint for
// confirmations and funding, kept behind this process's interface here.
// It answers the one ad hoc task the orchestrator actually drives through
// it end-to-end: SweepAddress -> SweepSuccess.
package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"farcasterd/internal/address"
	"farcasterd/internal/bus"
	"farcasterd/internal/busproto"
	"farcasterd/internal/workerutil"
)

func main() {
	fs := flag.NewFlagSet("syncerd", flag.ExitOnError)
	chain := fs.String("chain", "", "watched chain (Bitcoin|Monero)")
	network := fs.String("network", "", "watched network")
	f := workerutil.Parse(fs, os.Args[1:])

	log := logrus.WithFields(logrus.Fields{"component": "syncerd", "chain": *chain, "network": *network})
	self := address.Syncer(*chain, *network)

	ctl, err := bus.Dial(busproto.LaneCtl, f.CtlSocket)
	if err != nil {
		log.WithError(err).Fatal("dial ctl socket")
	}
	defer ctl.Close()

	sync, err := bus.Dial(busproto.LaneSync, f.SyncSocket)
	if err != nil {
		log.WithError(err).Fatal("dial sync socket")
	}
	defer sync.Close()

	if err := ctl.Send(busproto.Envelope{Lane: busproto.LaneCtl, Src: self, Dst: address.Orchestrator(), Payload: busproto.Hello{}}); err != nil {
		log.WithError(err).Fatal("send hello")
	}
	if err := sync.Send(busproto.Envelope{Lane: busproto.LaneSync, Src: self, Dst: address.Orchestrator(), Payload: busproto.Hello{}}); err != nil {
		log.WithError(err).Fatal("send hello on sync lane")
	}

	log.Info("syncerd ready")
	go workerutil.WatchTerminate(ctl, self, log)

	for env := range sync.Router.Register(self) {
		sweep, ok := env.Payload.(busproto.SweepAddress)
		if !ok {
			continue
		}
		reply := busproto.Envelope{
			Lane: busproto.LaneSync,
			Src:  self,
			Dst:  env.Src,
			Payload: busproto.SweepSuccess{
				TaskID: sweep.TaskID,
				TxIDs:  nil, // nothing to sweep: the actual chain client lives outside this tree
			},
		}
		if err := sync.Send(reply); err != nil {
			log.WithError(err).Warn("failed to reply to sweep request")
		}
	}
}
