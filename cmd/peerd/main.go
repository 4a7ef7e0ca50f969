// Command peerd is the peer-connection worker boundary stub: it holds one
// Msg-lane connection to a remote node's peerd and relays TakerCommit/offer
// traffic between them. The actual wire handshake and noise/multiaddr
// transport are out of scope here, kept behind this process's interface.
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
	fs := flag.NewFlagSet("peerd", flag.ExitOnError)
	listen := fs.String("listen", "", "node address this peerd binds/connects as")
	f := workerutil.Parse(fs, os.Args[1:])

	log := logrus.WithField("component", "peerd").WithField("listen", *listen)

	ctl, err := bus.Dial(busproto.LaneCtl, f.CtlSocket)
	if err != nil {
		log.WithError(err).Fatal("dial ctl socket")
	}
	defer ctl.Close()

	self := address.Peer(*listen)
	if err := ctl.Send(busproto.Envelope{
		Lane:    busproto.LaneCtl,
		Src:     self,
		Dst:     address.Orchestrator(),
		Payload: busproto.Hello{},
	}); err != nil {
		log.WithError(err).Fatal("send hello")
	}

	log.Info("peerd ready")
	workerutil.WatchTerminate(ctl, self, log)
}
