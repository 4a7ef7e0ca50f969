// Command keymanagerd is the wallet/key-derivation worker boundary stub:
// real per-swap key generation (Schnorr/adaptor signatures, view/spend key
// shares) is out of scope here, kept behind this process's interface. It
// answers each LaunchSwap with KeyShareReady for that swap id, the single
// reply the trade machine waits for in AwaitingKeys.
package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"farcasterd/internal/address"
	"farcasterd/internal/bus"
	"farcasterd/internal/busproto"
	"farcasterd/internal/workerutil"
)

func main() {
	f := workerutil.ParseNoFlags(os.Args[1:])
	log := logrus.WithField("component", "keymanagerd")
	self := address.KeyManager()

	ctl, err := bus.Dial(busproto.LaneCtl, f.CtlSocket)
	if err != nil {
		log.WithError(err).Fatal("dial ctl socket")
	}
	defer ctl.Close()

	if err := ctl.Send(busproto.Envelope{Lane: busproto.LaneCtl, Src: self, Dst: address.Orchestrator(), Payload: busproto.Hello{}}); err != nil {
		log.WithError(err).Fatal("send hello")
	}

	log.Info("keymanagerd ready")
	for env := range ctl.Router.Register(self) {
		if _, ok := env.Payload.(busproto.Terminate); ok {
			log.Info("terminated by orchestrator")
			return
		}
		launch, ok := env.Payload.(busproto.LaunchSwap)
		if !ok {
			continue
		}
		if err := ctl.Send(busproto.Envelope{
			Lane: busproto.LaneCtl, Src: self, Dst: address.Orchestrator(),
			Payload: busproto.KeyShareReady{SwapID: launch.SwapID},
		}); err != nil {
			log.WithError(err).Warn("failed to announce key share ready")
		}
	}
}
