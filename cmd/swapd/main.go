// Command swapd is the per-swap execution worker boundary stub: the real
// protocol (funding, adaptor-signature exchange, cancel/punish/refund path
// selection) is out of scope here, kept behind this process's interface.
// This stub drives just enough
// of the observable lifecycle for the orchestrator's state machine to
// exercise FundingInfo/FundingCompleted/SwapOutcome end-to-end: it asks for
// funding once launched, and declares success once funding lands.
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"farcasterd/internal/address"
	"farcasterd/internal/bus"
	"farcasterd/internal/busproto"
	"farcasterd/internal/offer"
	"farcasterd/internal/workerutil"
)

func main() {
	fs := flag.NewFlagSet("swapd", flag.ExitOnError)
	swapIDFlag := fs.String("swap-id", "", "swap id assigned by the orchestrator")
	restoreFlag := fs.String("restore", "", "swap id to resume from a checkpoint")
	f := workerutil.Parse(fs, os.Args[1:])

	raw := *swapIDFlag
	if raw == "" {
		raw = *restoreFlag
	}
	id, err := parseSwapID(raw)
	if err != nil {
		logrus.WithError(err).Fatal("missing or malformed --swap-id/--restore")
	}
	self := address.Swap(id)
	log := logrus.WithFields(logrus.Fields{"component": "swapd", "swap_id": self.SwapID})

	ctl, err := bus.Dial(busproto.LaneCtl, f.CtlSocket)
	if err != nil {
		log.WithError(err).Fatal("dial ctl socket")
	}
	defer ctl.Close()
	inbox := ctl.Router.Register(self)

	if err := ctl.Send(busproto.Envelope{Lane: busproto.LaneCtl, Src: self, Dst: address.Orchestrator(), Payload: busproto.Hello{}}); err != nil {
		log.WithError(err).Fatal("send hello")
	}

	log.Info("swapd ready")
	for env := range inbox {
		switch p := env.Payload.(type) {
		case busproto.Terminate:
			log.Info("terminated by orchestrator")
			return

		case busproto.LaunchSwap:
			fundingChain := p.PublicOffer.Offer.Arbitrating
			if p.IsMaker {
				fundingChain = p.PublicOffer.Offer.Accordant
			}
			if err := ctl.Send(busproto.Envelope{
				Lane: busproto.LaneCtl, Src: self, Dst: address.Orchestrator(),
				Payload: busproto.FundingInfo{Chain: fundingChain, Address: p.PublicOffer.PeerSocket, Amount: p.PublicOffer.Offer.ArbitratingAmount},
			}); err != nil {
				log.WithError(err).Warn("failed to report funding info")
			}

		case busproto.RestoreCheckpoint:
			// A genuine resume would re-derive in-flight protocol state
			// from p.Entry.State; the stub has none to re-derive.
			log.Debug("checkpoint restored")

		case busproto.FundingCompleted:
			if err := ctl.Send(busproto.Envelope{
				Lane: busproto.LaneCtl, Src: self, Dst: address.Orchestrator(),
				Payload: busproto.SwapOutcome{Outcome: offer.OutcomeBuy},
			}); err != nil {
				log.WithError(err).Warn("failed to report swap outcome")
			}
		}
	}
}

func parseSwapID(raw string) (address.SwapID, error) {
	var id address.SwapID
	decoded, err := hex.DecodeString(raw)
	if err != nil {
		return id, err
	}
	if len(decoded) != len(id) {
		return id, errors.New("swap id must be 32 bytes")
	}
	copy(id[:], decoded)
	return id, nil
}
