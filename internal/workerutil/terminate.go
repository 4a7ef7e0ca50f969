package workerutil

import (
	"os"

	"github.com/sirupsen/logrus"

	"farcasterd/internal/address"
	"farcasterd/internal/bus"
	"farcasterd/internal/busproto"
)

// WatchTerminate registers self on link's Router and exits the process as
// soon as a Terminate envelope arrives, the only cancellation primitive the
// orchestrator has. Runs in its own goroutine.
func WatchTerminate(link *bus.WorkerLink, self address.ServiceAddress, log *logrus.Entry) {
	for env := range link.Router.Register(self) {
		if _, ok := env.Payload.(busproto.Terminate); ok {
			log.Info("terminated by orchestrator")
			os.Exit(0)
		}
	}
}
