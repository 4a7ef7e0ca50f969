package walletrpc

import (
	"encoding/hex"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"farcasterd/internal/address"
	"farcasterd/internal/progress"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Progress following is a local/loopback convenience surface, not a
	// public API; any origin is accepted the way the CLI itself would
	// dial without a browser in the loop.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsSink adapts a websocket connection to progress.Sink.
type wsSink struct{ conn *websocket.Conn }

func (s wsSink) Send(swap address.SwapID, ev progress.Event) error {
	return s.conn.WriteJSON(ev)
}

func (s *Server) handleProgressWebsocket(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["swap_id"]
	decoded, err := hex.DecodeString(raw)
	if err != nil || len(decoded) != 32 {
		http.Error(w, "malformed swap id", http.StatusBadRequest)
		return
	}
	var swapID address.SwapID
	copy(swapID[:], decoded)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Debug("websocket upgrade failed")
		return
	}
	defer conn.Close()

	client := address.NewClient()
	sink := wsSink{conn: conn}
	replay, err := s.prog.Subscribe(swapID, client, sink, false)
	if err != nil {
		conn.WriteJSON(progress.Event{Kind: progress.Failure, Info: err.Error()})
		return
	}
	for _, ev := range replay {
		if err := conn.WriteJSON(ev); err != nil {
			s.prog.Unsubscribe(swapID, client)
			return
		}
	}

	// Block until the client disconnects; Emit delivers further events
	// from the orchestrator's goroutine via sink.Send.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.prog.Unsubscribe(swapID, client)
			return
		}
	}
}
