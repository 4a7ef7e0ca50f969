package walletrpc

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"farcasterd/internal/offer"
	"farcasterd/internal/progress"
	"farcasterd/internal/registry"
)

// Server is the REST counterpart to GatewayServer, mirroring
// walletserver/routes' one-router-per-resource layout, plus the websocket
// progress endpoint CLI `progress` reads from (the gRPC gateway has no
// progress method).
type Server struct {
	router *mux.Router
	reg    *registry.Registry
	prog   *progress.Stream
}

func NewServer(reg *registry.Registry, prog *progress.Stream) *Server {
	s := &Server{router: mux.NewRouter(), reg: reg, prog: prog}
	s.router.Use(loggingMiddleware)
	s.router.HandleFunc("/offers", s.handleListOffers).Methods(http.MethodGet)
	s.router.HandleFunc("/progress/{swap_id}", s.handleProgressWebsocket).Methods(http.MethodGet)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleListOffers(w http.ResponseWriter, r *http.Request) {
	var offers []offer.PublicOffer
	if tag, ok := selectorTag(r.URL.Query().Get("selector")); ok {
		offers = s.reg.OffersBySelector(tag)
	} else {
		for _, t := range []offer.StatusTag{offer.StatusOpen, offer.StatusInProgress, offer.StatusEnded} {
			offers = append(offers, s.reg.OffersBySelector(t)...)
		}
	}

	out := make([]map[string]interface{}, 0, len(offers))
	for _, po := range offers {
		out = append(out, offerFields(po))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
