package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/fairline/fairline/internal/hub"
)

// WSHandler upgrades connections and hands them to the hub.
type WSHandler struct {
	hub      *hub.Hub
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewWSHandler creates the websocket handler. Origin checks are delegated to
// the CORS layer.
func NewWSHandler(h *hub.Hub, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// Serve handles GET /ws?sports=a,b with an optional initial sport filter.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(conn, h.hub, splitParam(r.URL.Query().Get("sports")))
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
