package ws

import (
	"net/http"
	"net/url"

	"rentproof_backend/internal/logger"

	"github.com/gorilla/websocket"
)

// NewUpgrader принимает Origin из allowedOrigins ("*" - любой).
// Requests without Origin come from native apps and are accepted.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowed["*"] || allowed[origin] {
				return true
			}
			u, err := url.Parse(origin)
			return err == nil && u.Host == r.Host
		},
	}
}

// ServeWS апгрейдит соединение и регистрирует клиента. partyID must already be authenticated.
func ServeWS(manager *WebSocketManager, upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request, partyID, rentalID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logger.CtxWarn(r.Context(), "WebSocket upgrade error", "error", err.Error())
		return
	}

	client := &Client{
		PartyID:  partyID,
		RentalID: rentalID,
		Conn:     conn,
		Send:     make(chan OutgoingMessage, 64),
		Manager:  manager,
	}

	select {
	case manager.register <- client:
	case <-manager.done:
		conn.Close()
		return
	}
	logger.CtxInfo(r.Context(), "WebSocket client connected", "rental_filter", rentalID)

	go client.writePump()
	go client.readPump()
}
