package handlers

import (
	"rentproof_backend/internal/services"
	"rentproof_backend/pkg/apperrors"
	"rentproof_backend/ws"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	*BaseHandler
	manager       *ws.WebSocketManager
	upgrader      *websocket.Upgrader
	rentalService services.RentalService
}

func NewWSHandler(base *BaseHandler, manager *ws.WebSocketManager, rentalService services.RentalService, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		BaseHandler:   base,
		manager:       manager,
		upgrader:      ws.NewUpgrader(allowedOrigins),
		rentalService: rentalService,
	}
}

func (h *WSHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.HandleWebSocket)
}

// HandleWebSocket подписывает сторону на смену статусов ее аренд.
// With ?rental_id= only that rental is pushed, and the caller must be a party to it.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	partyID, ok := h.GetAndAuthorizePartyID(c)
	if !ok {
		return
	}

	rentalID := c.Query("rental_id")
	if rentalID != "" {
		if _, err := uuid.Parse(rentalID); err != nil {
			apperrors.HandleError(c, apperrors.NewBadRequestError("rental_id must be a UUID"))
			return
		}
		if _, err := h.rentalService.GetRental(c.Request.Context(), h.GetDB(c), partyID, rentalID); err != nil {
			h.HandleServiceError(c, err)
			return
		}
	}

	ws.ServeWS(h.manager, h.upgrader, c.Writer, c.Request, partyID, rentalID)
}
