package handlers

import (
	"net/http"

	"rentproof_backend/internal/models"
	"rentproof_backend/internal/services"
	"rentproof_backend/internal/services/dto"
	"rentproof_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type RentalHandler struct {
	*BaseHandler
	rentalService services.RentalService
}

func NewRentalHandler(base *BaseHandler, rentalService services.RentalService) *RentalHandler {
	return &RentalHandler{
		BaseHandler:   base,
		rentalService: rentalService,
	}
}

// RegisterRoutes ожидает группу, уже закрытую AuthMiddleware.
func (h *RentalHandler) RegisterRoutes(r *gin.RouterGroup) {
	rentals := r.Group("/rentals")
	{
		rentals.POST("", h.CreateRental)
		rentals.GET("/:rentalId", h.GetRental)
		rentals.POST("/:rentalId/phases/:phase/complete", h.CompletePhase)
		rentals.GET("/:rentalId/status/wait", h.WaitForStatus)
	}
}

// CreateRental регистрирует аренду, согласованную сторонами. Only a party of the
// rental may register it.
func (h *RentalHandler) CreateRental(c *gin.Context) {
	partyID, ok := h.GetAndAuthorizePartyID(c)
	if !ok {
		return
	}

	var req dto.CreateRentalRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	if partyID != req.OwnerID && partyID != req.RenterID {
		apperrors.HandleError(c, apperrors.NewForbiddenError("Only the owner or the renter can register a rental"))
		return
	}

	rental, err := h.rentalService.CreateRental(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rental)
}

func (h *RentalHandler) GetRental(c *gin.Context) {
	partyID, ok := h.GetAndAuthorizePartyID(c)
	if !ok {
		return
	}
	rentalID, ok := h.UUIDParam(c, "rentalId")
	if !ok {
		return
	}

	rental, err := h.rentalService.GetRental(c.Request.Context(), h.GetDB(c), partyID, rentalID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rental)
}

func (h *RentalHandler) CompletePhase(c *gin.Context) {
	partyID, ok := h.GetAndAuthorizePartyID(c)
	if !ok {
		return
	}
	rentalID, ok := h.UUIDParam(c, "rentalId")
	if !ok {
		return
	}
	phase := models.Phase(c.Param("phase"))
	if !phase.Valid() {
		apperrors.HandleError(c, apperrors.ErrInvalidPhase)
		return
	}

	result, err := h.rentalService.CompletePhase(c.Request.Context(), h.GetDB(c), partyID, rentalID, phase)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// WaitForStatus - long-poll: отвечает при смене статуса или по таймауту.
func (h *RentalHandler) WaitForStatus(c *gin.Context) {
	partyID, ok := h.GetAndAuthorizePartyID(c)
	if !ok {
		return
	}
	rentalID, ok := h.UUIDParam(c, "rentalId")
	if !ok {
		return
	}

	var req dto.WaitStatusRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	resp, err := h.rentalService.WaitForStatus(
		c.Request.Context(), h.GetDB(c), partyID, rentalID, models.RentalStatus(req.Since), req.Timeout(),
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
