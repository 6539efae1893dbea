package handlers

import (
	"net/http"

	"rentproof_backend/internal/models"
	"rentproof_backend/internal/services"
	"rentproof_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	*BaseHandler
	reviewService services.ReviewService
}

func NewReviewHandler(base *BaseHandler, reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler:   base,
		reviewService: reviewService,
	}
}

// RegisterRoutes: totals are readable without a token, the flow is not.
func (h *ReviewHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/goods/:goodId/review-totals", h.GetGoodTotals)
	public.GET("/parties/:partyId/review-totals", h.GetPartyTotals)

	rentals := protected.Group("/rentals/:rentalId")
	{
		rentals.POST("/review-flow", h.StartFlow)
		rentals.POST("/reviews", h.SubmitReview)
	}
}

// StartFlow вызывается, когда сторона закончила фотофиксацию возврата.
func (h *ReviewHandler) StartFlow(c *gin.Context) {
	partyID, ok := h.GetAndAuthorizePartyID(c)
	if !ok {
		return
	}
	rentalID, ok := h.UUIDParam(c, "rentalId")
	if !ok {
		return
	}

	var req dto.ReviewFlowRequest
	if c.Request.ContentLength > 0 && !h.BindAndValidate_JSON(c, &req) {
		return
	}

	decision, err := h.reviewService.StartFlow(c.Request.Context(), h.GetDB(c), partyID, rentalID, req.Party)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, decision)
}

func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	partyID, ok := h.GetAndAuthorizePartyID(c)
	if !ok {
		return
	}
	rentalID, ok := h.UUIDParam(c, "rentalId")
	if !ok {
		return
	}

	var req dto.SubmitReviewRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	outcome, err := h.reviewService.SubmitReview(c.Request.Context(), h.GetDB(c), rentalID, partyID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if outcome.AlreadyRecorded {
		status = http.StatusOK
	}
	c.JSON(status, outcome)
}

func (h *ReviewHandler) GetGoodTotals(c *gin.Context) {
	goodID, ok := h.UUIDParam(c, "goodId")
	if !ok {
		return
	}

	totals, err := h.reviewService.GetGoodTotals(c.Request.Context(), h.GetDB(c), goodID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, totals)
}

// GetPartyTotals - ?role=rated_as_owner|rated_as_renter
func (h *ReviewHandler) GetPartyTotals(c *gin.Context) {
	partyID, ok := h.UUIDParam(c, "partyId")
	if !ok {
		return
	}

	role := models.PartyRole(c.Query("role"))
	totals, err := h.reviewService.GetPartyTotals(c.Request.Context(), h.GetDB(c), partyID, role)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, totals)
}
