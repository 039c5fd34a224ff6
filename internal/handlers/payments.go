package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-service/internal/middleware"
	"marketplace-service/internal/models"
	"marketplace-service/internal/repositories"
	"marketplace-service/internal/telemetry"
)

// PaymentHandler records payments between users for listings.
type PaymentHandler struct {
	paymentRepo repositories.PaymentRepository
	listingRepo repositories.ListingRepository
	audit       *telemetry.AuditEmitter
}

// NewPaymentHandler builds a PaymentHandler.
func NewPaymentHandler(paymentRepo repositories.PaymentRepository, listingRepo repositories.ListingRepository, audit *telemetry.AuditEmitter) *PaymentHandler {
	return &PaymentHandler{paymentRepo: paymentRepo, listingRepo: listingRepo, audit: audit}
}

// Create records a payment from the acting user to a listing's owner.
func (h *PaymentHandler) Create(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	// Amount is a pointer so a zero-value payment still passes the
	// presence check. Free transactions are recorded like any other.
	var req struct {
		ListingID int64    `json:"listing_id" binding:"required"`
		Amount    *float64 `json:"amount" binding:"required,gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	listing, err := h.listingRepo.FindByID(c.Request.Context(), req.ListingID)
	if errors.Is(err, repositories.ErrListingNotFound) {
		respondError(c, http.StatusNotFound, "listing not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not record payment")
		return
	}
	if listing.OwnerID == user.ID {
		respondError(c, http.StatusBadRequest, "cannot pay for your own listing")
		return
	}

	payment, err := h.paymentRepo.Create(c.Request.Context(), models.Payment{
		PayerID:   user.ID,
		PayeeID:   listing.OwnerID,
		ListingID: listing.ID,
		Amount:    *req.Amount,
		Status:    models.PaymentCompleted,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not record payment")
		return
	}

	h.audit.Emit(c.Request.Context(), telemetry.EventPaymentCreated, requestIDFromContext(c), user.ID,
		map[string]any{"payment_id": payment.ID, "listing_id": listing.ID})
	respondCreated(c, payment)
}

// Made lists payments the acting user sent.
func (h *PaymentHandler) Made(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	payments, err := h.paymentRepo.ListByPayer(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load payments")
		return
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	respondOK(c, payments)
}

// Received lists payments the acting user received.
func (h *PaymentHandler) Received(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	payments, err := h.paymentRepo.ListByPayee(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load payments")
		return
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	respondOK(c, payments)
}
