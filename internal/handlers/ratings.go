package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-service/internal/authz"
	"marketplace-service/internal/middleware"
	"marketplace-service/internal/models"
	"marketplace-service/internal/repositories"
	"marketplace-service/internal/telemetry"
)

// RatingHandler manages listing ratings.
type RatingHandler struct {
	ratingRepo  repositories.RatingRepository
	listingRepo repositories.ListingRepository
	messageRepo repositories.MessageRepository
	userRepo    repositories.UserRepository
	audit       *telemetry.AuditEmitter
}

// NewRatingHandler builds a RatingHandler.
func NewRatingHandler(
	ratingRepo repositories.RatingRepository,
	listingRepo repositories.ListingRepository,
	messageRepo repositories.MessageRepository,
	userRepo repositories.UserRepository,
	audit *telemetry.AuditEmitter,
) *RatingHandler {
	return &RatingHandler{
		ratingRepo:  ratingRepo,
		listingRepo: listingRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		audit:       audit,
	}
}

// ListForListing returns a listing's ratings with authors and the breakdown.
func (h *RatingHandler) ListForListing(c *gin.Context) {
	listingID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.listingRepo.FindByID(c.Request.Context(), listingID); err != nil {
		if errors.Is(err, repositories.ErrListingNotFound) {
			respondError(c, http.StatusNotFound, "listing not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to load ratings")
		return
	}

	ratings, breakdown, err := h.ratingRepo.ListForListing(c.Request.Context(), listingID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load ratings")
		return
	}

	ids := make([]int64, 0, len(ratings))
	for _, rating := range ratings {
		ids = append(ids, rating.UserID)
	}
	users, err := h.userRepo.FindByIDs(c.Request.Context(), ids)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load ratings")
		return
	}
	byID := make(map[int64]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for i := range ratings {
		if u, ok := byID[ratings[i].UserID]; ok {
			ratings[i].User = &u
		}
	}
	if ratings == nil {
		ratings = []models.Rating{}
	}

	respondOK(c, gin.H{"ratings": ratings, "breakdown": breakdown})
}

// Mine returns the acting user's rating on a listing, if any.
func (h *RatingHandler) Mine(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)
	listingID, ok := idParam(c, "listing_id")
	if !ok {
		return
	}

	rating, err := h.ratingRepo.FindByListingAndUser(c.Request.Context(), listingID, user.ID)
	if errors.Is(err, repositories.ErrRatingNotFound) {
		respondError(c, http.StatusNotFound, "rating not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load rating")
		return
	}
	respondOK(c, rating)
}

// Create adds a rating. The gate enforces no self-rating, contact before
// rating, and one rating per user per listing; the unique constraint backs
// the duplicate rule under concurrency.
func (h *RatingHandler) Create(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	var req struct {
		ListingID int64   `json:"listing_id" binding:"required"`
		Score     int     `json:"score" binding:"required,min=1,max=5"`
		Comment   *string `json:"comment" binding:"omitempty,max=1000"`
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
		respondError(c, http.StatusInternalServerError, "could not rate listing")
		return
	}

	hasContacted, err := h.messageRepo.HasContacted(c.Request.Context(), user.ID, listing.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not rate listing")
		return
	}

	alreadyRated := false
	if _, err := h.ratingRepo.FindByListingAndUser(c.Request.Context(), listing.ID, user.ID); err == nil {
		alreadyRated = true
	} else if !errors.Is(err, repositories.ErrRatingNotFound) {
		respondError(c, http.StatusInternalServerError, "could not rate listing")
		return
	}

	if d := authz.CanRate(user, listing, hasContacted, alreadyRated); !d.Allowed {
		status := http.StatusForbidden
		if d.Conflict {
			status = http.StatusConflict
		}
		respondError(c, status, d.Reason)
		return
	}

	rating, err := h.ratingRepo.Create(c.Request.Context(), models.Rating{
		ListingID: listing.ID,
		UserID:    user.ID,
		Score:     req.Score,
		Comment:   req.Comment,
	})
	if errors.Is(err, repositories.ErrDuplicateRating) {
		respondError(c, http.StatusConflict, authz.ReasonDuplicateRating)
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not rate listing")
		return
	}

	h.audit.Emit(c.Request.Context(), telemetry.EventRatingCreated, requestIDFromContext(c), user.ID,
		map[string]any{"rating_id": rating.ID, "listing_id": listing.ID})
	respondCreated(c, rating)
}

// Update edits the acting user's own rating.
func (h *RatingHandler) Update(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	rating, err := h.ratingRepo.FindByID(c.Request.Context(), id)
	if errors.Is(err, repositories.ErrRatingNotFound) {
		respondError(c, http.StatusNotFound, "rating not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load rating")
		return
	}

	if d := authz.CanMutateRating(user, rating); !d.Allowed {
		respondError(c, http.StatusForbidden, d.Reason)
		return
	}

	var req struct {
		Score   *int    `json:"score" binding:"omitempty,min=1,max=5"`
		Comment *string `json:"comment" binding:"omitempty,max=1000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Score == nil && req.Comment == nil {
		respondError(c, http.StatusBadRequest, "nothing to update")
		return
	}

	updated, err := h.ratingRepo.Update(c.Request.Context(), id, req.Score, req.Comment)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not update rating")
		return
	}
	respondOK(c, updated)
}

// Delete removes the acting user's own rating.
func (h *RatingHandler) Delete(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	rating, err := h.ratingRepo.FindByID(c.Request.Context(), id)
	if errors.Is(err, repositories.ErrRatingNotFound) {
		respondError(c, http.StatusNotFound, "rating not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load rating")
		return
	}

	if d := authz.CanMutateRating(user, rating); !d.Allowed {
		respondError(c, http.StatusForbidden, d.Reason)
		return
	}

	if err := h.ratingRepo.Delete(c.Request.Context(), id); err != nil {
		respondError(c, http.StatusInternalServerError, "could not delete rating")
		return
	}
	respondOK(c, gin.H{"deleted": true})
}
