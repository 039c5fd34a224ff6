package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"marketplace-service/internal/authz"
	"marketplace-service/internal/middleware"
	"marketplace-service/internal/models"
	"marketplace-service/internal/repositories"
	"marketplace-service/internal/storage"
	"marketplace-service/internal/telemetry"
)

// ListingHandler manages listing discovery and owner CRUD.
type ListingHandler struct {
	listingRepo repositories.ListingRepository
	ratingRepo  repositories.RatingRepository
	userRepo    repositories.UserRepository
	images      *storage.Normalizer
	audit       *telemetry.AuditEmitter
}

// NewListingHandler builds a ListingHandler.
func NewListingHandler(
	listingRepo repositories.ListingRepository,
	ratingRepo repositories.RatingRepository,
	userRepo repositories.UserRepository,
	images *storage.Normalizer,
	audit *telemetry.AuditEmitter,
) *ListingHandler {
	return &ListingHandler{
		listingRepo: listingRepo,
		ratingRepo:  ratingRepo,
		userRepo:    userRepo,
		images:      images,
		audit:       audit,
	}
}

// List is the public discovery page. Only active listings are visible.
func (h *ListingHandler) List(c *gin.Context) {
	page := pageParam(c)
	active := models.ListingActive
	filter := repositories.ListingFilter{
		Search: c.Query("search"),
		Status: &active,
	}
	if raw := c.Query("min_price"); raw != "" {
		if v, ok := parsePrice(c, raw, "min_price"); ok {
			filter.MinPrice = &v
		} else {
			return
		}
	}
	if raw := c.Query("max_price"); raw != "" {
		if v, ok := parsePrice(c, raw, "max_price"); ok {
			filter.MaxPrice = &v
		} else {
			return
		}
	}

	perPage := models.PublicListingPageSize
	listings, total, err := h.listingRepo.ListPublic(c.Request.Context(), filter, perPage, (page-1)*perPage)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load listings")
		return
	}
	if listings == nil {
		listings = []models.ListingSummary{}
	}
	respondPage(c, listings, models.NewPagination(page, perPage, total))
}

// Show returns one listing with its owner and rating breakdown.
func (h *ListingHandler) Show(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	listing, err := h.listingRepo.FindByID(c.Request.Context(), id)
	if errors.Is(err, repositories.ErrListingNotFound) || (err == nil && listing.Status == models.ListingDeleted) {
		respondError(c, http.StatusNotFound, "listing not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load listing")
		return
	}

	if owner, err := h.userRepo.FindByID(c.Request.Context(), listing.OwnerID); err == nil {
		listing.Owner = &owner
	}

	_, breakdown, err := h.ratingRepo.ListForListing(c.Request.Context(), listing.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load listing")
		return
	}

	respondOK(c, gin.H{"listing": listing, "ratings": breakdown})
}

// Mine lists the acting user's own listings, any status.
func (h *ListingHandler) Mine(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	listings, err := h.listingRepo.ListByOwner(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load listings")
		return
	}
	if listings == nil {
		listings = []models.ListingSummary{}
	}
	respondOK(c, listings)
}

type listingRequest struct {
	Title       string   `json:"title" binding:"required,max=150"`
	Description string   `json:"description" binding:"required"`
	Price       *float64 `json:"price" binding:"required,gte=0"`
	Images      []string `json:"images"`
	Status      string   `json:"status" binding:"omitempty,liststatus"`
}

// Create publishes a listing. Incoming images are normalized into storage
// paths before anything is persisted.
func (h *ListingHandler) Create(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	normalized, err := h.images.Normalize(req.Images)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	status := req.Status
	if status == "" {
		status = models.ListingActive
	}

	listing, err := h.listingRepo.Create(c.Request.Context(), models.Listing{
		OwnerID:     user.ID,
		Title:       req.Title,
		Description: req.Description,
		Price:       *req.Price,
		Images:      normalized.Paths,
		Status:      status,
	})
	if err != nil {
		h.images.CleanupOrphans(normalized.Uploaded, nil)
		respondError(c, http.StatusInternalServerError, "could not create listing")
		return
	}

	h.audit.Emit(c.Request.Context(), telemetry.EventListingCreated, requestIDFromContext(c), user.ID,
		map[string]any{"listing_id": listing.ID})
	respondCreated(c, listing)
}

// Update replaces the mutable fields. Blobs dropped from the image list are
// cleaned up only after the row is safely rewritten, and only when this
// request actually uploaded something new.
func (h *ListingHandler) Update(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	listing, err := h.listingRepo.FindByID(c.Request.Context(), id)
	if errors.Is(err, repositories.ErrListingNotFound) {
		respondError(c, http.StatusNotFound, "listing not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load listing")
		return
	}

	if d := authz.CanMutateListing(user, listing); !d.Allowed {
		respondError(c, http.StatusForbidden, d.Reason)
		return
	}

	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	normalized, err := h.images.Normalize(req.Images)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	previous := append([]string(nil), listing.Images...)

	listing.Title = req.Title
	listing.Description = req.Description
	listing.Price = *req.Price
	listing.Images = normalized.Paths
	if req.Status != "" {
		listing.Status = req.Status
	}

	updated, err := h.listingRepo.Update(c.Request.Context(), listing)
	if err != nil {
		h.images.CleanupOrphans(normalized.Uploaded, nil)
		respondError(c, http.StatusInternalServerError, "could not update listing")
		return
	}

	if len(normalized.Uploaded) > 0 {
		h.images.CleanupOrphans(previous, normalized.Paths)
	}

	respondOK(c, updated)
}

// Delete removes a listing and its stored images.
func (h *ListingHandler) Delete(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	listing, err := h.listingRepo.FindByID(c.Request.Context(), id)
	if errors.Is(err, repositories.ErrListingNotFound) {
		respondError(c, http.StatusNotFound, "listing not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load listing")
		return
	}

	if d := authz.CanMutateListing(user, listing); !d.Allowed {
		respondError(c, http.StatusForbidden, d.Reason)
		return
	}

	if err := h.listingRepo.Delete(c.Request.Context(), id); err != nil {
		respondError(c, http.StatusInternalServerError, "could not delete listing")
		return
	}

	h.images.CleanupOrphans(listing.Images, nil)
	h.audit.Emit(c.Request.Context(), telemetry.EventListingDeleted, requestIDFromContext(c), user.ID,
		map[string]any{"listing_id": id})
	respondOK(c, gin.H{"deleted": true})
}

func parsePrice(c *gin.Context, raw, name string) (float64, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		respondError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return v, true
}
