package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-service/internal/middleware"
	"marketplace-service/internal/models"
	"marketplace-service/internal/repositories"
)

// FavoriteHandler manages the user's bookmarked listings.
type FavoriteHandler struct {
	favoriteRepo repositories.FavoriteRepository
	listingRepo  repositories.ListingRepository
}

// NewFavoriteHandler builds a FavoriteHandler.
func NewFavoriteHandler(favoriteRepo repositories.FavoriteRepository, listingRepo repositories.ListingRepository) *FavoriteHandler {
	return &FavoriteHandler{favoriteRepo: favoriteRepo, listingRepo: listingRepo}
}

// List returns the acting user's favorites with their listings resolved.
func (h *FavoriteHandler) List(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	favorites, err := h.favoriteRepo.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load favorites")
		return
	}

	ids := make([]int64, 0, len(favorites))
	for _, fav := range favorites {
		ids = append(ids, fav.ListingID)
	}
	listings, err := h.listingRepo.FindByIDs(c.Request.Context(), ids)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load favorites")
		return
	}
	byID := make(map[int64]models.Listing, len(listings))
	for _, listing := range listings {
		byID[listing.ID] = listing
	}
	for i := range favorites {
		if listing, ok := byID[favorites[i].ListingID]; ok {
			favorites[i].Listing = &listing
		}
	}
	if favorites == nil {
		favorites = []models.Favorite{}
	}

	respondOK(c, favorites)
}

// Add bookmarks a listing. Adding the same listing twice is a conflict.
func (h *FavoriteHandler) Add(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	var req struct {
		ListingID int64 `json:"listing_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.listingRepo.FindByID(c.Request.Context(), req.ListingID); err != nil {
		if errors.Is(err, repositories.ErrListingNotFound) {
			respondError(c, http.StatusNotFound, "listing not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "could not add favorite")
		return
	}

	favorite, err := h.favoriteRepo.Add(c.Request.Context(), user.ID, req.ListingID)
	if errors.Is(err, repositories.ErrAlreadyFavorite) {
		respondError(c, http.StatusConflict, "listing already in favorites")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not add favorite")
		return
	}
	respondCreated(c, favorite)
}

// Remove drops a bookmark.
func (h *FavoriteHandler) Remove(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)
	listingID, ok := idParam(c, "listing_id")
	if !ok {
		return
	}

	err := h.favoriteRepo.Remove(c.Request.Context(), user.ID, listingID)
	if errors.Is(err, repositories.ErrFavoriteNotFound) {
		respondError(c, http.StatusNotFound, "favorite not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not remove favorite")
		return
	}
	respondOK(c, gin.H{"removed": true})
}
