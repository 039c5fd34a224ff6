package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-service/internal/middleware"
	"marketplace-service/internal/models"
	"marketplace-service/internal/observability"
	"marketplace-service/internal/repositories"
	"marketplace-service/internal/telemetry"
)

// ChatHandler manages the user-facing messaging endpoints.
type ChatHandler struct {
	messageRepo repositories.MessageRepository
	userRepo    repositories.UserRepository
	listingRepo repositories.ListingRepository
	audit       *telemetry.AuditEmitter
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(
	messageRepo repositories.MessageRepository,
	userRepo repositories.UserRepository,
	listingRepo repositories.ListingRepository,
	audit *telemetry.AuditEmitter,
) *ChatHandler {
	return &ChatHandler{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		listingRepo: listingRepo,
		audit:       audit,
	}
}

// Conversations derives the acting user's conversation list from the raw
// message rows and resolves every counterpart in one batch.
func (h *ChatHandler) Conversations(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	conversations, err := h.messageRepo.ListConversations(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load conversations")
		return
	}

	ids := make([]int64, 0, len(conversations))
	for _, conv := range conversations {
		ids = append(ids, conv.CounterpartID)
	}

	users, err := h.userRepo.FindByIDs(c.Request.Context(), ids)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load counterparts")
		return
	}
	byID := make(map[int64]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	for i := range conversations {
		if u, ok := byID[conversations[i].CounterpartID]; ok {
			conversations[i].Counterpart = &u
		}
	}
	if conversations == nil {
		conversations = []models.ConversationSummary{}
	}

	respondOK(c, conversations)
}

// Transcript returns the full exchange between the acting user and the
// counterpart, oldest first.
func (h *ChatHandler) Transcript(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)
	counterpartID, ok := idParam(c, "user_id")
	if !ok {
		return
	}

	messages, err := h.messageRepo.Transcript(c.Request.Context(), user.ID, counterpartID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load messages")
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	respondOK(c, messages)
}

// Send stores a directed message. Contacting a listing's owner through
// here is what later satisfies the contact-before-rating rule.
func (h *ChatHandler) Send(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	var req struct {
		RecipientID int64  `json:"recipient_id" binding:"required"`
		ListingID   *int64 `json:"listing_id"`
		Body        string `json:"body" binding:"required,max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if req.RecipientID == user.ID {
		respondError(c, http.StatusBadRequest, "cannot message yourself")
		return
	}

	recipient, err := h.userRepo.FindByID(c.Request.Context(), req.RecipientID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		respondError(c, http.StatusNotFound, "recipient not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not send message")
		return
	}
	if !recipient.Active {
		respondError(c, http.StatusForbidden, "recipient account disabled")
		return
	}

	if req.ListingID != nil {
		if _, err := h.listingRepo.FindByID(c.Request.Context(), *req.ListingID); err != nil {
			if errors.Is(err, repositories.ErrListingNotFound) {
				respondError(c, http.StatusNotFound, "listing not found")
				return
			}
			respondError(c, http.StatusInternalServerError, "could not send message")
			return
		}
	}

	msg, err := h.messageRepo.Create(c.Request.Context(), user.ID, req.RecipientID, req.ListingID, req.Body)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not send message")
		return
	}

	observability.IncMessageSent()
	h.audit.Emit(c.Request.Context(), telemetry.EventMessageSent, requestIDFromContext(c), user.ID,
		map[string]any{"message_id": msg.ID, "recipient_id": req.RecipientID})
	respondCreated(c, msg)
}

// ContactedListings returns the listings the acting user has messaged
// about, each with the moment of first contact.
func (h *ChatHandler) ContactedListings(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	contacted, err := h.messageRepo.ContactedListingIDs(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load contacted listings")
		return
	}

	ids := make([]int64, 0, len(contacted))
	for _, entry := range contacted {
		ids = append(ids, entry.ListingID)
	}

	listings, err := h.listingRepo.FindByIDs(c.Request.Context(), ids)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load contacted listings")
		return
	}
	byID := make(map[int64]models.Listing, len(listings))
	for _, listing := range listings {
		byID[listing.ID] = listing
	}

	for i := range contacted {
		if listing, ok := byID[contacted[i].ListingID]; ok {
			contacted[i].Listing = &listing
		}
	}
	if contacted == nil {
		contacted = []models.ContactedListing{}
	}

	respondOK(c, contacted)
}
