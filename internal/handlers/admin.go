package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace-service/internal/authz"
	"marketplace-service/internal/middleware"
	"marketplace-service/internal/models"
	"marketplace-service/internal/observability"
	"marketplace-service/internal/repositories"
	"marketplace-service/internal/storage"
	"marketplace-service/internal/telemetry"
)

// AdminHandler exposes the moderation surface. Every route behind it is
// guarded by the admin middleware.
type AdminHandler struct {
	userRepo    repositories.UserRepository
	listingRepo repositories.ListingRepository
	messageRepo repositories.MessageRepository
	ratingRepo  repositories.RatingRepository
	paymentRepo repositories.PaymentRepository
	reportRepo  repositories.ReportRepository
	images      *storage.Normalizer
	audit       *telemetry.AuditEmitter
}

// NewAdminHandler builds an AdminHandler.
func NewAdminHandler(
	userRepo repositories.UserRepository,
	listingRepo repositories.ListingRepository,
	messageRepo repositories.MessageRepository,
	ratingRepo repositories.RatingRepository,
	paymentRepo repositories.PaymentRepository,
	reportRepo repositories.ReportRepository,
	images *storage.Normalizer,
	audit *telemetry.AuditEmitter,
) *AdminHandler {
	return &AdminHandler{
		userRepo:    userRepo,
		listingRepo: listingRepo,
		messageRepo: messageRepo,
		ratingRepo:  ratingRepo,
		paymentRepo: paymentRepo,
		reportRepo:  reportRepo,
		images:      images,
		audit:       audit,
	}
}

// Dashboard returns the aggregate counters for the admin landing page.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.reportRepo.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	respondOK(c, stats)
}

// ListUsers returns one page of accounts.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page := pageParam(c)
	filter := repositories.UserFilter{Search: c.Query("search")}
	if role := c.Query("role"); role != "" {
		filter.Role = &role
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid active")
			return
		}
		filter.Active = &active
	}

	perPage := models.DefaultPageSize
	users, total, err := h.userRepo.List(c.Request.Context(), filter, perPage, (page-1)*perPage)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load users")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	respondPage(c, users, models.NewPagination(page, perPage, total))
}

// GetUser returns one account with its marketplace activity attached.
func (h *AdminHandler) GetUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userRepo.FindByID(c.Request.Context(), id)
	if errors.Is(err, repositories.ErrUserNotFound) {
		respondError(c, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load user")
		return
	}

	listings, err := h.listingRepo.ListByOwner(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load user")
		return
	}
	ratings, _, err := h.ratingRepo.ListAdmin(c.Request.Context(), repositories.RatingFilter{UserID: &id}, models.DefaultPageSize, 0)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load user")
		return
	}
	made, err := h.paymentRepo.ListByPayer(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load user")
		return
	}
	received, err := h.paymentRepo.ListByPayee(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load user")
		return
	}

	respondOK(c, gin.H{
		"user":              user,
		"listings":          listings,
		"ratings":           ratings,
		"payments_made":     made,
		"payments_received": received,
	})
}

// ToggleUser flips an account's active flag.
func (h *AdminHandler) ToggleUser(c *gin.Context) {
	admin, _ := middleware.UserFromContext(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userRepo.FindByID(c.Request.Context(), id)
	if errors.Is(err, repositories.ErrUserNotFound) {
		respondError(c, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not update user")
		return
	}

	updated, err := h.userRepo.SetActive(c.Request.Context(), id, !user.Active)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not update user")
		return
	}

	if !updated.Active {
		h.audit.Emit(c.Request.Context(), telemetry.EventUserDisabled, requestIDFromContext(c), admin.ID,
			map[string]any{"user_id": id})
	}
	respondOK(c, updated)
}

// DeleteUser removes an account. Admin accounts cannot be removed here.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	admin, _ := middleware.UserFromContext(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	target, err := h.userRepo.FindByID(c.Request.Context(), id)
	if errors.Is(err, repositories.ErrUserNotFound) {
		respondError(c, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not delete user")
		return
	}

	if d := authz.CanDeleteUser(admin, target); !d.Allowed {
		respondError(c, http.StatusForbidden, d.Reason)
		return
	}

	if err := h.userRepo.Delete(c.Request.Context(), id); err != nil {
		respondError(c, http.StatusInternalServerError, "could not delete user")
		return
	}

	h.audit.Emit(c.Request.Context(), telemetry.EventUserDeleted, requestIDFromContext(c), admin.ID,
		map[string]any{"user_id": id})
	respondOK(c, gin.H{"deleted": true})
}

// ListListings returns one moderation page over every status.
func (h *AdminHandler) ListListings(c *gin.Context) {
	page := pageParam(c)
	filter := repositories.ListingFilter{Search: c.Query("search")}
	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}

	perPage := models.DefaultPageSize
	listings, total, err := h.listingRepo.ListAdmin(c.Request.Context(), filter, perPage, (page-1)*perPage)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load listings")
		return
	}
	if listings == nil {
		listings = []models.Listing{}
	}
	respondPage(c, listings, models.NewPagination(page, perPage, total))
}

// SetListingStatus moves a listing between active, inactive and deleted.
func (h *AdminHandler) SetListingStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required,liststatus"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	listing, err := h.listingRepo.SetStatus(c.Request.Context(), id, req.Status)
	if errors.Is(err, repositories.ErrListingNotFound) {
		respondError(c, http.StatusNotFound, "listing not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not update listing")
		return
	}
	respondOK(c, listing)
}

// DeleteListing removes any listing and its stored images.
func (h *AdminHandler) DeleteListing(c *gin.Context) {
	admin, _ := middleware.UserFromContext(c)
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
		respondError(c, http.StatusInternalServerError, "could not delete listing")
		return
	}

	if err := h.listingRepo.Delete(c.Request.Context(), id); err != nil {
		respondError(c, http.StatusInternalServerError, "could not delete listing")
		return
	}

	h.images.CleanupOrphans(listing.Images, nil)
	h.audit.Emit(c.Request.Context(), telemetry.EventListingDeleted, requestIDFromContext(c), admin.ID,
		map[string]any{"listing_id": id})
	respondOK(c, gin.H{"deleted": true})
}

// ListMessages returns one page of raw message rows with both parties
// resolved in a single batch.
func (h *AdminHandler) ListMessages(c *gin.Context) {
	page := pageParam(c)
	filter := repositories.MessageFilter{Search: c.Query("search")}
	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondError(c, http.StatusBadRequest, "invalid user_id")
			return
		}
		filter.UserID = &id
	}

	perPage := models.AdminMessagePageSize
	messages, total, err := h.messageRepo.List(c.Request.Context(), filter, perPage, (page-1)*perPage)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load messages")
		return
	}

	if err := h.attachMessageUsers(c, messages); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load messages")
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	respondPage(c, messages, models.NewPagination(page, perPage, total))
}

// DeleteMessage hard-deletes one message row.
func (h *AdminHandler) DeleteMessage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	err := h.messageRepo.Delete(c.Request.Context(), id)
	if errors.Is(err, repositories.ErrMessageNotFound) {
		respondError(c, http.StatusNotFound, "message not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not delete message")
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

// ListConversations returns the service-wide conversation aggregate, one
// row per unordered participant pair. Grouping happens in the storage
// layer; this handler only resolves the participants.
func (h *AdminHandler) ListConversations(c *gin.Context) {
	page := pageParam(c)

	perPage := models.DefaultPageSize
	groups, total, err := h.messageRepo.AggregateConversations(c.Request.Context(), perPage, (page-1)*perPage)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load conversations")
		return
	}

	ids := make([]int64, 0, len(groups)*2)
	for _, group := range groups {
		ids = append(ids, group.UserAID, group.UserBID)
	}
	users, err := h.userRepo.FindByIDs(c.Request.Context(), ids)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load conversations")
		return
	}
	byID := make(map[int64]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for i := range groups {
		if u, ok := byID[groups[i].UserAID]; ok {
			groups[i].UserA = &u
		}
		if u, ok := byID[groups[i].UserBID]; ok {
			groups[i].UserB = &u
		}
	}
	if groups == nil {
		groups = []models.ConversationGroup{}
	}

	respondPage(c, groups, models.NewPagination(page, perPage, total))
}

// ConversationTranscript returns the full exchange between any two users.
func (h *AdminHandler) ConversationTranscript(c *gin.Context) {
	userA, ok := idParam(c, "user_a")
	if !ok {
		return
	}
	userB, ok := idParam(c, "user_b")
	if !ok {
		return
	}

	messages, err := h.messageRepo.Transcript(c.Request.Context(), userA, userB)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load messages")
		return
	}

	if err := h.attachMessageUsers(c, messages); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load messages")
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	respondOK(c, messages)
}

// ListPayments returns one page of payments.
func (h *AdminHandler) ListPayments(c *gin.Context) {
	page := pageParam(c)
	filter := repositories.PaymentFilter{}
	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}
	var ok bool
	if filter.From, ok = dateQuery(c, "from"); !ok {
		return
	}
	if filter.To, ok = dateQuery(c, "to"); !ok {
		return
	}

	perPage := models.DefaultPageSize
	payments, total, err := h.paymentRepo.ListAdmin(c.Request.Context(), filter, perPage, (page-1)*perPage)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load payments")
		return
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	respondPage(c, payments, models.NewPagination(page, perPage, total))
}

// SetPaymentStatus moves a payment between pending, completed and failed.
func (h *AdminHandler) SetPaymentStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required,paystatus"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	payment, err := h.paymentRepo.SetStatus(c.Request.Context(), id, req.Status)
	if errors.Is(err, repositories.ErrPaymentNotFound) {
		respondError(c, http.StatusNotFound, "payment not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not update payment")
		return
	}
	respondOK(c, payment)
}

// ListRatings returns one page of ratings across all listings.
func (h *AdminHandler) ListRatings(c *gin.Context) {
	page := pageParam(c)
	filter := repositories.RatingFilter{Search: c.Query("search")}
	if raw := c.Query("listing_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondError(c, http.StatusBadRequest, "invalid listing_id")
			return
		}
		filter.ListingID = &id
	}
	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondError(c, http.StatusBadRequest, "invalid user_id")
			return
		}
		filter.UserID = &id
	}
	if raw := c.Query("min_score"); raw != "" {
		score, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid min_score")
			return
		}
		filter.MinScore = &score
	}
	if raw := c.Query("max_score"); raw != "" {
		score, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid max_score")
			return
		}
		filter.MaxScore = &score
	}

	perPage := models.DefaultPageSize
	ratings, total, err := h.ratingRepo.ListAdmin(c.Request.Context(), filter, perPage, (page-1)*perPage)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load ratings")
		return
	}
	if ratings == nil {
		ratings = []models.Rating{}
	}
	respondPage(c, ratings, models.NewPagination(page, perPage, total))
}

// DeleteRating removes any rating, bypassing the author-only rule.
func (h *AdminHandler) DeleteRating(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	err := h.ratingRepo.Delete(c.Request.Context(), id)
	if errors.Is(err, repositories.ErrRatingNotFound) {
		respondError(c, http.StatusNotFound, "rating not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not delete rating")
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

// ListReports returns previously generated reports.
func (h *AdminHandler) ListReports(c *gin.Context) {
	page := pageParam(c)

	perPage := models.DefaultPageSize
	reports, total, err := h.reportRepo.List(c.Request.Context(), perPage, (page-1)*perPage)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load reports")
		return
	}
	if reports == nil {
		reports = []models.Report{}
	}
	respondPage(c, reports, models.NewPagination(page, perPage, total))
}

// GenerateReport collects the rows for a report kind, records the run, and
// returns both.
func (h *AdminHandler) GenerateReport(c *gin.Context) {
	admin, _ := middleware.UserFromContext(c)

	var req struct {
		Kind string     `json:"kind" binding:"required,reportkind"`
		From *time.Time `json:"from"`
		To   *time.Time `json:"to"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	params := models.ReportParams{From: req.From, To: req.To}
	count, rows, err := h.reportRepo.Collect(c.Request.Context(), req.Kind, params)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not generate report")
		return
	}

	report, err := h.reportRepo.Insert(c.Request.Context(), models.Report{
		AdminID: admin.ID,
		Kind:    req.Kind,
		Params:  params,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not generate report")
		return
	}

	observability.IncReportGenerated(req.Kind)
	respondCreated(c, gin.H{"report": report, "count": count, "rows": rows})
}

func (h *AdminHandler) attachMessageUsers(c *gin.Context, messages []models.Message) error {
	idSet := make(map[int64]struct{}, len(messages)*2)
	ids := make([]int64, 0, len(messages)*2)
	for _, msg := range messages {
		for _, id := range []int64{msg.SenderID, msg.RecipientID} {
			if _, seen := idSet[id]; !seen {
				idSet[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	users, err := h.userRepo.FindByIDs(c.Request.Context(), ids)
	if err != nil {
		return err
	}
	byID := make(map[int64]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for i := range messages {
		if u, ok := byID[messages[i].SenderID]; ok {
			messages[i].Sender = &u
		}
		if u, ok := byID[messages[i].RecipientID]; ok {
			messages[i].Recipient = &u
		}
	}
	return nil
}

func dateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid "+name)
		return nil, false
	}
	return &t, true
}
