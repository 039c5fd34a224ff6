package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"marketplace-service/internal/models"
	"marketplace-service/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) Create(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(ctx, user)
	var out models.User
	if val := args.Get(0); val != nil {
		out = val.(models.User)
	}
	return out, args.Error(1)
}

func (m *UserRepositoryMock) FindByID(ctx context.Context, id int64) (models.User, error) {
	args := m.Called(ctx, id)
	var out models.User
	if val := args.Get(0); val != nil {
		out = val.(models.User)
	}
	return out, args.Error(1)
}

func (m *UserRepositoryMock) FindByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	var out models.User
	if val := args.Get(0); val != nil {
		out = val.(models.User)
	}
	return out, args.Error(1)
}

func (m *UserRepositoryMock) FindByIDs(ctx context.Context, ids []int64) ([]models.User, error) {
	args := m.Called(ctx, ids)
	var out []models.User
	if val := args.Get(0); val != nil {
		out = val.([]models.User)
	}
	return out, args.Error(1)
}

func (m *UserRepositoryMock) List(ctx context.Context, filter repositories.UserFilter, limit, offset int) ([]models.User, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	var out []models.User
	if val := args.Get(0); val != nil {
		out = val.([]models.User)
	}
	return out, args.Get(1).(int64), args.Error(2)
}

func (m *UserRepositoryMock) SetActive(ctx context.Context, id int64, active bool) (models.User, error) {
	args := m.Called(ctx, id, active)
	var out models.User
	if val := args.Get(0); val != nil {
		out = val.(models.User)
	}
	return out, args.Error(1)
}

func (m *UserRepositoryMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type ListingRepositoryMock struct {
	mock.Mock
}

func (m *ListingRepositoryMock) Create(ctx context.Context, listing models.Listing) (models.Listing, error) {
	args := m.Called(ctx, listing)
	var out models.Listing
	if val := args.Get(0); val != nil {
		out = val.(models.Listing)
	}
	return out, args.Error(1)
}

func (m *ListingRepositoryMock) Update(ctx context.Context, listing models.Listing) (models.Listing, error) {
	args := m.Called(ctx, listing)
	var out models.Listing
	if val := args.Get(0); val != nil {
		out = val.(models.Listing)
	}
	return out, args.Error(1)
}

func (m *ListingRepositoryMock) FindByID(ctx context.Context, id int64) (models.Listing, error) {
	args := m.Called(ctx, id)
	var out models.Listing
	if val := args.Get(0); val != nil {
		out = val.(models.Listing)
	}
	return out, args.Error(1)
}

func (m *ListingRepositoryMock) FindByIDs(ctx context.Context, ids []int64) ([]models.Listing, error) {
	args := m.Called(ctx, ids)
	var out []models.Listing
	if val := args.Get(0); val != nil {
		out = val.([]models.Listing)
	}
	return out, args.Error(1)
}

func (m *ListingRepositoryMock) ListPublic(ctx context.Context, filter repositories.ListingFilter, limit, offset int) ([]models.ListingSummary, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	var out []models.ListingSummary
	if val := args.Get(0); val != nil {
		out = val.([]models.ListingSummary)
	}
	return out, args.Get(1).(int64), args.Error(2)
}

func (m *ListingRepositoryMock) ListByOwner(ctx context.Context, ownerID int64) ([]models.ListingSummary, error) {
	args := m.Called(ctx, ownerID)
	var out []models.ListingSummary
	if val := args.Get(0); val != nil {
		out = val.([]models.ListingSummary)
	}
	return out, args.Error(1)
}

func (m *ListingRepositoryMock) ListAdmin(ctx context.Context, filter repositories.ListingFilter, limit, offset int) ([]models.Listing, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	var out []models.Listing
	if val := args.Get(0); val != nil {
		out = val.([]models.Listing)
	}
	return out, args.Get(1).(int64), args.Error(2)
}

func (m *ListingRepositoryMock) SetStatus(ctx context.Context, id int64, status string) (models.Listing, error) {
	args := m.Called(ctx, id, status)
	var out models.Listing
	if val := args.Get(0); val != nil {
		out = val.(models.Listing)
	}
	return out, args.Error(1)
}

func (m *ListingRepositoryMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, senderID, recipientID int64, listingID *int64, body string) (models.Message, error) {
	args := m.Called(ctx, senderID, recipientID, listingID, body)
	var out models.Message
	if val := args.Get(0); val != nil {
		out = val.(models.Message)
	}
	return out, args.Error(1)
}

func (m *MessageRepositoryMock) ListConversations(ctx context.Context, userID int64) ([]models.ConversationSummary, error) {
	args := m.Called(ctx, userID)
	var out []models.ConversationSummary
	if val := args.Get(0); val != nil {
		out = val.([]models.ConversationSummary)
	}
	return out, args.Error(1)
}

func (m *MessageRepositoryMock) Transcript(ctx context.Context, userA, userB int64) ([]models.Message, error) {
	args := m.Called(ctx, userA, userB)
	var out []models.Message
	if val := args.Get(0); val != nil {
		out = val.([]models.Message)
	}
	return out, args.Error(1)
}

func (m *MessageRepositoryMock) HasContacted(ctx context.Context, userID, listingID int64) (bool, error) {
	args := m.Called(ctx, userID, listingID)
	return args.Bool(0), args.Error(1)
}

func (m *MessageRepositoryMock) ContactedListingIDs(ctx context.Context, userID int64) ([]models.ContactedListing, error) {
	args := m.Called(ctx, userID)
	var out []models.ContactedListing
	if val := args.Get(0); val != nil {
		out = val.([]models.ContactedListing)
	}
	return out, args.Error(1)
}

func (m *MessageRepositoryMock) AggregateConversations(ctx context.Context, limit, offset int) ([]models.ConversationGroup, int64, error) {
	args := m.Called(ctx, limit, offset)
	var out []models.ConversationGroup
	if val := args.Get(0); val != nil {
		out = val.([]models.ConversationGroup)
	}
	return out, args.Get(1).(int64), args.Error(2)
}

func (m *MessageRepositoryMock) List(ctx context.Context, filter repositories.MessageFilter, limit, offset int) ([]models.Message, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	var out []models.Message
	if val := args.Get(0); val != nil {
		out = val.([]models.Message)
	}
	return out, args.Get(1).(int64), args.Error(2)
}

func (m *MessageRepositoryMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type RatingRepositoryMock struct {
	mock.Mock
}

func (m *RatingRepositoryMock) Create(ctx context.Context, rating models.Rating) (models.Rating, error) {
	args := m.Called(ctx, rating)
	var out models.Rating
	if val := args.Get(0); val != nil {
		out = val.(models.Rating)
	}
	return out, args.Error(1)
}

func (m *RatingRepositoryMock) Update(ctx context.Context, id int64, score *int, comment *string) (models.Rating, error) {
	args := m.Called(ctx, id, score, comment)
	var out models.Rating
	if val := args.Get(0); val != nil {
		out = val.(models.Rating)
	}
	return out, args.Error(1)
}

func (m *RatingRepositoryMock) FindByID(ctx context.Context, id int64) (models.Rating, error) {
	args := m.Called(ctx, id)
	var out models.Rating
	if val := args.Get(0); val != nil {
		out = val.(models.Rating)
	}
	return out, args.Error(1)
}

func (m *RatingRepositoryMock) FindByListingAndUser(ctx context.Context, listingID, userID int64) (models.Rating, error) {
	args := m.Called(ctx, listingID, userID)
	var out models.Rating
	if val := args.Get(0); val != nil {
		out = val.(models.Rating)
	}
	return out, args.Error(1)
}

func (m *RatingRepositoryMock) ListForListing(ctx context.Context, listingID int64) ([]models.Rating, models.RatingBreakdown, error) {
	args := m.Called(ctx, listingID)
	var out []models.Rating
	if val := args.Get(0); val != nil {
		out = val.([]models.Rating)
	}
	var breakdown models.RatingBreakdown
	if val := args.Get(1); val != nil {
		breakdown = val.(models.RatingBreakdown)
	}
	return out, breakdown, args.Error(2)
}

func (m *RatingRepositoryMock) ListAdmin(ctx context.Context, filter repositories.RatingFilter, limit, offset int) ([]models.Rating, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	var out []models.Rating
	if val := args.Get(0); val != nil {
		out = val.([]models.Rating)
	}
	return out, args.Get(1).(int64), args.Error(2)
}

func (m *RatingRepositoryMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type FavoriteRepositoryMock struct {
	mock.Mock
}

func (m *FavoriteRepositoryMock) Add(ctx context.Context, userID, listingID int64) (models.Favorite, error) {
	args := m.Called(ctx, userID, listingID)
	var out models.Favorite
	if val := args.Get(0); val != nil {
		out = val.(models.Favorite)
	}
	return out, args.Error(1)
}

func (m *FavoriteRepositoryMock) Remove(ctx context.Context, userID, listingID int64) error {
	args := m.Called(ctx, userID, listingID)
	return args.Error(0)
}

func (m *FavoriteRepositoryMock) ListForUser(ctx context.Context, userID int64) ([]models.Favorite, error) {
	args := m.Called(ctx, userID)
	var out []models.Favorite
	if val := args.Get(0); val != nil {
		out = val.([]models.Favorite)
	}
	return out, args.Error(1)
}

type PaymentRepositoryMock struct {
	mock.Mock
}

func (m *PaymentRepositoryMock) Create(ctx context.Context, payment models.Payment) (models.Payment, error) {
	args := m.Called(ctx, payment)
	var out models.Payment
	if val := args.Get(0); val != nil {
		out = val.(models.Payment)
	}
	return out, args.Error(1)
}

func (m *PaymentRepositoryMock) ListByPayer(ctx context.Context, payerID int64) ([]models.Payment, error) {
	args := m.Called(ctx, payerID)
	var out []models.Payment
	if val := args.Get(0); val != nil {
		out = val.([]models.Payment)
	}
	return out, args.Error(1)
}

func (m *PaymentRepositoryMock) ListByPayee(ctx context.Context, payeeID int64) ([]models.Payment, error) {
	args := m.Called(ctx, payeeID)
	var out []models.Payment
	if val := args.Get(0); val != nil {
		out = val.([]models.Payment)
	}
	return out, args.Error(1)
}

func (m *PaymentRepositoryMock) ListAdmin(ctx context.Context, filter repositories.PaymentFilter, limit, offset int) ([]models.Payment, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	var out []models.Payment
	if val := args.Get(0); val != nil {
		out = val.([]models.Payment)
	}
	return out, args.Get(1).(int64), args.Error(2)
}

func (m *PaymentRepositoryMock) SetStatus(ctx context.Context, id int64, status string) (models.Payment, error) {
	args := m.Called(ctx, id, status)
	var out models.Payment
	if val := args.Get(0); val != nil {
		out = val.(models.Payment)
	}
	return out, args.Error(1)
}

type ReportRepositoryMock struct {
	mock.Mock
}

func (m *ReportRepositoryMock) Insert(ctx context.Context, report models.Report) (models.Report, error) {
	args := m.Called(ctx, report)
	var out models.Report
	if val := args.Get(0); val != nil {
		out = val.(models.Report)
	}
	return out, args.Error(1)
}

func (m *ReportRepositoryMock) List(ctx context.Context, limit, offset int) ([]models.Report, int64, error) {
	args := m.Called(ctx, limit, offset)
	var out []models.Report
	if val := args.Get(0); val != nil {
		out = val.([]models.Report)
	}
	return out, args.Get(1).(int64), args.Error(2)
}

func (m *ReportRepositoryMock) Collect(ctx context.Context, kind string, params models.ReportParams) (int64, any, error) {
	args := m.Called(ctx, kind, params)
	return args.Get(0).(int64), args.Get(1), args.Error(2)
}

func (m *ReportRepositoryMock) Dashboard(ctx context.Context) (repositories.DashboardStats, error) {
	args := m.Called(ctx)
	var out repositories.DashboardStats
	if val := args.Get(0); val != nil {
		out = val.(repositories.DashboardStats)
	}
	return out, args.Error(1)
}
