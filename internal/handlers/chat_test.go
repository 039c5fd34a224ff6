package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketplace-service/internal/middleware"
	"marketplace-service/internal/mocks"
	"marketplace-service/internal/models"
	"marketplace-service/internal/repositories"
)

func actAs(user models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetUserForTest(c, user)
		c.Next()
	}
}

func registeredUser(id int64) models.User {
	return models.User{ID: id, Role: models.RoleRegistered, Name: "user", Active: true}
}

func setupChatRouter(handler *ChatHandler, user models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(actAs(user))
	r.GET("/chat/conversations", handler.Conversations)
	r.GET("/chat/messages/:user_id", handler.Transcript)
	r.POST("/chat/messages", handler.Send)
	r.GET("/chat/contacted-listings", handler.ContactedListings)
	return r
}

func TestConversationsEmpty(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewChatHandler(messageRepo, userRepo, new(mocks.ListingRepositoryMock), nil)
	router := setupChatRouter(handler, registeredUser(1))

	messageRepo.On("ListConversations", mock.Anything, int64(1)).Return(([]models.ConversationSummary)(nil), nil).Once()
	userRepo.On("FindByIDs", mock.Anything, []int64{}).Return(([]models.User)(nil), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chat/conversations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success bool                         `json:"success"`
		Data    []models.ConversationSummary `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Data)
	messageRepo.AssertExpectations(t)
}

func TestConversationsResolvesCounterparts(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewChatHandler(messageRepo, userRepo, new(mocks.ListingRepositoryMock), nil)
	router := setupChatRouter(handler, registeredUser(1))

	now := time.Now()
	messageRepo.On("ListConversations", mock.Anything, int64(1)).Return([]models.ConversationSummary{
		{CounterpartID: 2, MessageCount: 3, LastMessageAt: now},
		{CounterpartID: 5, MessageCount: 1, LastMessageAt: now.Add(-time.Hour)},
	}, nil).Once()
	userRepo.On("FindByIDs", mock.Anything, []int64{2, 5}).Return([]models.User{
		{ID: 2, Name: "bob"},
		{ID: 5, Name: "eve"},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chat/conversations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data []models.ConversationSummary `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data, 2)
	require.NotNil(t, resp.Data[0].Counterpart)
	assert.Equal(t, "bob", resp.Data[0].Counterpart.Name)
	require.NotNil(t, resp.Data[1].Counterpart)
	assert.Equal(t, "eve", resp.Data[1].Counterpart.Name)
	messageRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestTranscriptKeepsOrder(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewChatHandler(messageRepo, new(mocks.UserRepositoryMock), new(mocks.ListingRepositoryMock), nil)
	router := setupChatRouter(handler, registeredUser(1))

	base := time.Now()
	messageRepo.On("Transcript", mock.Anything, int64(1), int64(2)).Return([]models.Message{
		{ID: 1, SenderID: 1, RecipientID: 2, Body: "first", SentAt: base},
		{ID: 2, SenderID: 2, RecipientID: 1, Body: "second", SentAt: base.Add(time.Minute)},
		{ID: 3, SenderID: 1, RecipientID: 2, Body: "third", SentAt: base.Add(2 * time.Minute)},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chat/messages/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data []models.Message `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data, 3)
	assert.Equal(t, "first", resp.Data[0].Body)
	assert.Equal(t, "third", resp.Data[2].Body)
	messageRepo.AssertExpectations(t)
}

func TestSendSuccess(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	listingRepo := new(mocks.ListingRepositoryMock)
	handler := NewChatHandler(messageRepo, userRepo, listingRepo, nil)
	router := setupChatRouter(handler, registeredUser(1))

	listingID := int64(9)
	userRepo.On("FindByID", mock.Anything, int64(2)).Return(models.User{ID: 2, Active: true}, nil).Once()
	listingRepo.On("FindByID", mock.Anything, listingID).Return(models.Listing{ID: 9, OwnerID: 2}, nil).Once()
	messageRepo.On("Create", mock.Anything, int64(1), int64(2), &listingID, "hello").
		Return(models.Message{ID: 7, SenderID: 1, RecipientID: 2, Body: "hello"}, nil).Once()

	body := bytes.NewBufferString(`{"recipient_id":2,"listing_id":9,"body":"hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/chat/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	messageRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
	listingRepo.AssertExpectations(t)
}

func TestSendToSelfRejected(t *testing.T) {
	handler := NewChatHandler(new(mocks.MessageRepositoryMock), new(mocks.UserRepositoryMock), new(mocks.ListingRepositoryMock), nil)
	router := setupChatRouter(handler, registeredUser(1))

	req := httptest.NewRequest(http.MethodPost, "/chat/messages", bytes.NewBufferString(`{"recipient_id":1,"body":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendRecipientMissing(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewChatHandler(new(mocks.MessageRepositoryMock), userRepo, new(mocks.ListingRepositoryMock), nil)
	router := setupChatRouter(handler, registeredUser(1))

	userRepo.On("FindByID", mock.Anything, int64(99)).Return(models.User{}, repositories.ErrUserNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/chat/messages", bytes.NewBufferString(`{"recipient_id":99,"body":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestContactedListingsResolved(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	listingRepo := new(mocks.ListingRepositoryMock)
	handler := NewChatHandler(messageRepo, new(mocks.UserRepositoryMock), listingRepo, nil)
	router := setupChatRouter(handler, registeredUser(1))

	first := time.Now().Add(-48 * time.Hour)
	messageRepo.On("ContactedListingIDs", mock.Anything, int64(1)).Return([]models.ContactedListing{
		{ListingID: 4, FirstContactAt: first},
	}, nil).Once()
	listingRepo.On("FindByIDs", mock.Anything, []int64{4}).Return([]models.Listing{
		{ID: 4, Title: "garden work"},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chat/contacted-listings", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data []models.ContactedListing `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data, 1)
	require.NotNil(t, resp.Data[0].Listing)
	assert.Equal(t, "garden work", resp.Data[0].Listing.Title)
	messageRepo.AssertExpectations(t)
	listingRepo.AssertExpectations(t)
}
