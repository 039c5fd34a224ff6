package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketplace-service/internal/mocks"
	"marketplace-service/internal/models"
	"marketplace-service/internal/repositories"
)

func setupRatingRouter(handler *RatingHandler, user models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/listings/:id/ratings", handler.ListForListing)
	authed := r.Group("", actAs(user))
	authed.GET("/ratings/mine/:listing_id", handler.Mine)
	authed.POST("/ratings", handler.Create)
	authed.PUT("/ratings/:id", handler.Update)
	authed.DELETE("/ratings/:id", handler.Delete)
	return r
}

func newRatingHandler(ratingRepo *mocks.RatingRepositoryMock, listingRepo *mocks.ListingRepositoryMock, messageRepo *mocks.MessageRepositoryMock, userRepo *mocks.UserRepositoryMock) *RatingHandler {
	return NewRatingHandler(ratingRepo, listingRepo, messageRepo, userRepo, nil)
}

func TestCreateRatingSelfRatingForbidden(t *testing.T) {
	listingRepo := new(mocks.ListingRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	ratingRepo := new(mocks.RatingRepositoryMock)
	handler := newRatingHandler(ratingRepo, listingRepo, messageRepo, new(mocks.UserRepositoryMock))
	router := setupRatingRouter(handler, registeredUser(1))

	listingRepo.On("FindByID", mock.Anything, int64(3)).Return(models.Listing{ID: 3, OwnerID: 1}, nil).Once()
	messageRepo.On("HasContacted", mock.Anything, int64(1), int64(3)).Return(true, nil).Once()
	ratingRepo.On("FindByListingAndUser", mock.Anything, int64(3), int64(1)).Return(models.Rating{}, repositories.ErrRatingNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/ratings", bytes.NewBufferString(`{"listing_id":3,"score":5}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	listingRepo.AssertExpectations(t)
}

func TestCreateRatingRequiresContact(t *testing.T) {
	listingRepo := new(mocks.ListingRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	ratingRepo := new(mocks.RatingRepositoryMock)
	handler := newRatingHandler(ratingRepo, listingRepo, messageRepo, new(mocks.UserRepositoryMock))
	router := setupRatingRouter(handler, registeredUser(1))

	listingRepo.On("FindByID", mock.Anything, int64(3)).Return(models.Listing{ID: 3, OwnerID: 2}, nil).Once()
	messageRepo.On("HasContacted", mock.Anything, int64(1), int64(3)).Return(false, nil).Once()
	ratingRepo.On("FindByListingAndUser", mock.Anything, int64(3), int64(1)).Return(models.Rating{}, repositories.ErrRatingNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/ratings", bytes.NewBufferString(`{"listing_id":3,"score":4}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	messageRepo.AssertExpectations(t)
}

func TestCreateRatingDuplicateConflicts(t *testing.T) {
	listingRepo := new(mocks.ListingRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	ratingRepo := new(mocks.RatingRepositoryMock)
	handler := newRatingHandler(ratingRepo, listingRepo, messageRepo, new(mocks.UserRepositoryMock))
	router := setupRatingRouter(handler, registeredUser(1))

	listingRepo.On("FindByID", mock.Anything, int64(3)).Return(models.Listing{ID: 3, OwnerID: 2}, nil).Once()
	messageRepo.On("HasContacted", mock.Anything, int64(1), int64(3)).Return(true, nil).Once()
	ratingRepo.On("FindByListingAndUser", mock.Anything, int64(3), int64(1)).Return(models.Rating{ID: 11, ListingID: 3, UserID: 1}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/ratings", bytes.NewBufferString(`{"listing_id":3,"score":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	ratingRepo.AssertExpectations(t)
}

func TestCreateRatingConstraintRace(t *testing.T) {
	listingRepo := new(mocks.ListingRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	ratingRepo := new(mocks.RatingRepositoryMock)
	handler := newRatingHandler(ratingRepo, listingRepo, messageRepo, new(mocks.UserRepositoryMock))
	router := setupRatingRouter(handler, registeredUser(1))

	listingRepo.On("FindByID", mock.Anything, int64(3)).Return(models.Listing{ID: 3, OwnerID: 2}, nil).Once()
	messageRepo.On("HasContacted", mock.Anything, int64(1), int64(3)).Return(true, nil).Once()
	ratingRepo.On("FindByListingAndUser", mock.Anything, int64(3), int64(1)).Return(models.Rating{}, repositories.ErrRatingNotFound).Once()
	ratingRepo.On("Create", mock.Anything, mock.Anything).Return(models.Rating{}, repositories.ErrDuplicateRating).Once()

	req := httptest.NewRequest(http.MethodPost, "/ratings", bytes.NewBufferString(`{"listing_id":3,"score":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	ratingRepo.AssertExpectations(t)
}

func TestCreateRatingSuccess(t *testing.T) {
	listingRepo := new(mocks.ListingRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	ratingRepo := new(mocks.RatingRepositoryMock)
	handler := newRatingHandler(ratingRepo, listingRepo, messageRepo, new(mocks.UserRepositoryMock))
	router := setupRatingRouter(handler, registeredUser(1))

	listingRepo.On("FindByID", mock.Anything, int64(3)).Return(models.Listing{ID: 3, OwnerID: 2}, nil).Once()
	messageRepo.On("HasContacted", mock.Anything, int64(1), int64(3)).Return(true, nil).Once()
	ratingRepo.On("FindByListingAndUser", mock.Anything, int64(3), int64(1)).Return(models.Rating{}, repositories.ErrRatingNotFound).Once()
	ratingRepo.On("Create", mock.Anything, models.Rating{ListingID: 3, UserID: 1, Score: 5}).
		Return(models.Rating{ID: 20, ListingID: 3, UserID: 1, Score: 5}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/ratings", bytes.NewBufferString(`{"listing_id":3,"score":5}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	ratingRepo.AssertExpectations(t)
}

func TestUpdateRatingOnlyAuthor(t *testing.T) {
	ratingRepo := new(mocks.RatingRepositoryMock)
	handler := newRatingHandler(ratingRepo, new(mocks.ListingRepositoryMock), new(mocks.MessageRepositoryMock), new(mocks.UserRepositoryMock))
	router := setupRatingRouter(handler, registeredUser(1))

	ratingRepo.On("FindByID", mock.Anything, int64(9)).Return(models.Rating{ID: 9, ListingID: 3, UserID: 2}, nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/ratings/9", bytes.NewBufferString(`{"score":1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	ratingRepo.AssertExpectations(t)
}

func TestMineNotFound(t *testing.T) {
	ratingRepo := new(mocks.RatingRepositoryMock)
	handler := newRatingHandler(ratingRepo, new(mocks.ListingRepositoryMock), new(mocks.MessageRepositoryMock), new(mocks.UserRepositoryMock))
	router := setupRatingRouter(handler, registeredUser(1))

	ratingRepo.On("FindByListingAndUser", mock.Anything, int64(3), int64(1)).Return(models.Rating{}, repositories.ErrRatingNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/ratings/mine/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	ratingRepo.AssertExpectations(t)
}
