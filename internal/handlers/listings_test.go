package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketplace-service/internal/mocks"
	"marketplace-service/internal/models"
	"marketplace-service/internal/repositories"
	"marketplace-service/internal/storage"
)

const onePixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

type memStore struct {
	blobs   map[string][]byte
	puts    int
	deletes int
}

func newMemStore() *memStore {
	return &memStore{blobs: map[string][]byte{}}
}

func (s *memStore) Put(path string, data []byte) error {
	s.puts++
	s.blobs[path] = data
	return nil
}

func (s *memStore) Delete(path string) error {
	if _, ok := s.blobs[path]; !ok {
		return errors.New("no such blob")
	}
	s.deletes++
	delete(s.blobs, path)
	return nil
}

func (s *memStore) Get(path string) ([]byte, error) {
	data, ok := s.blobs[path]
	if !ok {
		return nil, errors.New("no such blob")
	}
	return data, nil
}

func setupListingRouter(handler *ListingHandler, user models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
	r := gin.New()
	r.GET("/listings", handler.List)
	r.GET("/listings/:id", handler.Show)
	authed := r.Group("", actAs(user))
	authed.GET("/listings/mine", handler.Mine)
	authed.POST("/listings", handler.Create)
	authed.PUT("/listings/:id", handler.Update)
	authed.DELETE("/listings/:id", handler.Delete)
	return r
}

func newListingHandler(listingRepo *mocks.ListingRepositoryMock, store storage.BlobStore) *ListingHandler {
	return NewListingHandler(listingRepo, new(mocks.RatingRepositoryMock), new(mocks.UserRepositoryMock),
		storage.NewNormalizer(store, "listings"), nil)
}

func TestCreateListingStoresDataURI(t *testing.T) {
	listingRepo := new(mocks.ListingRepositoryMock)
	store := newMemStore()
	handler := newListingHandler(listingRepo, store)
	router := setupListingRouter(handler, registeredUser(1))

	listingRepo.On("Create", mock.Anything, mock.MatchedBy(func(l models.Listing) bool {
		return l.OwnerID == 1 && l.Status == models.ListingActive && len(l.Images) == 1
	})).Return(models.Listing{ID: 5, OwnerID: 1, Title: "garden work"}, nil).Once()

	payload := fmt.Sprintf(`{"title":"garden work","description":"weekly garden care","price":25,"images":["data:image/png;base64,%s"]}`, onePixelPNG)
	req := httptest.NewRequest(http.MethodPost, "/listings", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, store.puts)
	assert.Len(t, store.blobs, 1)
	listingRepo.AssertExpectations(t)
}

func TestCreateListingFreeOfCharge(t *testing.T) {
	listingRepo := new(mocks.ListingRepositoryMock)
	handler := newListingHandler(listingRepo, newMemStore())
	router := setupListingRouter(handler, registeredUser(1))

	listingRepo.On("Create", mock.Anything, mock.MatchedBy(func(l models.Listing) bool {
		return l.OwnerID == 1 && l.Price == 0
	})).Return(models.Listing{ID: 6, OwnerID: 1, Title: "tool lending"}, nil).Once()

	payload := `{"title":"tool lending","description":"borrow my ladder","price":0}`
	req := httptest.NewRequest(http.MethodPost, "/listings", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	listingRepo.AssertExpectations(t)
}

func TestCreateListingRejectsInvalidImage(t *testing.T) {
	listingRepo := new(mocks.ListingRepositoryMock)
	handler := newListingHandler(listingRepo, newMemStore())
	router := setupListingRouter(handler, registeredUser(1))

	payload := `{"title":"x","description":"y","price":5,"images":["data:image/png;base64,%%%"]}`
	req := httptest.NewRequest(http.MethodPost, "/listings", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	listingRepo.AssertNotCalled(t, "Create")
}

func TestUpdateListingKeepsExistingImages(t *testing.T) {
	listingRepo := new(mocks.ListingRepositoryMock)
	store := newMemStore()
	store.blobs["listings/a.png"] = []byte("a")
	store.blobs["listings/b.png"] = []byte("b")
	handler := newListingHandler(listingRepo, store)
	router := setupListingRouter(handler, registeredUser(1))

	existing := models.Listing{
		ID: 5, OwnerID: 1, Title: "old", Description: "old", Price: 10,
		Images: models.ImageList{"listings/a.png", "listings/b.png"},
		Status: models.ListingActive,
	}
	listingRepo.On("FindByID", mock.Anything, int64(5)).Return(existing, nil).Once()
	listingRepo.On("Update", mock.Anything, mock.MatchedBy(func(l models.Listing) bool {
		return len(l.Images) == 2 && l.Title == "new title"
	})).Return(existing, nil).Once()

	// Re-submitting stored paths uploads nothing and must delete nothing.
	payload := `{"title":"new title","description":"new desc","price":12,"images":["listings/a.png","listings/b.png"]}`
	req := httptest.NewRequest(http.MethodPut, "/listings/5", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, store.puts)
	assert.Equal(t, 0, store.deletes)
	listingRepo.AssertExpectations(t)
}

func TestUpdateListingNotOwnerForbidden(t *testing.T) {
	listingRepo := new(mocks.ListingRepositoryMock)
	handler := newListingHandler(listingRepo, newMemStore())
	router := setupListingRouter(handler, registeredUser(1))

	listingRepo.On("FindByID", mock.Anything, int64(5)).Return(models.Listing{ID: 5, OwnerID: 2}, nil).Once()

	payload := `{"title":"t","description":"d","price":1}`
	req := httptest.NewRequest(http.MethodPut, "/listings/5", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	listingRepo.AssertNotCalled(t, "Update")
}

func TestDeleteListingCleansBlobs(t *testing.T) {
	listingRepo := new(mocks.ListingRepositoryMock)
	store := newMemStore()
	store.blobs["listings/a.png"] = []byte("a")
	handler := newListingHandler(listingRepo, store)
	router := setupListingRouter(handler, registeredUser(1))

	listingRepo.On("FindByID", mock.Anything, int64(5)).Return(models.Listing{
		ID: 5, OwnerID: 1, Images: models.ImageList{"listings/a.png"},
	}, nil).Once()
	listingRepo.On("Delete", mock.Anything, int64(5)).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/listings/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.blobs)
	listingRepo.AssertExpectations(t)
}

func TestPublicListOnlyActive(t *testing.T) {
	listingRepo := new(mocks.ListingRepositoryMock)
	handler := newListingHandler(listingRepo, newMemStore())
	router := setupListingRouter(handler, registeredUser(1))

	listingRepo.On("ListPublic", mock.Anything, mock.MatchedBy(func(f repositories.ListingFilter) bool {
		return f.Status != nil && *f.Status == models.ListingActive
	}), models.PublicListingPageSize, 0).
		Return([]models.ListingSummary{}, int64(0), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/listings", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Pagination models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, models.PublicListingPageSize, resp.Pagination.PerPage)
	listingRepo.AssertExpectations(t)
}
