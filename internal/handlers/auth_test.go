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

	"marketplace-service/internal/auth"
	"marketplace-service/internal/mocks"
	"marketplace-service/internal/models"
	"marketplace-service/internal/repositories"
)

func setupAuthHandlerRouter(userRepo *mocks.UserRepositoryMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewAuthHandler(userRepo, auth.NewTokenIssuer("test-secret", time.Hour))
	r.POST("/register", handler.Register)
	r.POST("/login", handler.Login)
	return r
}

func TestRegisterSuccess(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	router := setupAuthHandlerRouter(userRepo)

	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Role == models.RoleRegistered && u.Email == "ana@example.com" && u.PasswordHash != ""
	})).Return(models.User{ID: 1, Role: models.RoleRegistered, Email: "ana@example.com", Active: true}, nil).Once()

	body := `{"name":"Ana","surname":"Lopez","email":"ana@example.com","password":"supersecret"}`
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Data.Token)
	userRepo.AssertExpectations(t)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	router := setupAuthHandlerRouter(userRepo)

	userRepo.On("Create", mock.Anything, mock.Anything).Return(models.User{}, repositories.ErrEmailTaken).Once()

	body := `{"name":"Ana","surname":"Lopez","email":"ana@example.com","password":"supersecret"}`
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestLoginWrongPassword(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	router := setupAuthHandlerRouter(userRepo)

	hash, err := auth.HashPassword("rightpassword")
	require.NoError(t, err)
	userRepo.On("FindByEmail", mock.Anything, "ana@example.com").
		Return(models.User{ID: 1, Email: "ana@example.com", PasswordHash: hash, Active: true}, nil).Once()

	body := `{"email":"ana@example.com","password":"wrongpassword"}`
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestLoginDisabledAccount(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	router := setupAuthHandlerRouter(userRepo)

	hash, err := auth.HashPassword("rightpassword")
	require.NoError(t, err)
	userRepo.On("FindByEmail", mock.Anything, "ana@example.com").
		Return(models.User{ID: 1, Email: "ana@example.com", PasswordHash: hash, Active: false}, nil).Once()

	body := `{"email":"ana@example.com","password":"rightpassword"}`
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestLoginSuccess(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	router := setupAuthHandlerRouter(userRepo)

	hash, err := auth.HashPassword("rightpassword")
	require.NoError(t, err)
	userRepo.On("FindByEmail", mock.Anything, "ana@example.com").
		Return(models.User{ID: 1, Role: models.RoleRegistered, Email: "ana@example.com", PasswordHash: hash, Active: true}, nil).Once()

	body := `{"email":"ana@example.com","password":"rightpassword"}`
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	userRepo.AssertExpectations(t)
}
