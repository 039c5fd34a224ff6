package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-service/internal/auth"
	"marketplace-service/internal/middleware"
	"marketplace-service/internal/models"
	"marketplace-service/internal/repositories"
)

// AuthHandler manages registration, login and the session endpoints.
type AuthHandler struct {
	userRepo repositories.UserRepository
	issuer   *auth.TokenIssuer
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(userRepo repositories.UserRepository, issuer *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{userRepo: userRepo, issuer: issuer}
}

// Register creates an account and returns it with a fresh token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name     string  `json:"name" binding:"required"`
		Surname  string  `json:"surname" binding:"required"`
		Email    string  `json:"email" binding:"required,email"`
		Password string  `json:"password" binding:"required,min=8"`
		Phone    *string `json:"phone"`
		Photo    *string `json:"photo"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not register")
		return
	}

	user, err := h.userRepo.Create(c.Request.Context(), models.User{
		Role:         models.RoleRegistered,
		Name:         req.Name,
		Surname:      req.Surname,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Photo:        req.Photo,
	})
	if errors.Is(err, repositories.ErrEmailTaken) {
		respondError(c, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not register")
		return
	}

	token, err := h.issuer.Issue(user.ID, user.Role)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not register")
		return
	}

	respondCreated(c, gin.H{"user": user, "token": token})
}

// Login verifies credentials and issues a token. Wrong email and wrong
// password answer identically.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userRepo.FindByEmail(c.Request.Context(), req.Email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !user.Active {
		respondError(c, http.StatusForbidden, "account disabled")
		return
	}

	token, err := h.issuer.Issue(user.ID, user.Role)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not log in")
		return
	}

	respondOK(c, gin.H{"user": user, "token": token})
}

// Me returns the acting user.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "missing authorization")
		return
	}
	respondOK(c, user)
}

// Logout acknowledges the logout. Tokens are stateless and simply expire;
// clients drop theirs on this call.
func (h *AuthHandler) Logout(c *gin.Context) {
	respondOK(c, gin.H{"logged_out": true})
}
