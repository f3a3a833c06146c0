package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
	"github.com/goalchallenge/weekly-goals-engine/internal/core/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthHandler serves registration, login and anonymous session bootstrap.
type AuthHandler struct {
	auth     *services.AuthService
	tokens   *services.TokenService
	profiles *services.ProfileService
	local    domain.LocalStore
}

func NewAuthHandler(auth *services.AuthService, tokens *services.TokenService, profiles *services.ProfileService, local domain.LocalStore) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		tokens:   tokens,
		profiles: profiles,
		local:    local,
	}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
	router.POST("/session/anonymous", h.AnonymousSession)
}

type registerRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"displayName" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token              string       `json:"token"`
	User               *domain.User `json:"user"`
	AnonymousProfileID string       `json:"anonymousProfileId,omitempty"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), services.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		case errors.Is(err, domain.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	h.profiles.PostAuthUpsert(c.Request.Context(), user)

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, authResponse{
		Token:              token,
		User:               user,
		AnonymousProfileID: h.pendingAnonymousID(c, user.ID),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	h.profiles.PostAuthUpsert(c.Request.Context(), user)

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, authResponse{
		Token:              token,
		User:               user,
		AnonymousProfileID: h.pendingAnonymousID(c, user.ID),
	})
}

// AnonymousSession mints a device-scoped profile id and a token carrying the
// anonymous claim, and remembers the id so a later sign-in can offer a merge.
func (h *AuthHandler) AnonymousSession(c *gin.Context) {
	profileID := uuid.NewString()

	token, err := h.tokens.GenerateAnonymousToken(profileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if err := h.local.SetProfileID(c.Request.Context(), profileID); err != nil {
		log.Printf("[AUTH] could not store anonymous profile id: %v", err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"token":     token,
		"profileId": profileID,
		"anonymous": true,
	})
}

// pendingAnonymousID surfaces the stored anonymous profile id when its data
// has not been merged into authID yet, so clients know to offer the merge.
func (h *AuthHandler) pendingAnonymousID(c *gin.Context, authID string) string {
	anonID, err := h.local.GetProfileID(c.Request.Context())
	if err != nil || anonID == "" || anonID == authID {
		return ""
	}
	merged, err := h.local.GetFlag(c.Request.Context(), "anon-synced:"+authID)
	if err != nil || merged {
		return ""
	}
	return anonID
}
