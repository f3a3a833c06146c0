package http

import (
	"errors"
	"net/http"

	"github.com/goalchallenge/weekly-goals-engine/internal/adapters/handler/http/middleware"
	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
	"github.com/goalchallenge/weekly-goals-engine/internal/core/services"
	"github.com/gin-gonic/gin"
)

// 5 MB cap on profile photo uploads.
const maxPhotoSize = 5 << 20

type ProfileHandler struct {
	svc *services.ProfileService
}

func NewProfileHandler(svc *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile")
	{
		profile.GET("", h.Get)
		profile.PUT("", h.Save)
		profile.POST("/photo", h.UploadPhoto)
	}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	profileID, ok := middleware.GetProfileID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile context missing"})
		return
	}

	profile, err := h.svc.Load(c.Request.Context(), profileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) Save(c *gin.Context) {
	profileID, ok := middleware.GetProfileID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile context missing"})
		return
	}

	var profile domain.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.Save(c.Request.Context(), profileID, &profile); err != nil {
		switch {
		case errors.Is(err, domain.ErrProfileNameRequired),
			errors.Is(err, domain.ErrProfileInvalidAge),
			errors.Is(err, domain.ErrProfileInvalidEmail),
			errors.Is(err, domain.ErrProfileInvalidChoice):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	profileID, ok := middleware.GetProfileID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile context missing"})
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	if file.Size > maxPhotoSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "photo exceeds the 5 MB limit"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	url, err := h.svc.SavePhoto(c.Request.Context(), profileID, src, file.Size, contentType)
	if err != nil {
		if errors.Is(err, domain.ErrPhotoUploadsDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "photo uploads are not available on this server"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "photo upload failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"photoUrl": url})
}
