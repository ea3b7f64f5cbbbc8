// Package api is the HTTP surface: portal endpoints for applicants,
// admin endpoints for the back office, and auth.
package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/atlasgate/visaport/internal/auth"
	"github.com/atlasgate/visaport/internal/catalog"
	"github.com/atlasgate/visaport/internal/config"
	"github.com/atlasgate/visaport/internal/content"
	apperrors "github.com/atlasgate/visaport/internal/errors"
	"github.com/atlasgate/visaport/internal/models"
	"github.com/atlasgate/visaport/internal/portal"
)

// Handler carries the service dependencies for every endpoint.
type Handler struct {
	db       *gorm.DB
	store    *catalog.Store
	portal   *portal.Service
	content  *content.Service
	settings *config.Service
	jwt      *auth.JWTService
	audit    *AuditService
}

// NewHandler wires the API handler.
func NewHandler(db *gorm.DB, store *catalog.Store, portalSvc *portal.Service,
	contentSvc *content.Service, settings *config.Service, jwtService *auth.JWTService) *Handler {
	return &Handler{
		db:       db,
		store:    store,
		portal:   portalSvc,
		content:  contentSvc,
		settings: settings,
		jwt:      jwtService,
		audit:    NewAuditService(db),
	}
}

// respondError maps any error onto the JSON error envelope.
func respondError(c *gin.Context, err error) {
	status, body := apperrors.ToHTTPError(err)
	if status == http.StatusInternalServerError {
		log.Printf("Error: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, body)
}

// HealthCheck reports service and database liveness.
func (h *Handler) HealthCheck(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.Ping() != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}

// =============================================================================
// AUTH
// =============================================================================

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues a token pair.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewBadRequestError("email and password are required"))
		return
	}

	var user models.User
	err := h.db.Where("email = ? AND is_active = ?", req.Email, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, apperrors.NewUnauthorizedError("invalid credentials"))
		return
	}
	if err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		respondError(c, apperrors.NewUnauthorizedError("invalid credentials"))
		return
	}

	pair, err := h.jwt.GenerateTokenPair(user.ID, user.Email, user.Role)
	if err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}

	now := time.Now()
	if err := h.db.Model(&user).UpdateColumn("last_login_at", now).Error; err != nil {
		log.Printf("Warning: failed to stamp last login for %s: %v", user.Email, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"tokens": pair,
		"user": gin.H{
			"id":        user.ID,
			"email":     user.Email,
			"full_name": user.FullName,
			"role":      user.Role,
		},
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh exchanges a refresh token for a fresh pair.
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewBadRequestError("refresh_token is required"))
		return
	}
	pair, err := h.jwt.Refresh(req.RefreshToken)
	if err != nil {
		respondError(c, apperrors.NewUnauthorizedError("invalid refresh token"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": pair})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *gin.Context) {
	userID := c.MustGet(auth.ContextUserID).(uuid.UUID)

	var user models.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		respondError(c, apperrors.NewNotFoundError("user"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":            user.ID,
		"email":         user.Email,
		"full_name":     user.FullName,
		"role":          user.Role,
		"last_login_at": user.LastLoginAt,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// ChangePassword rotates the authenticated user's password.
func (h *Handler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewBadRequestError("current and new password (min 8 chars) are required"))
		return
	}

	userID := c.MustGet(auth.ContextUserID).(uuid.UUID)
	var user models.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		respondError(c, apperrors.NewNotFoundError("user"))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		respondError(c, apperrors.NewUnauthorizedError("current password is wrong"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}
	if err := h.db.Model(&user).UpdateColumn("password_hash", string(hash)).Error; err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}
