package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/wanderplan/trip-planner-backend/internal/config"
	"github.com/wanderplan/trip-planner-backend/internal/database"
	"github.com/wanderplan/trip-planner-backend/internal/middleware"
	"github.com/wanderplan/trip-planner-backend/internal/models"
	"github.com/wanderplan/trip-planner-backend/internal/utils"
	"github.com/wanderplan/trip-planner-backend/pkg/jwt"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	jwtService             *jwt.Service
	userRepository         *database.UserRepository
	refreshTokenRepository *database.RefreshTokenRepository
	userSessionRepository  *database.UserSessionRepository
	config                 *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	jwtService *jwt.Service,
	userRepository *database.UserRepository,
	refreshTokenRepository *database.RefreshTokenRepository,
	userSessionRepository *database.UserSessionRepository,
	cfg *config.Config,
) *AuthHandler {
	return &AuthHandler{
		jwtService:             jwtService,
		userRepository:         userRepository,
		refreshTokenRepository: refreshTokenRepository,
		userSessionRepository:  userSessionRepository,
		config:                 cfg,
	}
}

// AuthResponse represents the response after a successful register or login
type AuthResponse struct {
	Message      string       `json:"message"`
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in_seconds"`
}

// RefreshTokenRequest represents the request to refresh an access token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshTokenResponse represents the response after refreshing a token
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in_seconds"`
}

// LogoutRequest represents the request to revoke a refresh token
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    "VALIDATION_ERROR",
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := h.userRepository.GetUserByEmail(email)
	if err != nil {
		respondError(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "email_taken",
			Message: "An account with this email already exists",
			Code:    "EMAIL_TAKEN",
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.config.Security.BcryptCost)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := h.userRepository.CreateUser(email, string(hash), strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName))
	if err != nil {
		respondError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User registered")

	h.issueTokens(c, http.StatusCreated, "Account created successfully", user)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.userRepository.GetUserByEmail(email)
	if err != nil {
		respondError(c, err)
		return
	}
	// Same response for unknown email and wrong password
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Invalid email or password",
			Code:    "INVALID_CREDENTIALS",
		})
		return
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"ip":      utils.GetRealIP(c),
	}).Info("User logged in")

	h.issueTokens(c, http.StatusOK, "Login successful", user)
}

// issueTokens generates an access/refresh token pair, persists the refresh
// token, records the login session, and writes the auth response.
func (h *AuthHandler) issueTokens(c *gin.Context, status int, message string, user *models.User) {
	accessToken, err := h.jwtService.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	clientIP := utils.GetRealIP(c)
	userAgent := utils.GetUserAgent(c)

	expiresAt := time.Now().Add(h.config.JWT.RefreshTokenExpiry)
	if err := h.refreshTokenRepository.StoreRefreshToken(user.ID, refreshToken, clientIP, userAgent, expiresAt); err != nil {
		respondError(c, err)
		return
	}

	// Session recording is best-effort; a failure must not block login
	device := utils.ParseUserAgent(userAgent)
	if _, err := h.userSessionRepository.RecordSession(user.ID, clientIP, device.DeviceType, device.OS, device.Browser, userAgent); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to record user session")
	}

	c.JSON(status, AuthResponse{
		Message:      message,
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(h.config.JWT.AccessTokenExpiry.Seconds()),
	})
}

// RefreshToken handles POST /api/v1/auth/refresh-token.
// Tokens are rotated: the presented refresh token is revoked and a new
// pair is issued.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "refresh_token is required",
		})
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired refresh token",
			Code:    "INVALID_REFRESH_TOKEN",
		})
		return
	}

	usable, err := h.refreshTokenRepository.IsTokenUsable(req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	if !usable {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Refresh token has been revoked",
			Code:    "TOKEN_REVOKED",
		})
		return
	}

	user, err := h.userRepository.GetUserByID(claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "User no longer exists",
			Code:    "USER_NOT_FOUND",
		})
		return
	}

	accessToken, err := h.jwtService.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	newRefreshToken, err := h.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	expiresAt := time.Now().Add(h.config.JWT.RefreshTokenExpiry)
	if err := h.refreshTokenRepository.StoreRefreshToken(user.ID, newRefreshToken, utils.GetRealIP(c), utils.GetUserAgent(c), expiresAt); err != nil {
		respondError(c, err)
		return
	}

	if err := h.refreshTokenRepository.RevokeToken(req.RefreshToken); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to revoke rotated refresh token")
	}

	c.JSON(http.StatusOK, RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    int(h.config.JWT.AccessTokenExpiry.Seconds()),
	})
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "refresh_token is required",
		})
		return
	}

	if err := h.refreshTokenRepository.RevokeToken(req.RefreshToken); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// LogoutAll handles POST /api/v1/auth/logout-all, revoking every refresh
// token the caller holds
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	if err := h.refreshTokenRepository.RevokeAllUserTokens(userCtx.UserID); err != nil {
		respondError(c, err)
		return
	}

	logrus.WithField("user_id", userCtx.UserID).Info("All sessions revoked")

	c.JSON(http.StatusOK, gin.H{"message": "Logged out from all devices"})
}

// GetProfile handles GET /api/v1/auth/profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	user, err := h.userRepository.GetUserByID(userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "User not found",
			Code:    "NOT_FOUND",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfile handles PUT /api/v1/auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	if err := h.userRepository.UpdateProfile(userCtx.UserID, strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName)); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.userRepository.GetUserByID(userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// ListSessions handles GET /api/v1/auth/sessions
func (h *AuthHandler) ListSessions(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	sessions, err := h.userSessionRepository.ListSessionsByUser(userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"count":    len(sessions),
	})
}
