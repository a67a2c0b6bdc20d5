package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"arbitrage-shift-tracker/internal/database"
)

// Handlers exposes the auth HTTP endpoints
type Handlers struct {
	service *Service
}

// NewHandlers creates the auth handlers
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts the auth endpoints. The me endpoint requires a valid
// token; register and login are public.
func (h *Handlers) RegisterRoutes(group *gin.RouterGroup, jwtManager *JWTManager) {
	group.POST("/register", h.Register)
	group.POST("/login", h.Login)
	group.GET("/me", Middleware(jwtManager), h.Me)
}

// Register handles POST /auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login handles POST /auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me handles GET /auth/me
func (h *Handlers) Me(c *gin.Context) {
	userID := c.GetString(ContextKeyUserID)
	user, err := h.service.Me(c.Request.Context(), userID)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "USER_NOT_FOUND"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL_ERROR"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func writeAuthError(c *gin.Context, err error) {
	var authErr AuthError
	if !errors.As(err, &authErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL_ERROR"})
		return
	}

	status := http.StatusBadRequest
	switch authErr.Code {
	case ErrInvalidCredentials.Code, ErrInvalidToken.Code, ErrTokenExpired.Code, ErrUnauthorized.Code:
		status = http.StatusUnauthorized
	case ErrForbidden.Code, ErrBadAdminSecret.Code:
		status = http.StatusForbidden
	case ErrUsernameExists.Code:
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": authErr.Code, "message": authErr.Message})
}
