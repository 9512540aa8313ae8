package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appauth "github.com/turtacn/InsureDoc-Intelligence/internal/application/auth"
	"github.com/turtacn/InsureDoc-Intelligence/internal/interfaces/http/middleware"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

type AuthHandler struct {
	svc appauth.Service
}

func NewAuthHandler(svc appauth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var in appauth.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, errors.InvalidArgument("invalid request body"))
		return
	}
	view, err := h.svc.Register(c.Request.Context(), &in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.New(errors.ErrCodeMissingCredentials, "Email and password are required."))
		return
	}
	pair, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	id, err := middleware.IdentityFrom(c)
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.svc.Me(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Logout handles POST /auth/logout.  The token stays rejected until it would
// have expired.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, _ := middleware.ClaimsFrom(c)
	if err := h.svc.Logout(c.Request.Context(), claims); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out."})
}
