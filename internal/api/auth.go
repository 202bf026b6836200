package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/flood-response/internal/auth"
)

type AuthHandler struct {
	auth *auth.Service
}

func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{auth: authService}
}

func (h *AuthHandler) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/auth/signup", h.signUp)
	r.POST("/api/auth/signin", h.signIn)
	r.POST("/api/auth/signout", h.signOut)
	r.GET("/api/session", h.session)
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) signUp(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required."})
		return
	}

	sess, err := h.auth.SignUp(c.Request.Context(), auth.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		status, msg := signUpError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": sess.Token,
		"user":  sess.User,
	})
}

func (h *AuthHandler) signIn(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required."})
		return
	}

	sess, err := h.auth.SignIn(c.Request.Context(), auth.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredential) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred during login. Please try again."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": sess.Token,
		"user":  sess.User,
	})
}

func (h *AuthHandler) signOut(c *gin.Context) {
	if err := h.auth.SignOut(c.Request.Context(), bearerToken(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred during logout. Please try again."})
		return
	}
	c.Status(http.StatusNoContent)
}

// session reports the current identity without requiring one; the client
// polls this to drive its loading/redirect state.
func (h *AuthHandler) session(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	user, err := h.auth.Identify(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          user,
	})
}

// signUpError maps the enumerated identity errors to fixed user-facing
// messages; anything unrecognized falls back to a generic one.
func signUpError(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict, "The email address is already in use by another account."
	case errors.Is(err, auth.ErrMalformedEmail):
		return http.StatusBadRequest, "The email address is not valid."
	case errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest, "The password is too weak (should be at least 6 characters)."
	default:
		return http.StatusInternalServerError, "An error occurred during signup. Please try again."
	}
}
