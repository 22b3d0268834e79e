package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cupidworks/valentine-backend/internal/services"
	"github.com/cupidworks/valentine-backend/pkg/response"
)

// AuthHandler serves the credentialed v1 auth surface.
type AuthHandler struct {
	users     *services.UserService
	cookieTTL time.Duration
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(users *services.UserService, cookieTTL time.Duration) *AuthHandler {
	if cookieTTL <= 0 {
		cookieTTL = 24 * time.Hour
	}
	return &AuthHandler{users: users, cookieTTL: cookieTTL}
}

type signupRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,phone10"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// Signup handles POST /v1/auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if !bindAndValidate(c, &req) {
		return
	}

	session, err := h.users.Signup(requestContext(c), req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookie(c, session.Token)
	response.Success(c, http.StatusCreated, gin.H{
		"user":  session.User,
		"token": session.Token,
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	session, err := h.users.Login(requestContext(c), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookie(c, session.Token)
	response.Success(c, http.StatusOK, gin.H{
		"user":  session.User,
		"token": session.Token,
	})
}

// Me handles GET /v1/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.users.Get(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// Logout handles POST /v1/auth/logout by clearing the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetCookie("token", token, int(h.cookieTTL.Seconds()), "/", "", false, true)
}
