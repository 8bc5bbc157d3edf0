package handler

import (
	"github.com/gin-gonic/gin"

	appErr "github.com/xxxsen/portfolio/internal/pkg/errors"
	"github.com/xxxsen/portfolio/internal/pkg/response"
	"github.com/xxxsen/portfolio/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type signUpRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, appErr.ErrInvalid, "Error creating user")
		return
	}
	user, token, err := h.auth.SignUp(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		handleError(c, err, "Error creating user")
		return
	}
	response.Created(c, gin.H{
		"message": "User created successfully",
		"token":   token,
		"user":    user.View(),
	})
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, appErr.ErrInvalid, "Error logging in")
		return
	}
	user, token, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, err, "Error logging in")
		return
	}
	response.Success(c, gin.H{
		"message": "Logged in successfully",
		"token":   token,
		"user":    user.View(),
	})
}

// SignOut only acknowledges; bearer tokens are not tracked server side.
func (h *AuthHandler) SignOut(c *gin.Context) {
	response.Message(c, "Logged out successfully")
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err, "Internal server error")
		return
	}
	response.Success(c, gin.H{"user": user.View()})
}
