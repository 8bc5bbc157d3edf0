package handler

import (
	"github.com/gin-gonic/gin"

	appErr "github.com/xxxsen/portfolio/internal/pkg/errors"
	"github.com/xxxsen/portfolio/internal/pkg/response"
	"github.com/xxxsen/portfolio/internal/service"
)

type PasswordHandler struct {
	reset *service.PasswordResetService
}

func NewPasswordHandler(reset *service.PasswordResetService) *PasswordHandler {
	return &PasswordHandler{reset: reset}
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type verifyCodeRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func (h *PasswordHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, appErr.ErrInvalid, "Error sending email")
		return
	}
	if err := h.reset.RequestReset(c.Request.Context(), req.Email); err != nil {
		handleError(c, err, "Error sending email")
		return
	}
	response.Message(c, "Verification code sent to email")
}

func (h *PasswordHandler) VerifyCode(c *gin.Context) {
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, appErr.ErrInvalid, "Internal server error")
		return
	}
	if err := h.reset.VerifyCode(c.Request.Context(), req.Email, req.Code); err != nil {
		handleError(c, err, "Internal server error")
		return
	}
	response.Message(c, "Code verified successfully")
}

func (h *PasswordHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, appErr.ErrInvalid, "Error resetting password")
		return
	}
	if err := h.reset.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		handleError(c, err, "Error resetting password")
		return
	}
	response.Message(c, "Password reset successfully")
}
