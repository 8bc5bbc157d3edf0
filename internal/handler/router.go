package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/portfolio/internal/middleware"
)

type RouterDeps struct {
	Auth           *AuthHandler
	OAuth          *OAuthHandler
	Password       *PasswordHandler
	Tokens         middleware.TokenVerifier
	ResetRateLimit time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := api.Group("/auth")
	auth.POST("/signup", deps.Auth.SignUp)
	auth.POST("/signin", deps.Auth.SignIn)
	auth.POST("/signout", deps.Auth.SignOut)
	auth.GET("/me", middleware.JWTAuth(deps.Tokens), deps.Auth.Me)
	auth.GET("/google", deps.OAuth.Redirect("google"))
	auth.GET("/google/callback", deps.OAuth.Callback("google"))

	password := api.Group("/password")
	password.POST("/forgot-password", middleware.RateLimit(deps.ResetRateLimit), deps.Password.ForgotPassword)
	password.POST("/verify-code", deps.Password.VerifyCode)
	password.POST("/reset-password", deps.Password.ResetPassword)
}
