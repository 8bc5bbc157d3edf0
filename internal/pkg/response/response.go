package response

import "github.com/gin-gonic/gin"

type ErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, data)
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, data)
}

func Message(c *gin.Context, message string) {
	c.JSON(200, gin.H{"message": message})
}

func Error(c *gin.Context, status int, message, errText string) {
	c.JSON(status, ErrorBody{Message: message, Error: errText})
}
