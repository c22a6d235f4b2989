package utils

import "github.com/gin-gonic/gin"

// JSONResponse is the envelope used by the few JSON endpoints (health, API
// 404s); the site itself renders HTML.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a standard success envelope.
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(200, JSONResponse{Code: 0, Message: "success", Data: data})
}

// Error writes a standard error envelope.
func Error(ctx *gin.Context, status int, code int, message string) {
	ctx.JSON(status, JSONResponse{Code: code, Message: message})
}
