package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the envelope written for every non-2xx response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// Error builds an ErrorBody from a short error title and a message.
func Error(title, message string) *ErrorBody {
	return &ErrorBody{Error: title, Message: message}
}

// Abort writes body with status and stops the handler chain.
func Abort(c *gin.Context, status int, body *ErrorBody) {
	c.AbortWithStatusJSON(status, body)
}

func BadRequest(c *gin.Context, title, message string) {
	Abort(c, http.StatusBadRequest, Error(title, message))
}

func NotFound(c *gin.Context, title, message string) {
	Abort(c, http.StatusNotFound, Error(title, message))
}

func InternalError(c *gin.Context, title, message string) {
	Abort(c, http.StatusInternalServerError, Error(title, message))
}
