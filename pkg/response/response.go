package response

import "github.com/gin-gonic/gin"

// ErrorBody is the standard error envelope. Handlers return raw JSON
// payloads on success (the dashboard consumes them directly) and this
// envelope on failure.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Error sends an error response with an optional underlying cause.
func Error(c *gin.Context, code int, message string, err error) {
	body := ErrorBody{Error: message}
	if err != nil {
		body.Details = err.Error()
	}
	c.JSON(code, body)
}

// BadRequest sends a 400 bad request response
func BadRequest(c *gin.Context, message string) {
	Error(c, 400, message, nil)
}

// Conflict sends a 409 conflict response
func Conflict(c *gin.Context, message string) {
	Error(c, 409, message, nil)
}

// InternalError sends a 500 internal server error response
func InternalError(c *gin.Context, message string, err error) {
	Error(c, 500, message, err)
}
