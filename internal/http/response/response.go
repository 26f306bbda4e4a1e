package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cinematch-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAppError renders an apierr.Error carrying its own status and code.
func RespondAppError(c *gin.Context, err *apierr.Error) {
	status := err.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	RespondError(c, status, err.Code, err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
