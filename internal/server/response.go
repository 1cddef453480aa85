package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/leadflow/internal/common"
)

// Response is the JSON envelope of every API reply.
type Response struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Data: data})
}

func fail(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, Response{Error: common.UserMessage(err)})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidFilter), errors.Is(err, common.ErrInvalidMonth):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrNoSession):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
