package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/postboard/pkg/apperror"
	"github.com/oksasatya/postboard/pkg/response"
	"github.com/oksasatya/postboard/pkg/validation"
)

// bindJSON binds and validates the body into dst, writing a VALIDATION_ERROR
// response with per-field details on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Fail(c, apperror.Validation("invalid payload", validation.ToDetails(err)))
		return false
	}
	return true
}
