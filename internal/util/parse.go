package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParseInt parses a string to an integer, returning defaultValue if parsing fails
func ParseInt(s string, defaultValue int) int {
	if val, err := strconv.Atoi(s); err == nil {
		return val
	}
	return defaultValue
}

// ParseUintParam parses a positive integer route parameter.
func ParseUintParam(c *gin.Context, name string) (uint, bool) {
	val, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || val == 0 {
		return 0, false
	}
	return uint(val), true
}

// Pagination reads limit/offset query parameters, clamping limit to maxLimit.
// List endpoints never return more than limit rows; continuation is the
// caller's responsibility.
func Pagination(c *gin.Context, defaultLimit, maxLimit int) (limit, offset int) {
	limit = ParseInt(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)), defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset = ParseInt(c.DefaultQuery("offset", "0"), 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
