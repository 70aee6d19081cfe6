package httputil

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Audit event listings page through offset and limit query parameters.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// ParsePagination reads offset (default 0) and limit (default DefaultPageLimit, at most
// MaxPageLimit) from the query string. Both are zero when err is set.
func ParsePagination(c *gin.Context) (offset, limit int, err error) {
	offset, ok := queryInt(c, "offset", 0)
	if !ok || offset < 0 {
		return 0, 0, fmt.Errorf("invalid offset parameter: must be a non-negative integer")
	}

	limit, ok = queryInt(c, "limit", DefaultPageLimit)
	if !ok || limit < 1 || limit > MaxPageLimit {
		return 0, 0, fmt.Errorf("invalid limit parameter: must be between 1 and %d", MaxPageLimit)
	}

	return offset, limit, nil
}

func queryInt(c *gin.Context, name string, fallback int) (int, bool) {
	raw, present := c.GetQuery(name)
	if !present {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	return value, err == nil
}
