package api

import (
	"strconv"

	"parking-lot-manager/internal/handler/httperr"

	"github.com/gin-gonic/gin"
)

// pathID parses a positive int64 path parameter, aborting with 400 otherwise.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		if err == nil {
			err = strconv.ErrRange
		}
		httperr.BadRequest(c, err, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// queryInt returns def when the parameter is absent.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		if err == nil {
			err = strconv.ErrRange
		}
		httperr.BadRequest(c, err, "Invalid "+name)
		return 0, false
	}
	return v, true
}
