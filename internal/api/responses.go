package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"arbitrage-shift-tracker/internal/database"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// respondRepoError maps repository errors to HTTP statuses
func respondRepoError(c *gin.Context, err error) {
	if errors.Is(err, database.ErrNotFound) {
		respondError(c, http.StatusNotFound, "not found")
		return
	}
	respondError(c, http.StatusInternalServerError, err.Error())
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// periodQuery reads optional from/to date bounds (YYYY-MM-DD). Zero times
// mean open-ended.
func periodQuery(c *gin.Context) (from, to time.Time, ok bool) {
	ok = true
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD")
			return from, to, false
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD")
			return from, to, false
		}
		to = t
	}
	return from, to, ok
}
