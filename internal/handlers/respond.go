package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"marketplace-service/internal/models"
)

// All endpoints answer in the same envelope: {"success": true, "data": ...}
// on success, {"success": false, "message": ...} on failure.

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

func respondPage(c *gin.Context, data any, page models.Pagination) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "pagination": page})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// pageParam reads ?page=, clamping to 1.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
