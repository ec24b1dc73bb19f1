package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetOwnerID extracts the authenticated owner ID from the Gin context
func GetOwnerID(c *gin.Context) *uuid.UUID {
	ownerIDVal, exists := c.Get("owner_id")
	if !exists {
		return nil
	}
	ownerID, ok := ownerIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &ownerID
}

// parsePositiveInt parses a string as a positive integer
func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
