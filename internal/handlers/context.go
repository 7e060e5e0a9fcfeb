package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Hasninemamud/AuctionCraft/internal/middleware"
)

// currentUserID pulls the authenticated user's id out of the request context.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := c.Get(middleware.ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw.(string))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func currentUserIsStaff(c *gin.Context) bool {
	isStaff, _ := c.Get(middleware.ContextIsStaff)
	return isStaff == true
}
