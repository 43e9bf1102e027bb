package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/dental-clinic/internal/httperr"
	"github.com/BruksfildServices01/dental-clinic/internal/middleware"
)

type MeHandler struct {
	users UserStore
}

func NewMeHandler(users UserStore) *MeHandler {
	return &MeHandler{users: users}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	userID, ok := c.Get(middleware.ContextUserID)
	if !ok {
		httperr.Unauthorized(c, "user_not_in_context", "Authentication required.")
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), userID.(uint))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	body := gin.H{
		"user": gin.H{
			"id":        user.ID,
			"name":      user.Name,
			"email":     user.Email,
			"role":      user.Role,
			"branch_id": user.BranchID,
		},
	}
	if user.Branch != nil {
		body["branch"] = gin.H{
			"id":       user.Branch.ID,
			"name":     user.Branch.Name,
			"phone":    user.Branch.Phone,
			"address":  user.Branch.Address,
			"timezone": user.Branch.Timezone,
		}
	}

	c.JSON(http.StatusOK, body)
}
