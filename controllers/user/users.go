package userControllers

import (
	"net/http"

	"github.com/chars3/caplink-store/controllers/common"
	"github.com/chars3/caplink-store/middleware"
	"github.com/chars3/caplink-store/services/user"
	"github.com/gin-gonic/gin"
)

type UpdateUserInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=8"`
}

// GET /users/me
func GetUser(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svc.Get(c.Request.Context(), middleware.CurrentUserID(c))
		if err != nil {
			common.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// PATCH /users/me
func UpdateUser(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdateUserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			common.BadRequest(c, err)
			return
		}

		u, err := svc.Update(c.Request.Context(), middleware.CurrentUserID(c), user.UpdateInput{
			Name:     input.Name,
			Email:    input.Email,
			Password: input.Password,
		})
		if err != nil {
			common.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// DELETE /users/me
func DeleteUser(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Remove(c.Request.Context(), middleware.CurrentUserID(c)); err != nil {
			common.RespondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
