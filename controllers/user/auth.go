package userControllers

import (
	"net/http"

	"github.com/chars3/caplink-store/controllers/common"
	"github.com/chars3/caplink-store/models"
	"github.com/chars3/caplink-store/services/user"
	"github.com/gin-gonic/gin"
)

type RegisterInput struct {
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8"`
	Name     string      `json:"name" binding:"required"`
	Role     models.Role `json:"role" binding:"omitempty,oneof=CLIENT SELLER"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /auth/register
func Register(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			common.BadRequest(c, err)
			return
		}

		session, err := svc.Register(c.Request.Context(), user.RegisterInput{
			Email:    input.Email,
			Password: input.Password,
			Name:     input.Name,
			Role:     input.Role,
		})
		if err != nil {
			common.RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, session)
	}
}

// POST /auth/login
func Login(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			common.BadRequest(c, err)
			return
		}

		session, err := svc.Authenticate(c.Request.Context(), input.Email, input.Password)
		if err != nil {
			common.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, session)
	}
}
