package handlers

import (
	"errors"
	"net/http"

	"github.com/gatherly/api/internal/models"
	"github.com/gatherly/api/internal/services"
	"github.com/gin-gonic/gin"
)

type registerPayload struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginPayload struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Register(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerPayload
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("please fill in all fields"))
			return
		}

		user, token, err := u.Register(c.Request.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"token": token,
		})
	}
}

func Login(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginPayload
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("email and password are required"))
			return
		}

		user, token, err := u.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, models.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, models.ErrorResponse(err.Error()))
				return
			}
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"token": token,
		})
	}
}
