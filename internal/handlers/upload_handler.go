package handlers

import (
	"net/http"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/gatherly/api/internal/helpers"
	"github.com/gatherly/api/internal/models"
	"github.com/gin-gonic/gin"
)

// UploadImage receives a multipart image and stores it on Cloudinary,
// returning the URL the client puts on the event as imageUrl.
func UploadImage(cld *cloudinary.Cloudinary) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cld == nil {
			c.JSON(http.StatusServiceUnavailable, models.ErrorResponse("image upload is not configured"))
			return
		}

		fileHeader, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("No file uploaded"))
			return
		}
		if !helpers.IsImageFile(fileHeader.Filename) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("Images only! (jpg, jpeg, png, webp)"))
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		defer file.Close()

		url, err := helpers.UploadImage(c.Request.Context(), cld, file, helpers.EventsFolder)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, gin.H{"url": url})
	}
}
