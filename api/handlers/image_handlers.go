package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"inkpress/dto"
	"inkpress/media"
)

type UploadImageRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// UploadImageHandler godoc
// @Summary      Upload image
// @Description  Accepts a multipart "image" file or a JSON body with a remote url
// @Tags         images
// @Accept       multipart/form-data
// @Accept       json
// @Produce      json
// @Success      201  {object}  dto.Response
// @Security     BearerAuth
// @Router       /images [post]
func UploadImageHandler(store media.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if file, err := c.FormFile("image"); err == nil {
			f, err := file.Open()
			if err != nil {
				respondError(c, err)
				return
			}
			defer f.Close()

			img, err := store.Upload(c.Request.Context(), f)
			if err != nil {
				c.JSON(http.StatusBadRequest, dto.Fail(err.Error()))
				return
			}
			c.JSON(http.StatusCreated, dto.OK("image uploaded", img))
			return
		}

		var req UploadImageRequest
		if !bindAndValidate(c, &req) {
			return
		}
		img, err := store.UploadFromURL(c.Request.Context(), req.URL)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.Fail(err.Error()))
			return
		}
		c.JSON(http.StatusCreated, dto.OK("image uploaded", img))
	}
}

// DeleteImageHandler godoc
// @Summary      Delete image
// @Description  Removes a stored object by its public id
// @Tags         images
// @Param        publicId  path  string  true  "Object public id"
// @Produce      json
// @Success      200  {object}  dto.Response
// @Security     BearerAuth
// @Router       /images/{publicId} [delete]
func DeleteImageHandler(store media.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		publicID := strings.TrimPrefix(c.Param("publicId"), "/")
		if publicID == "" {
			c.JSON(http.StatusBadRequest, dto.Fail("public id is required"))
			return
		}
		if err := store.DeleteImage(c.Request.Context(), publicID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.OK("image deleted", nil))
	}
}
