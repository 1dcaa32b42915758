package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkpress/dto"
	"inkpress/logger"
	"inkpress/services"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report violations under their json names so clients can match fields
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindAndValidate decodes the JSON body and runs struct validation,
// responding with a per-field error map when anything is violated.
func bindAndValidate(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("invalid request body"))
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = validationMessage(fe)
			}
			c.JSON(http.StatusBadRequest, dto.FailFields("validation failed", fields))
			return false
		}
		c.JSON(http.StatusBadRequest, dto.Fail("invalid request body"))
		return false
	}
	return true
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "url":
		return "must be a valid url"
	default:
		return "is invalid"
	}
}

// respondError maps the service error taxonomy onto HTTP statuses.
// Infrastructure failures are logged and surfaced as a generic 500 so no
// internals leak to clients.
func respondError(c *gin.Context, err error) {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, dto.FailFields("validation failed", ve.Fields))
		return
	}
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, dto.Fail("resource not found"))
		return
	}
	if errors.Is(err, services.ErrPermissionDenied) {
		c.JSON(http.StatusForbidden, dto.Fail("permission denied"))
		return
	}
	var re *services.RuleError
	if errors.As(err, &re) {
		c.JSON(http.StatusBadRequest, dto.Fail(re.Reason))
		return
	}

	logger.Log.Errorf("request failed: %v", err)
	c.JSON(http.StatusInternalServerError, dto.Fail("internal server error"))
}

func viewerID(actor *services.Actor) *primitive.ObjectID {
	if actor == nil {
		return nil
	}
	return &actor.ID
}
