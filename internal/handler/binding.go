package handler

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"invoicer/internal/domain"
)

var registerTagNames sync.Once

// useJSONFieldNames makes validator report json tag names instead of Go field names.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
}

// bindJSON decodes and validates the request body into req. On failure it
// writes a VALIDATION_ERROR response and returns false.
func bindJSON(c *gin.Context, req interface{}) bool {
	return bindJSONWith(c, req, HandleError)
}

// bindLegacyJSON is bindJSON for the function-style routes.
func bindLegacyJSON(c *gin.Context, req interface{}) bool {
	return bindJSONWith(c, req, HandleLegacyError)
}

func bindJSONWith(c *gin.Context, req interface{}, fail func(*gin.Context, error)) bool {
	useJSONFieldNames()
	if err := c.ShouldBindJSON(req); err != nil {
		fail(c, toValidationError(err))
		return false
	}
	return true
}

func toValidationError(err error) *domain.ValidationError {
	verr := &domain.ValidationError{}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			verr.Add(fe.Field(), describeTag(fe))
		}
		return verr
	}
	return verr.Add("body", err.Error())
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// parseID reads a uuid path parameter. On failure it writes a
// VALIDATION_ERROR response and returns false.
func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		HandleError(c, domain.NewValidationError(param, "must be a valid UUID"))
		return uuid.Nil, false
	}
	return id, true
}
