package httpx

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator builds a validator that reports field names from json tags,
// so validation problems match the wire format clients sent.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// FieldErrors flattens validator errors into a field -> message map suitable
// for ValidationProblem responses.
func FieldErrors(err error) map[string]string {
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			switch fe.Tag() {
			case "required":
				fields[fe.Field()] = "this field is required"
			case "email":
				fields[fe.Field()] = "must be a valid email address"
			case "youtube_url":
				fields[fe.Field()] = "only YouTube links are allowed"
			case "min":
				fields[fe.Field()] = "too short"
			case "max":
				fields[fe.Field()] = "too long"
			case "gt", "gte":
				fields[fe.Field()] = "must be positive"
			default:
				fields[fe.Field()] = "failed on " + fe.Tag()
			}
		}
	}
	return fields
}
