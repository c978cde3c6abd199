package lessons

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Only links hosted on YouTube are accepted for lesson videos.
var youtubePattern = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.be)/.+`)

// RegisterValidators installs the custom lesson validation rules.
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation("youtube_url", func(fl validator.FieldLevel) bool {
		return youtubePattern.MatchString(fl.Field().String())
	})
}
