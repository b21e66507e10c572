package validator

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var (
	sanitizer *bluemonday.Policy

	permissionPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:*-]*$`)
)

// Init registers the custom tags on gin's binding engine.
func Init() {
	sanitizer = bluemonday.UGCPolicy()

	if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerCustomValidations(engine)
	}
}

func registerCustomValidations(v *validator.Validate) {
	v.RegisterValidation("no_html", validateNoHTML)
	v.RegisterValidation("permission", validatePermission)
}

// SanitizeHTML filters rich text through the UGC policy.
func SanitizeHTML(html string) string {
	if sanitizer == nil {
		sanitizer = bluemonday.UGCPolicy()
	}
	return sanitizer.Sanitize(html)
}

func validateNoHTML(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return !strings.Contains(value, "<") && !strings.Contains(value, ">")
}

// validatePermission accepts blank entries, they are dropped during normalization.
func validatePermission(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	return value == "" || permissionPattern.MatchString(value)
}
