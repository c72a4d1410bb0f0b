package utils

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateStruct returns field -> message for every failed `validate` tag, or nil.
func ValidateStruct(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		out[strings.ToLower(fe.Field())] = msg
	}
	return out
}

// ParseAndValidate decodes the body into dst and runs struct validation.
// It writes the error response itself and returns false when the request must stop.
func ParseAndValidate(c *fiber.Ctx, dst interface{}) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, BadRequest(c, "Cannot parse JSON")
	}
	if errs := ValidateStruct(dst); errs != nil {
		return false, ValidationError(c, errs)
	}
	return true, nil
}
