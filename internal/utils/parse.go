package utils

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	appErrors "github.com/stylemate/platform/internal/errors"
	"github.com/stylemate/platform/internal/utils/response"
)

// ParseAndValidate decodes the JSON body into dest and validates it, writing
// the failure response itself. Returns false when the handler should bail out.
func ParseAndValidate(r *http.Request, w http.ResponseWriter, dest any, validate *validator.Validate) bool {

	if err := DecodeJSONBody(r, dest); err != nil {
		response.Error(w, appErrors.BadRequestError(err.Error()))
		return false
	}

	if err := ValidateStruct(validate, dest); err != nil {

		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			response.ValidationError(w, validationErrs)
			return false
		}

		response.Error(w, appErrors.ValidationError(err.Error()))
		return false
	}

	return true
}
