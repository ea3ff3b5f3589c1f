// Package validators decodes and checks request input, turning every
// problem into a CodeValidation error the controllers can return as is.
package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
)

const maxBodyBytes = 1 << 20

// Field names in messages follow the JSON tags the storefront client sends.
var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	return v
}()

var ruleText = map[string]string{
	"required": "is required",
	"email":    "must be a valid email",
	"uuid":     "must be a valid id",
	"min":      "must be at least %s",
	"max":      "must be at most %s",
	"gt":       "must be greater than %s",
	"gte":      "must be at least %s",
	"eqfield":  "must match %s",
	"oneof":    "must be one of: %s",
}

// DecodeJSONBody reads one JSON object into dest, refusing unknown fields
// and trailing data, then applies dest's validate tags.
func DecodeJSONBody(r *http.Request, dest any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	defer io.Copy(io.Discard, body)

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return pkgerrors.New(pkgerrors.CodeValidation, "request body is empty")
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").
			WithDetails(map[string]any{"error": err.Error()})
	}
	if dec.More() {
		return pkgerrors.New(pkgerrors.CodeValidation, "request body must hold a single JSON object")
	}
	return ValidateStruct(dest)
}

// ValidateStruct reports the first failing field in the message and every
// failing field in the details.
func ValidateStruct(value any) error {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = describeRule(fe)
	}
	first := fieldErrs[0]
	return pkgerrors.New(pkgerrors.CodeValidation, first.Field()+" "+describeRule(first)).WithDetails(details)
}

func describeRule(fe validator.FieldError) string {
	text, ok := ruleText[fe.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.Contains(text, "%s") {
		return fmt.Sprintf(text, fe.Param())
	}
	return text
}
