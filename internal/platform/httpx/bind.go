package httpx

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/amexing/amexing-ops/internal/shared"
)

var (
	errMalformedBody = shared.Validation("request.malformed", "El cuerpo de la solicitud no es JSON válido")
	errInvalidID     = shared.Validation("request.invalid_id", "Identificador inválido")
)

// InvalidID is returned by handlers when a path identifier is malformed.
func InvalidID() error { return errInvalidID }

// NewValidator returns a validator that reports JSON field names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Bind decodes the JSON body into dst and validates it.
func Bind(r *http.Request, v *validator.Validate, dst any) error {
	if err := DecodeJSON(r, dst); err != nil {
		return errMalformedBody.Wrap(err)
	}
	if v == nil {
		return nil
	}
	return Validate(v, dst)
}

// BindOptional is Bind for endpoints whose body may be omitted entirely.
func BindOptional(r *http.Request, v *validator.Validate, dst any) error {
	if err := DecodeJSON(r, dst); err != nil {
		if !errors.Is(err, io.EOF) {
			return errMalformedBody.Wrap(err)
		}
	}
	if v == nil {
		return nil
	}
	return Validate(v, dst)
}

// Validate runs struct validation and converts failures into a validation
// error listing the offending fields.
func Validate(v *validator.Validate, dst any) error {
	err := v.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, describeField(fe))
	}
	return shared.Validation("request.invalid", strings.Join(parts, "; ")).Wrap(err)
}

func describeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s es obligatorio", fe.Field())
	case "email":
		return fmt.Sprintf("%s debe ser un correo válido", fe.Field())
	case "max":
		return fmt.Sprintf("%s excede la longitud máxima de %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s requiere al menos %s", fe.Field(), fe.Param())
	case "gt", "gte":
		return fmt.Sprintf("%s debe ser mayor a %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s debe ser uno de: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s es inválido", fe.Field())
	}
}
