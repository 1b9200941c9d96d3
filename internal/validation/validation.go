package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"dashkpis/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// FieldErrors maps a JSON field name to a human readable message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsFieldErrors unwraps err into FieldErrors when it carries them.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// decimals are checked as floats so min/max tags apply to them
	v.RegisterCustomTypeFunc(func(f reflect.Value) interface{} {
		d, ok := f.Interface().(decimal.Decimal)
		if !ok {
			return nil
		}
		return d.InexactFloat64()
	}, decimal.Decimal{})

	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).Valid()
	})
	return v
}

// Struct validates v and converts validator errors into FieldErrors.
func Struct(v interface{}) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "email":
		return "correo no válido"
	case "min":
		return "debe ser >= " + fe.Param()
	case "max":
		return "debe ser <= " + fe.Param()
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	case "password":
		return "mínimo 8 caracteres, una mayúscula, un número y un caracter especial"
	case "eqfield":
		return "las contraseñas no coinciden"
	case "role":
		return "rol no válido"
	}
	return fmt.Sprintf("no cumple %q", fe.Tag())
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email applies the same loose shape check the login and register forms use.
func Email(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

// StrongPassword requires 8+ characters drawn from letters, digits and
// passwordSpecials, with at least one upper case letter, one digit and one special.
func StrongPassword(pwd string) bool {
	if len(pwd) < 8 {
		return false
	}
	var upper, digit, special bool
	for _, r := range pwd {
		switch {
		case r > unicode.MaxASCII:
			return false
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		case unicode.IsLower(r):
		default:
			return false
		}
	}
	return upper && digit && special
}
