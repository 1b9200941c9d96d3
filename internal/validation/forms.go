package validation

import (
	"strings"

	"dashkpis/internal/models"
)

type LoginForm struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
	Remember bool   `json:"remember" form:"remember"`
}

type RegisterForm struct {
	Name            string `json:"nombre" form:"nombre" validate:"required"`
	Username        string `json:"username" form:"username" validate:"required"`
	Email           string `json:"email" form:"email" validate:"required"`
	Password        string `json:"password" form:"password" validate:"required,password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" validate:"required,eqfield=Password"`
	Role            string `json:"rol" form:"rol" validate:"required,role"`
}

// Check runs the login form rules: both fields present and a well formed e-mail.
func (f *LoginForm) Check() error {
	f.Email = strings.TrimSpace(f.Email)
	if err := Struct(f); err != nil {
		return err
	}
	if !Email(f.Email) {
		return FieldErrors{"email": "correo no válido"}
	}
	return nil
}

// Check runs the register form rules in the order the form reports them:
// missing fields, e-mail shape, password policy, confirmation.
func (f *RegisterForm) Check() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)

	missing := FieldErrors{}
	for field, val := range map[string]string{
		"nombre":           f.Name,
		"username":         f.Username,
		"email":            f.Email,
		"password":         strings.TrimSpace(f.Password),
		"confirm_password": strings.TrimSpace(f.ConfirmPassword),
		"rol":              f.Role,
	} {
		if val == "" {
			missing[field] = "es obligatorio"
		}
	}
	if len(missing) > 0 {
		return missing
	}
	if !Email(f.Email) {
		return FieldErrors{"email": "correo no válido"}
	}
	return Struct(f)
}

func (f RegisterForm) Registration() models.Registration {
	return models.Registration{
		Email:    f.Email,
		Password: f.Password,
		Role:     models.UserRole(f.Role),
		Name:     f.Name,
	}
}
