package models

import "strings"

type UserRole string

const (
	RolePM          UserRole = "PM"
	RoleContributor UserRole = "Colaborador"
	RoleStakeholder UserRole = "Stakeholder"
)

func (r UserRole) Valid() bool {
	return r == RolePM || r == RoleContributor || r == RoleStakeholder
}

type User struct {
	ID           int64    `json:"id_usuario"`
	Email        string   `json:"email"`
	Role         UserRole `json:"rol"`
	Name         string   `json:"nombre,omitempty"`
	RegisteredAt string   `json:"fecha_registro,omitempty"`
	Active       bool     `json:"activo"`
}

// DisplayName falls back to a name derived from the e-mail local part,
// e.g. "ana.maria_lopez@x.com" becomes "Ana Maria Lopez".
func (u User) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	base := u.Email
	if i := strings.IndexByte(base, '@'); i >= 0 {
		base = base[:i]
	}
	base = strings.NewReplacer(".", " ", "_", " ").Replace(base)
	words := strings.Fields(base)
	if len(words) == 0 {
		return u.Email
	}
	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[:1])) + strings.ToLower(string(r[1:]))
	}
	return strings.Join(words, " ")
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     UserRole `json:"rol"`
	Name     string   `json:"nombre,omitempty"`
}
