package user

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/EmpoweredVote/zone-incidents/internal/apperr"
	"github.com/EmpoweredVote/zone-incidents/internal/models"
)

type UserType string

const (
	TypeUser      UserType = "USER"
	TypeAuthority UserType = "AUTHORITY"
	TypeAdmin     UserType = "ADMIN"
)

// ParseUserType normalizes s ("authority", " User ") and checks it against
// the known roles. An empty string means USER.
func ParseUserType(s string) (UserType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TypeUser, nil
	}
	t := UserType(cases.Upper(language.Und).String(s))
	switch t {
	case TypeUser, TypeAuthority, TypeAdmin:
		return t, nil
	}
	return "", apperr.Invalid("unknown user_type %q", s)
}

// User is a registered account. Email is unique among USER accounts only;
// authority accounts may reuse an address.
type User struct {
	ID           models.ID `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         *string   `json:"name"`
	Email        string    `gorm:"not null;uniqueIndex:idx_users_email_user,where:user_type = 'USER'" json:"email"`
	Username     string    `gorm:"not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Phone        *string   `json:"phone"`
	UserType     UserType  `gorm:"size:32;not null;default:'USER';index" json:"user_type"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
