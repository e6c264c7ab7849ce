package user

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/EmpoweredVote/zone-incidents/internal/apperr"
	"github.com/EmpoweredVote/zone-incidents/internal/db"
	"github.com/EmpoweredVote/zone-incidents/internal/models"
)

// Service stores users and their password hashes.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateInput is a signup payload. Password is the raw secret; it is hashed
// before anything is written.
type CreateInput struct {
	Name     *string
	Email    string
	Username string
	Password string
	Phone    *string
	UserType UserType
}

// UpdateInput carries the fields to change. Nil fields are left alone.
type UpdateInput struct {
	Name     *string
	Email    *string
	Username *string
	Password *string
	Phone    *string
	UserType *UserType
}

// Create rejects an email already held by a USER account, then stores the
// user with a salted hash of the password.
func (s *Service) Create(ctx context.Context, in CreateInput) (*User, error) {
	if strings.TrimSpace(in.Email) == "" || strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return nil, apperr.Invalid("email, username and password are required")
	}
	if in.UserType == "" {
		in.UserType = TypeUser
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := User{
		Name:         in.Name,
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hashed,
		Phone:        in.Phone,
		UserType:     in.UserType,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing User
		err := tx.Where("email = ? AND user_type = ?", in.Email, TypeUser).First(&existing).Error
		if err == nil {
			return apperr.Conflict("user with email %s already exists as a %s", in.Email, in.UserType)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&u).Error
	})
	if err != nil {
		return nil, db.Translate(err, "user")
	}
	return &u, nil
}

// Update applies in to the user with the given id. A new password is hashed
// with a fresh salt.
func (s *Service) Update(ctx context.Context, id models.ID, in UpdateInput) (*User, error) {
	updates := map[string]any{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Email != nil {
		updates["email"] = *in.Email
	}
	if in.Username != nil {
		updates["username"] = *in.Username
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if in.UserType != nil {
		updates["user_type"] = *in.UserType
	}
	if in.Password != nil {
		hashed, err := HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hashed
	}

	var u User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&u, "id = ?", id).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&u).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&u, "id = ?", id).Error
	})
	if err != nil {
		return nil, db.Translate(err, "user")
	}
	return &u, nil
}

// FindOneByID returns nil, nil when no user has the id.
func (s *Service) FindOneByID(ctx context.Context, id models.ID) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, db.Translate(err, "user")
	}
	return &u, nil
}

func (s *Service) FindAll(ctx context.Context) ([]User, error) {
	users := []User{}
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, db.Translate(err, "users")
	}
	return users, nil
}
