// Package user handles registration, login and account management.
package user

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/chars3/caplink-store/apperr"
	"github.com/chars3/caplink-store/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	bcryptCost        = 10
	minPasswordLength = 8
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

type Service struct {
	db     *gorm.DB
	tokens TokenIssuer
}

func NewService(db *gorm.DB, tokens TokenIssuer) *Service {
	return &Service{db: db, tokens: tokens}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     models.Role
}

type UpdateInput struct {
	Name     *string
	Email    *string
	Password *string
}

// Session is what a successful register or login returns.
type Session struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Invalid("name is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperr.Invalidf("password must be at least %d characters", minPasswordLength)
	}
	role := in.Role
	if role == "" {
		role = models.RoleClient
	}
	if !role.Valid() {
		return nil, apperr.Invalid("role must be CLIENT or SELLER")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, apperr.Store("failed to hash password", err)
	}

	u := models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		Active:       true,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureEmailFree(tx, email, ""); err != nil {
			return err
		}
		if err := tx.Create(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("email already registered")
			}
			return apperr.Store("failed to create user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("user_id", u.ID).Str("role", string(u.Role)).Msg("user registered")
	return s.session(&u)
}

// Authenticate checks credentials of an active user. Every failure looks the
// same to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		return nil, apperr.Store("failed to fetch user", err)
	}
	if !u.Active || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	return s.session(&u)
}

func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Store("failed to fetch user", err)
	}
	return &u, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&u, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("user not found")
			}
			return apperr.Store("failed to fetch user", err)
		}

		updates := make(map[string]interface{})
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return apperr.Invalid("name cannot be empty")
			}
			updates["name"] = name
		}
		if in.Email != nil {
			email, err := normalizeEmail(*in.Email)
			if err != nil {
				return err
			}
			if email != u.Email {
				if err := ensureEmailFree(tx, email, u.ID); err != nil {
					return err
				}
				updates["email"] = email
			}
		}
		if in.Password != nil {
			if len(*in.Password) < minPasswordLength {
				return apperr.Invalidf("password must be at least %d characters", minPasswordLength)
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcryptCost)
			if err != nil {
				return apperr.Store("failed to hash password", err)
			}
			updates["password_hash"] = string(hash)
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&u).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("email already registered")
			}
			return apperr.Store("failed to update user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Remove deactivates a seller, keeping their catalog and sales history, and
// deletes a client together with everything they own.
func (s *Service) Remove(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("user not found")
			}
			return apperr.Store("failed to fetch user", err)
		}

		if u.Role == models.RoleSeller {
			if err := tx.Model(&u).Update("active", false).Error; err != nil {
				return apperr.Store("failed to deactivate user", err)
			}
			return nil
		}

		carts := tx.Model(&models.Cart{}).Select("id").Where("user_id = ?", u.ID)
		orders := tx.Model(&models.Order{}).Select("id").Where("user_id = ?", u.ID)
		steps := []struct {
			what  string
			query *gorm.DB
			model interface{}
		}{
			{"favorites", tx.Where("user_id = ?", u.ID), &models.Favorite{}},
			{"cart items", tx.Where("cart_id IN (?)", carts), &models.CartItem{}},
			{"cart", tx.Where("user_id = ?", u.ID), &models.Cart{}},
			{"order items", tx.Where("order_id IN (?)", orders), &models.OrderItem{}},
			{"orders", tx.Where("user_id = ?", u.ID), &models.Order{}},
		}
		for _, step := range steps {
			if err := step.query.Delete(step.model).Error; err != nil {
				return apperr.Store("failed to delete "+step.what, err)
			}
		}
		if err := tx.Delete(&u).Error; err != nil {
			return apperr.Store("failed to delete user", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().Str("user_id", id).Msg("user removed")
	return nil
}

func (s *Service) session(u *models.User) (*Session, error) {
	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, apperr.Store("failed to issue token", err)
	}
	return &Session{AccessToken: token, User: u}, nil
}

func ensureEmailFree(tx *gorm.DB, email, exceptID string) error {
	var count int64
	query := tx.Model(&models.User{}).Where("email = ?", email)
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return apperr.Store("failed to check email", err)
	}
	if count > 0 {
		return apperr.Conflict("email already registered")
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperr.Invalid("email must be a valid address")
	}
	return email, nil
}
