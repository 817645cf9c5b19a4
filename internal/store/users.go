package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Account roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserUpdate is a partial update of a user. Nil fields are left
// untouched. HashedPassword, when set, must already be hashed.
type UserUpdate struct {
	Email          *string
	Username       *string
	Role           *string
	IsActive       *bool
	HashedPassword *string
}

// ListUsers returns one page of users ordered by id.
func (s *Store) ListUsers(ctx context.Context, page PageParams) (Page[User], error) {
	page, err := page.Normalize()
	if err != nil {
		return Page[User]{}, err
	}

	var (
		items []User
		total int64
	)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&User{}).Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}
		if err := tx.Order("id ASC").Offset(page.Skip).Limit(page.Limit).Find(&items).Error; err != nil {
			return fmt.Errorf("failed to fetch users: %w", err)
		}
		return nil
	})
	if err != nil {
		return Page[User]{}, err
	}

	return NewPage(items, total, page), nil
}

// GetUser fetches a single user by id.
func (s *Store) GetUser(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

// GetUserByUsername fetches a single user by username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %q", ErrNotFound, username)
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

// CreateUser persists a new user. Email and username are unique; the
// password must already be hashed by the caller.
func (s *Store) CreateUser(ctx context.Context, user *User) error {
	if user == nil {
		return fmt.Errorf("%w: user cannot be nil", ErrInvalidArgument)
	}
	if user.Email == "" || user.Username == "" {
		return fmt.Errorf("%w: email and username cannot be empty", ErrInvalidArgument)
	}
	if user.HashedPassword == "" {
		return fmt.Errorf("%w: password hash cannot be empty", ErrInvalidArgument)
	}
	if user.Role == "" {
		user.Role = RoleUser
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: email or username taken", ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UpdateUser applies a partial update.
func (s *Store) UpdateUser(ctx context.Context, id uint, update UserUpdate) (*User, error) {
	var user User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %d", ErrNotFound, id)
			}
			return fmt.Errorf("failed to fetch user: %w", err)
		}

		fields := map[string]any{}
		if update.Email != nil {
			fields["email"] = *update.Email
		}
		if update.Username != nil {
			fields["username"] = *update.Username
		}
		if update.Role != nil {
			if *update.Role != RoleUser && *update.Role != RoleAdmin {
				return fmt.Errorf("%w: unknown role %q", ErrInvalidArgument, *update.Role)
			}
			fields["role"] = *update.Role
		}
		if update.IsActive != nil {
			fields["is_active"] = *update.IsActive
		}
		if update.HashedPassword != nil {
			fields["hashed_password"] = *update.HashedPassword
		}

		if len(fields) == 0 {
			return nil
		}

		if err := tx.Model(&user).Updates(fields).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: email or username taken", ErrAlreadyExists)
			}
			return fmt.Errorf("failed to update user: %w", err)
		}
		if err := tx.First(&user, id).Error; err != nil {
			return fmt.Errorf("failed to reload user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// DeleteUser removes a user by id.
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&User{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return nil
}
