package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"signage-user-service/internal/domain/user"
)

// UserRepoPG implements the user Repository using GORM. It runs on
// PostgreSQL in production and on SQLite for development and tests.
type UserRepoPG struct {
	db       *gorm.DB    // GORM database connection
	maxUsers int         // Capacity of the store, 0 means unlimited
	log      *zap.Logger // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, maxUsers int, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, maxUsers: maxUsers, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Name         string    `gorm:"size:64;not null;uniqueIndex"`
	Groups       []string  `gorm:"serializer:json;type:text;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time // Set by GORM on insert
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

func toSchema(u *user.User) UserSchema {
	groups := u.Groups
	if groups == nil {
		groups = []string{}
	}
	return UserSchema{Name: u.Name, Groups: groups, PasswordHash: u.PasswordHash}
}

func (m UserSchema) toDomain() *user.User {
	groups := m.Groups
	if groups == nil {
		groups = []string{}
	}
	return &user.User{Name: m.Name, Groups: groups, PasswordHash: m.PasswordHash}
}

// Exists reports whether a user with the given name is stored.
func (r *UserRepoPG) Exists(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&UserSchema{}).Where("name = ?", name).Count(&count).Error; err != nil {
		r.log.Error("failed to check user existence", zap.Error(err), zap.String("name", name))
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new user. The insert never overwrites: a name that is
// already taken yields user.ErrAlreadyExists, a full store yields
// user.ErrTooManyUsers.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) error {
	if u == nil {
		return errors.New("user cannot be nil")
	}

	model := toSchema(u)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.maxUsers > 0 {
			var count int64
			if err := tx.Model(&UserSchema{}).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to count users: %w", err)
			}
			if count >= int64(r.maxUsers) {
				return user.ErrTooManyUsers
			}
		}

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&model)
		if res.Error != nil {
			return fmt.Errorf("failed to create user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return user.ErrAlreadyExists
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, user.ErrTooManyUsers) || errors.Is(err, user.ErrAlreadyExists) {
			r.log.Warn("user not created", zap.Error(err), zap.String("name", u.Name))
			return err
		}
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("name", u.Name))
		return err
	}

	r.log.Info("user created in db", zap.Int64("id", model.ID), zap.String("name", model.Name))
	return nil
}

// GetByName retrieves a user by name, or user.ErrNotFound.
func (r *UserRepoPG) GetByName(ctx context.Context, name string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found", zap.String("name", name))
			return nil, user.ErrNotFound
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.String("name", name))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return model.toDomain(), nil
}

// Count returns the number of stored users.
func (r *UserRepoPG) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&UserSchema{}).Count(&count).Error; err != nil {
		r.log.Error("failed to count users", zap.Error(err))
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
