// Package repository contains the repository layer for the SSQ API
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/nsvirk/ssqapi/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type UserRepository struct {
	DB *gorm.DB
}

// NewUserRepository creates a new repository for users
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// CreateUser inserts user. The very first user becomes an approved admin;
// the count and the insert share one transaction, and on Postgres the users
// table is locked against concurrent inserts until it commits. A taken
// username returns ErrDuplicate.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.UserModel) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if IsPostgres(tx) {
			lock := fmt.Sprintf("LOCK TABLE %s IN SHARE ROW EXCLUSIVE MODE", models.UsersTableName)
			if err := tx.Exec(lock).Error; err != nil {
				return err
			}
		}

		var count int64
		if err := tx.Model(&models.UserModel{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			user.IsAdmin = true
			user.IsApproved = true
		} else {
			user.IsAdmin = false
			user.IsApproved = false
		}
		return tx.Create(user).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// UsernameExists checks whether username is taken
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.UserModel{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// GetUserByUsername gets a user by username
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.UserModel, error) {
	var user models.UserModel
	err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByID gets a user by id
func (r *UserRepository) GetUserByID(ctx context.Context, id uint) (*models.UserModel, error) {
	var user models.UserModel
	err := r.DB.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListPendingUsers returns users waiting for approval, oldest first
func (r *UserRepository) ListPendingUsers(ctx context.Context) ([]models.UserModel, error) {
	var users []models.UserModel
	err := r.DB.WithContext(ctx).
		Where("is_approved = ?", false).
		Order("created_at ASC, id ASC").
		Find(&users).Error
	return users, err
}

// ApproveUser marks a user approved
func (r *UserRepository) ApproveUser(ctx context.Context, id uint) error {
	result := r.DB.WithContext(ctx).Model(&models.UserModel{}).
		Where("id = ?", id).
		Update("is_approved", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
