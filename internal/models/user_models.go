// Package models contains the models for the SSQ API
package models

import (
	"time"
)

const UsersTableName = "users"

type UserModel struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:32;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"is_admin"`
	IsApproved   bool      `gorm:"not null;default:false;index" json:"is_approved"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (UserModel) TableName() string {
	return UsersTableName
}
