package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table. IDs are UUIDv7 values generated by the application.
type UserModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Username       string     `gorm:"type:varchar(64);uniqueIndex:idx_users_username;not null"`
	Email          string     `gorm:"type:varchar(255);uniqueIndex:idx_users_email;not null"`
	PasswordHash   string     `gorm:"type:varchar(255);not null"`
	Role           string     `gorm:"type:varchar(20);not null;default:USER"`
	FirstName      *string    `gorm:"type:varchar(100)"`
	LastName       *string    `gorm:"type:varchar(100)"`
	DateOfBirth    *time.Time `gorm:"type:date"`
	ProfilePicture *string    `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Tokens    []TokenModel    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Favorites []FavoriteModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
