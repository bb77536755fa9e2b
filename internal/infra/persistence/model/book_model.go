package model

import (
	"time"

	"github.com/google/uuid"
)

// BookModel mirrors the 'books' table. The primary key is the provider's volume id.
type BookModel struct {
	ID        string `gorm:"type:varchar(64);primaryKey"`
	Title     string `gorm:"type:text;not null"`
	Thumbnail string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (BookModel) TableName() string {
	return "books"
}

// FavoriteModel mirrors the 'user_favorites' edge table. The composite primary key keeps
// each (user, book) pair unique.
type FavoriteModel struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookID    string    `gorm:"type:varchar(64);primaryKey;index:idx_user_favorites_book"`
	CreatedAt time.Time

	Book *BookModel `gorm:"foreignKey:BookID;references:ID"`
}

// TableName explicitly sets the table name for GORM.
func (FavoriteModel) TableName() string {
	return "user_favorites"
}
