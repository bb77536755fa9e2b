package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenModel mirrors the 'tokens' ledger table. Only the SHA-256 digest of a token is stored.
type TokenModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_tokens_user_status"`
	TokenHash string    `gorm:"type:char(64);uniqueIndex:idx_tokens_hash;not null"`
	TokenType string    `gorm:"type:varchar(16);not null;default:BEARER"`
	Kind      string    `gorm:"type:varchar(16);not null"`
	Status    string    `gorm:"type:varchar(16);not null;index:idx_tokens_user_status"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (TokenModel) TableName() string {
	return "tokens"
}
