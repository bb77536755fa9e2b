package postgres

import (
	"context"
	"time"

	"booklib/internal/domain/entity"
	domainerrors "booklib/internal/domain/errors"
	"booklib/internal/domain/repository"
	"booklib/internal/errors"
	"booklib/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// tokenRepository implements the domain.TokenRepository interface.
type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository is the constructor for tokenRepository.
func NewTokenRepository(db *gorm.DB) repository.TokenRepository {
	return &tokenRepository{db: db}
}

// Create records a newly issued token.
func (repo *tokenRepository) Create(ctx context.Context, token *entity.Token) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}

	tokenM := fromTokenDomain(token)
	if err := repo.db.WithContext(ctx).Create(tokenM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return errors.Wrap(repository.ErrUserNotFound, "token owner does not exist")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to record token")
	}

	token.CreatedAt = tokenM.CreatedAt

	return nil
}

// FindByHash retrieves the ledger entry for a token digest.
func (repo *tokenRepository) FindByHash(ctx context.Context, tokenHash string) (*entity.Token, error) {
	var tokenM model.TokenModel
	if err := repo.db.WithContext(ctx).Where("token_hash = ?", tokenHash).Take(&tokenM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTokenNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toTokenDomain(&tokenM), nil
}

// FindByUserID lists the user's ledger entries, newest first.
func (repo *tokenRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Token, error) {
	var tokenMs []*model.TokenModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tokenMs).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}

	tokens := make([]*entity.Token, 0, len(tokenMs))
	for _, tokenM := range tokenMs {
		tokens = append(tokens, toTokenDomain(tokenM))
	}

	return tokens, nil
}

// RevokeAllValid flips the user's Valid entries of the given kinds to Revoked.
func (repo *tokenRepository) RevokeAllValid(ctx context.Context, userID uuid.UUID, kinds ...entity.TokenKind) (int64, error) {
	query := repo.db.WithContext(ctx).
		Model(&model.TokenModel{}).
		Where("user_id = ? AND status = ?", userID, string(entity.TokenStatusValid))
	if len(kinds) > 0 {
		query = query.Where("kind IN ?", kindStrings(kinds))
	}

	result := query.Update("status", string(entity.TokenStatusRevoked))
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to revoke tokens")
	}

	return result.RowsAffected, nil
}

// ExpireStale flips Valid entries whose expiry is at or before now to Expired.
func (repo *tokenRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.TokenModel{}).
		Where("status = ? AND expires_at <= ?", string(entity.TokenStatusValid), now).
		Update("status", string(entity.TokenStatusExpired))
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to expire tokens")
	}

	return result.RowsAffected, nil
}

func kindStrings(kinds []entity.TokenKind) []string {
	out := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		out = append(out, string(kind))
	}

	return out
}

// toTokenDomain converts a TokenModel to a domain Token entity.
func toTokenDomain(data *model.TokenModel) *entity.Token {
	return &entity.Token{
		ID:        data.ID,
		UserID:    data.UserID,
		TokenHash: data.TokenHash,
		Type:      entity.TokenType(data.TokenType),
		Kind:      entity.TokenKind(data.Kind),
		Status:    entity.TokenStatus(data.Status),
		ExpiresAt: data.ExpiresAt,
		CreatedAt: data.CreatedAt,
	}
}

// fromTokenDomain converts a domain Token entity to a TokenModel.
func fromTokenDomain(data *entity.Token) *model.TokenModel {
	tokenType := data.Type
	if tokenType == "" {
		tokenType = entity.TokenTypeBearer
	}
	status := data.Status
	if status == "" {
		status = entity.TokenStatusValid
	}

	return &model.TokenModel{
		ID:        data.ID,
		UserID:    data.UserID,
		TokenHash: data.TokenHash,
		TokenType: string(tokenType),
		Kind:      string(data.Kind),
		Status:    string(status),
		ExpiresAt: data.ExpiresAt,
		CreatedAt: data.CreatedAt,
	}
}
