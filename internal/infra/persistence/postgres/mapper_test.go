package postgres

import (
	"io/fs"
	"strings"
	"testing"
	"time"

	"booklib/internal/domain/entity"
	"booklib/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserMapper_RoundTripKeepsProfile(t *testing.T) {
	first := "Alice"
	dob := time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)
	user := &entity.User{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "a@x.io",
		PasswordHash: "hash",
		Role:         entity.RoleUser,
		Profile:      entity.Profile{FirstName: &first, DateOfBirth: &dob},
	}

	got := toUserDomain(fromUserDomain(user))

	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, entity.RoleUser, got.Role)
	require.NotNil(t, got.Profile.FirstName)
	assert.Equal(t, "Alice", *got.Profile.FirstName)
	assert.Nil(t, got.Profile.LastName)
	assert.Equal(t, dob, *got.Profile.DateOfBirth)
}

func TestFromUserDomain_DefaultsUnknownRoleToUser(t *testing.T) {
	userM := fromUserDomain(&entity.User{Role: "SUPERUSER"})

	assert.Equal(t, "USER", userM.Role)
}

func TestFromTokenDomain_Defaults(t *testing.T) {
	tokenM := fromTokenDomain(&entity.Token{Kind: entity.TokenKindAccess})

	assert.Equal(t, "BEARER", tokenM.TokenType)
	assert.Equal(t, "VALID", tokenM.Status)
	assert.Equal(t, "access", tokenM.Kind)
}

func TestToTokenDomain(t *testing.T) {
	tokenM := &model.TokenModel{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		TokenHash: strings.Repeat("a", 64),
		TokenType: "BEARER",
		Kind:      "refresh",
		Status:    "REVOKED",
	}

	token := toTokenDomain(tokenM)

	assert.Equal(t, entity.TokenKindRefresh, token.Kind)
	assert.Equal(t, entity.TokenStatusRevoked, token.Status)
	assert.Equal(t, entity.TokenTypeBearer, token.Type)
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, []string{"access", "refresh"}, kindStrings([]entity.TokenKind{entity.TokenKindAccess, entity.TokenKindRefresh}))
	assert.Empty(t, kindStrings(nil))
}

func TestMigrations_AreEmbeddedInPairs(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups, downs := 0, 0
	for _, entry := range entries {
		switch {
		case strings.HasSuffix(entry.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(entry.Name(), ".down.sql"):
			downs++
		}
	}
	assert.Equal(t, ups, downs)
}

func TestNewMigrator_RequiresURL(t *testing.T) {
	_, err := NewMigrator("", nil)
	assert.Error(t, err)
}
