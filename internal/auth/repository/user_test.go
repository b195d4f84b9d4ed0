package repository

import (
	"context"
	"testing"

	"github.com/smartextemp/extemp-backend/pkg/errors"
	"github.com/smartextemp/extemp-backend/pkg/logger"
	"github.com/smartextemp/extemp-backend/pkg/tablestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededUserRepo(t *testing.T) *UserRepository {
	t.Helper()

	store := tablestore.NewMemoryStore()
	store.Seed("Users", []string{"Username", "Password", "Name", "Role"}, [][]string{
		{"jane", "$2a$10$abcdefghijklmnopqrstuv", "Jane Doe", "Admin"},
		{" somsri ", "plain-secret", "Somsri P.", "staff"},
		{"norole", "pw", "No Role", ""},
	})

	return NewUserRepository(store, "Users", logger.New("test", "test"))
}

func TestUserRepository_GetByUsername(t *testing.T) {
	repo := seededUserRepo(t)

	user, err := repo.GetByUsername(context.Background(), "jane")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", user.Name)
	assert.Equal(t, "admin", user.Role) // role normalized to lowercase

	// stored usernames are trimmed before comparison
	user, err = repo.GetByUsername(context.Background(), "somsri")
	require.NoError(t, err)
	assert.Equal(t, "plain-secret", user.Password)
}

func TestUserRepository_GetByUsername_NotFound(t *testing.T) {
	repo := seededUserRepo(t)

	_, err := repo.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}
