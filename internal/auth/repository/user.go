package repository

import (
	"context"
	"strings"

	"github.com/smartextemp/extemp-backend/pkg/errors"
	"github.com/smartextemp/extemp-backend/pkg/logger"
	"github.com/smartextemp/extemp-backend/pkg/tablestore"
)

// User is a row from the Users tab
type User struct {
	Username string
	Password string
	Name     string
	Role     string
}

// UserRepository reads user accounts from the Users tab of the table store.
// The tab carries Username, Password, Name and Role columns; header matching
// is case-insensitive.
type UserRepository struct {
	store  tablestore.Store
	tab    string
	logger *logger.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(store tablestore.Store, tab string, log *logger.Logger) *UserRepository {
	return &UserRepository{
		store:  store,
		tab:    tab,
		logger: log,
	}
}

// GetByUsername looks up a user account by login name
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	snap, err := r.store.ReadAll(ctx, r.tab)
	if err != nil {
		r.logger.Error().Err(err).Str("tab", r.tab).Msg("failed to read users tab")
		return nil, errors.StoreUnavailable(err)
	}

	cols := columnIndex(snap.Header)
	username = strings.TrimSpace(username)

	for _, row := range snap.Rows {
		if strings.TrimSpace(cell(row, cols.idx("username"))) != username {
			continue
		}
		return &User{
			Username: username,
			Password: cell(row, cols.idx("password")),
			Name:     strings.TrimSpace(cell(row, cols.idx("name"))),
			Role:     strings.ToLower(strings.TrimSpace(cell(row, cols.idx("role")))),
		}, nil
	}

	return nil, errors.NotFound("user")
}

type columns map[string]int

func columnIndex(header []string) columns {
	cols := make(columns, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

// idx returns the column position for a header name, or -1 when absent
func (c columns) idx(name string) int {
	if i, ok := c[name]; ok {
		return i
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
