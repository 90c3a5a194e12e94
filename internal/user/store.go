package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Tianea2160/discipline/internal/db"
)

// Store is the save/find contract for user rows. Absence is signaled with a
// nil user and a nil error.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByProviderSubject(ctx context.Context, provider, providerID string) (*User, error)
	FindByEmailAndProvider(ctx context.Context, email, provider string) (*User, error)
	Create(ctx context.Context, u User) (*User, error)
	Update(ctx context.Context, u User) (*User, error)
}

const userColumns = `id, email, name, COALESCE(picture, ''), role, provider, provider_id, created_at, updated_at`

type SQLStore struct {
	db *db.DB
}

func NewSQLStore(db *db.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.queryOne(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email)
}

func (s *SQLStore) FindByProviderSubject(ctx context.Context, provider, providerID string) (*User, error) {
	return s.queryOne(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE provider = $1
		  AND provider_id = $2
	`, provider, providerID)
}

func (s *SQLStore) FindByEmailAndProvider(ctx context.Context, email, provider string) (*User, error) {
	return s.queryOne(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE LOWER(email) = LOWER($1)
		  AND provider = $2
	`, email, provider)
}

func (s *SQLStore) Create(ctx context.Context, u User) (*User, error) {
	if u.Role == "" {
		u.Role = RoleUser
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, name, picture, role, provider, provider_id)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
		RETURNING `+userColumns+`
	`, u.Email, u.Name, u.Picture, u.Role, u.Provider, u.ProviderID)
	return scanUser(row)
}

func (s *SQLStore) Update(ctx context.Context, u User) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users
		SET email = $2,
		    name = $3,
		    picture = NULLIF($4, ''),
		    provider_id = $5,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns+`
	`, u.ID, u.Email, u.Name, u.Picture, u.ProviderID)
	return scanUser(row)
}

// AuthoritiesByEmail returns the granted-authority tags for a bearer-token
// subject. Unknown subjects get the default USER authority: the row should
// have been created at OAuth login, so this path is rare.
func (s *SQLStore) AuthoritiesByEmail(ctx context.Context, email string) ([]string, error) {
	u, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return []string{"ROLE_" + string(RoleUser)}, nil
	}
	return []string{u.Authority()}, nil
}

func (s *SQLStore) queryOne(ctx context.Context, query string, args ...any) (*User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Picture, &u.Role,
		&u.Provider, &u.ProviderID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
