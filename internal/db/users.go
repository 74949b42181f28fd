package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"stresslens/internal/models"
)

var ErrNotFound = errors.New("not found")

const userColumns = `id, email, email_blind_index, password_hash, full_name, is_admin, created_at`

type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore { return &UserStore{db: db} }

// Create inserts u, filling in ID and CreatedAt. Email must already be sealed.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO users (`+userColumns+`)
VALUES (:id, :email, :email_blind_index, :password_hash, :full_name, :is_admin, :created_at)`, u)
	return err
}

func (s *UserStore) GetByBlindIndex(ctx context.Context, index string) (models.User, error) {
	return s.get(ctx, `SELECT `+userColumns+` FROM users WHERE email_blind_index = ?`, index)
}

func (s *UserStore) GetByID(ctx context.Context, id string) (models.User, error) {
	return s.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// IsAdmin reports false for unknown users.
func (s *UserStore) IsAdmin(ctx context.Context, id string) (bool, error) {
	var isAdmin bool
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(`SELECT is_admin FROM users WHERE id = ?`), id).Scan(&isAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return isAdmin, err
}

func (s *UserStore) get(ctx context.Context, query string, arg any) (models.User, error) {
	var u models.User
	if err := s.db.GetContext(ctx, &u, s.db.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}
