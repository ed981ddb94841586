package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/custdb/internal/common"
	"github.com/dmitrijs2005/custdb/internal/dbx"
	"github.com/dmitrijs2005/custdb/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (email, hashed_password)
         VALUES ($1, $2)
		 RETURNING id, is_verified, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash).Scan(&user.ID, &user.IsVerified, &user.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, email, hashed_password, is_verified, created_at, updated_at FROM users
		 WHERE email = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query :=
		`SELECT id, email, hashed_password, is_verified, created_at, updated_at FROM users
		 WHERE id = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) MarkVerified(ctx context.Context, id int64) (bool, error) {
	query :=
		`UPDATE users SET is_verified = TRUE, updated_at = now()
		 WHERE id = $1 AND is_verified = FALSE
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return n == 1, nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.IsVerified, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
