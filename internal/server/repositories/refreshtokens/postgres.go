package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/custdb/internal/common"
	"github.com/dmitrijs2005/custdb/internal/dbx"
	"github.com/dmitrijs2005/custdb/internal/server/models"
)

// timeNow is replaced in tests.
var timeNow = time.Now

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID int64, token string, validity time.Duration) (*models.RefreshToken, error) {
	query := `
		INSERT INTO refresh_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	t := &models.RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: timeNow().Add(validity).UTC(),
	}
	if err := r.db.QueryRowContext(ctx, query, userID, token, t.ExpiresAt).Scan(&t.ID, &t.CreatedAt); err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `
		SELECT id, user_id, expires_at, created_at
		FROM refresh_tokens
		WHERE token = $1
	`
	t := &models.RefreshToken{Token: token}
	err := r.db.QueryRowContext(ctx, query, token).Scan(&t.ID, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, token string) error {
	_, err := r.exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	return err
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	return r.exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, now.UTC())
}

// exec runs a statement and returns the number of affected rows.
func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
