package customers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/custdb/internal/common"
	"github.com/dmitrijs2005/custdb/internal/dbx"
	"github.com/dmitrijs2005/custdb/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `SELECT id, name, email, phone, company, position, address, notes, status, created_at, updated_at
		 FROM customers`

func (r *PostgresRepository) Create(ctx context.Context, c *models.Customer) (*models.Customer, error) {
	if c.Status == "" {
		c.Status = models.DefaultCustomerStatus
	}

	query :=
		`INSERT INTO customers (name, email, phone, company, position, address, notes, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		c.Name, c.Email, c.Phone, c.Company, c.Position, c.Address, c.Notes, c.Status).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	query := selectColumns + `
		 WHERE id = $1
		 `
	return scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Customer, error) {
	query := selectColumns + `
		 WHERE id = $1
		 FOR UPDATE
		 `
	return scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) List(ctx context.Context, f models.CustomerFilter) ([]*models.Customer, error) {
	var (
		sb   strings.Builder
		args []any
	)

	sb.WriteString(selectColumns)

	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		sb.WriteString(`
		 WHERE name ILIKE $1 OR email ILIKE $1 OR company ILIKE $1`)
	}

	sb.WriteString(`
		 ORDER BY id`)

	if f.Offset > 0 {
		args = append(args, f.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Customer, 0)
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, c *models.Customer) (*models.Customer, error) {
	query :=
		`UPDATE customers
		 SET name = $1, email = $2, phone = $3, company = $4, position = $5,
		     address = $6, notes = $7, status = $8, updated_at = now()
		 WHERE id = $9
		 RETURNING updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		c.Name, c.Email, c.Phone, c.Company, c.Position, c.Address, c.Notes, c.Status, c.ID).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM customers
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.Customer, error) {
	c := &models.Customer{}
	err := s.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Position,
		&c.Address, &c.Notes, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func scanOne(row *sql.Row) (*models.Customer, error) {
	c, err := scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// escapeLike makes %, _ and \ in user input match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
