package services

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/custdb/internal/common"
	"github.com/dmitrijs2005/custdb/internal/dbx"
	"github.com/dmitrijs2005/custdb/internal/logging"
	sc "github.com/dmitrijs2005/custdb/internal/server/config"
	"github.com/dmitrijs2005/custdb/internal/server/dto"
	"github.com/dmitrijs2005/custdb/internal/server/models"
	"github.com/dmitrijs2005/custdb/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/custdb/internal/server/validation"
)

// CSVHeader is the first row of every customer export.
var CSVHeader = []string{"Name", "Email", "Phone", "Company", "Position", "Status", "Created At"}

const csvDateLayout = "2006-01-02"

// CustomerService implements CRUD, listing and CSV export of customers.
type CustomerService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	config      *sc.Config
}

func NewCustomerService(db *sql.DB, repomanager repomanager.RepositoryManager, logger logging.Logger, config *sc.Config) *CustomerService {
	return &CustomerService{
		db:          db,
		repomanager: repomanager,
		logger:      logger,
		config:      config,
	}
}

// mapRepoErr keeps the sentinels callers branch on and wraps everything else.
func mapRepoErr(op string, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return common.ErrorNotFound
	case errors.Is(err, common.ErrorAlreadyExists):
		return common.ErrorAlreadyExists
	case dbx.IsCheckViolation(err):
		return validation.Errors{{Field: "status", Error: "must be one of: active inactive prospect"}}
	}
	return fmt.Errorf("error %s customer: %w", op, err)
}

func (s *CustomerService) Create(ctx context.Context, in dto.CustomerCreate) (*models.Customer, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c, err := s.repomanager.Customers(s.db).Create(ctx, in.ToModel())
	if err != nil {
		return nil, mapRepoErr("creating", err)
	}
	s.logger.Info(ctx, "customer created", "customer_id", c.ID)
	return c, nil
}

func (s *CustomerService) Get(ctx context.Context, id int64) (*models.Customer, error) {
	c, err := s.repomanager.Customers(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr("reading", err)
	}
	return c, nil
}

func validateFilter(f models.CustomerFilter) error {
	var errs validation.Errors
	if f.Offset < 0 {
		errs = append(errs, validation.FieldError{Field: "skip", Error: "must be greater than or equal to 0"})
	}
	if f.Limit < 0 {
		errs = append(errs, validation.FieldError{Field: "limit", Error: "must be greater than or equal to 0"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// List returns customers ordered by id. Negative offsets or limits are
// rejected with field errors.
func (s *CustomerService) List(ctx context.Context, f models.CustomerFilter) ([]*models.Customer, error) {
	if err := validateFilter(f); err != nil {
		return nil, err
	}
	f.Search = strings.TrimSpace(f.Search)
	cs, err := s.repomanager.Customers(s.db).List(ctx, f)
	if err != nil {
		return nil, mapRepoErr("listing", err)
	}
	return cs, nil
}

// Update applies the present fields of in to the customer. The read and the
// write happen in one transaction with the row locked.
func (s *CustomerService) Update(ctx context.Context, id int64, in dto.CustomerUpdate) (*models.Customer, error) {
	if in.Email != nil {
		e := strings.TrimSpace(*in.Email)
		in.Email = &e
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	out, err := dbx.InTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.Customer, error) {
		repo := s.repomanager.Customers(tx)
		c, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil || in.Empty() {
			return c, err
		}
		in.Apply(c)
		return repo.Update(ctx, c)
	})
	if err != nil {
		return nil, mapRepoErr("updating", err)
	}
	s.logger.Info(ctx, "customer updated", "customer_id", id)
	return out, nil
}

func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	if err := s.repomanager.Customers(s.db).Delete(ctx, id); err != nil {
		return mapRepoErr("deleting", err)
	}
	s.logger.Info(ctx, "customer deleted", "customer_id", id)
	return nil
}

// ExportCSV writes the customers matching f to w as CSV, header first.
// Missing optional values become empty cells.
func (s *CustomerService) ExportCSV(ctx context.Context, w io.Writer, f models.CustomerFilter) error {
	cs, err := s.List(ctx, f)
	if err != nil {
		return err
	}
	return writeCSV(w, cs)
}

func writeCSV(w io.Writer, cs []*models.Customer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, c := range cs {
		if err := cw.Write(csvRecord(c)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRecord(c *models.Customer) []string {
	return []string{
		c.Name,
		c.Email,
		deref(c.Phone),
		deref(c.Company),
		deref(c.Position),
		string(c.Status),
		c.CreatedAt.Format(csvDateLayout),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
