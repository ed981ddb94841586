package rest

import (
	"context"
	"io"
	"time"

	"github.com/dmitrijs2005/custdb/internal/common"
	"github.com/dmitrijs2005/custdb/internal/server/dto"
	"github.com/dmitrijs2005/custdb/internal/server/models"
	"github.com/dmitrijs2005/custdb/internal/server/services"
	"github.com/dmitrijs2005/custdb/internal/server/validation"
)

const testSecret = "secret"

type fakeUsers struct {
	registerErr error
	loginErr    error
	verifyErr   error
	getErr      error
	refreshErr  error

	registered []dto.UserCreate
	verified   []int64
}

func (f *fakeUsers) Register(_ context.Context, in dto.UserCreate) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	f.registered = append(f.registered, in)
	return &models.User{ID: 1, Email: in.Email, PasswordHash: "hash", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}, nil
}

func (f *fakeUsers) Login(_ context.Context, in dto.UserLogin) (*services.TokenPair, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &services.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (f *fakeUsers) Verify(_ context.Context, id int64) (*models.User, error) {
	f.verified = append(f.verified, id)
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &models.User{ID: id, IsVerified: true}, nil
}

func (f *fakeUsers) Get(_ context.Context, id int64) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &models.User{ID: id, Email: "me@x.io", PasswordHash: "hash"}, nil
}

func (f *fakeUsers) RefreshToken(_ context.Context, token string) (*services.TokenPair, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &services.TokenPair{AccessToken: "access2", RefreshToken: "refresh2"}, nil
}

type fakeCustomers struct {
	store      map[int64]*models.Customer
	err        error
	lastFilter models.CustomerFilter
	published  *services.PublishedExport
}

func newFakeCustomers(cs ...*models.Customer) *fakeCustomers {
	f := &fakeCustomers{store: map[int64]*models.Customer{}}
	for _, c := range cs {
		f.store[c.ID] = c
	}
	return f
}

func (f *fakeCustomers) Create(_ context.Context, in dto.CustomerCreate) (*models.Customer, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c := in.ToModel()
	c.ID = int64(len(f.store) + 1)
	f.store[c.ID] = c
	return c, nil
}

func (f *fakeCustomers) Get(_ context.Context, id int64) (*models.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.store[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

func (f *fakeCustomers) List(_ context.Context, flt models.CustomerFilter) ([]*models.Customer, error) {
	f.lastFilter = flt
	if f.err != nil {
		return nil, f.err
	}
	if flt.Offset < 0 || flt.Limit < 0 {
		return nil, validation.Errors{{Field: "skip", Error: "must be greater than or equal to 0"}}
	}
	var out []*models.Customer
	for id := int64(1); id <= int64(len(f.store)); id++ {
		if c, ok := f.store[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCustomers) Update(_ context.Context, id int64, in dto.CustomerUpdate) (*models.Customer, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c, ok := f.store[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	in.Apply(c)
	return c, nil
}

func (f *fakeCustomers) Delete(_ context.Context, id int64) error {
	if _, ok := f.store[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.store, id)
	return nil
}

func (f *fakeCustomers) ExportCSV(_ context.Context, w io.Writer, flt models.CustomerFilter) error {
	f.lastFilter = flt
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(w, "Name,Email,Phone,Company,Position,Status,Created At\n")
	return err
}

func (f *fakeCustomers) PublishExport(_ context.Context, flt models.CustomerFilter) (*services.PublishedExport, error) {
	f.lastFilter = flt
	if f.err != nil {
		return nil, f.err
	}
	return f.published, nil
}
