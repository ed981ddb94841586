package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/custdb/internal/common"
	"github.com/dmitrijs2005/custdb/internal/dbx"
	"github.com/dmitrijs2005/custdb/internal/server/mailer"
	"github.com/dmitrijs2005/custdb/internal/server/models"
	customersrepo "github.com/dmitrijs2005/custdb/internal/server/repositories/customers"
	refreshtokensrepo "github.com/dmitrijs2005/custdb/internal/server/repositories/refreshtokens"
	usersrepo "github.com/dmitrijs2005/custdb/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

type fakeUsersRepo struct {
	created   *models.User
	createErr error

	byEmail    *models.User
	byEmailErr error

	byID    *models.User
	byIDErr error

	markOut   bool
	markErr   error
	markCalls int
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	out := *u
	out.ID = 1
	out.CreatedAt = time.Now()
	f.created = &out
	return &out, nil
}

func (f *fakeUsersRepo) GetByEmail(context.Context, string) (*models.User, error) {
	if f.byEmailErr != nil {
		return nil, f.byEmailErr
	}
	if f.byEmail == nil {
		return nil, common.ErrorNotFound
	}
	return f.byEmail, nil
}

func (f *fakeUsersRepo) GetByID(context.Context, int64) (*models.User, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	if f.byID == nil {
		return nil, common.ErrorNotFound
	}
	u := *f.byID
	return &u, nil
}

func (f *fakeUsersRepo) MarkVerified(context.Context, int64) (bool, error) {
	f.markCalls++
	return f.markOut, f.markErr
}

type fakeRefreshRepo struct {
	findOut *models.RefreshToken
	findErr error

	delErr  error
	deleted []string

	createErr error
	created   []int64

	byUserOut int64
	byUserErr error
	purgedAt  time.Time
}

func (f *fakeRefreshRepo) Create(_ context.Context, userID int64, token string, validity time.Duration) (*models.RefreshToken, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, userID)
	return &models.RefreshToken{UserID: userID, Token: token, ExpiresAt: time.Now().Add(validity)}, nil
}

func (f *fakeRefreshRepo) Find(context.Context, string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(_ context.Context, token string) error {
	f.deleted = append(f.deleted, token)
	return f.delErr
}

func (f *fakeRefreshRepo) DeleteByUser(context.Context, int64) (int64, error) {
	return f.byUserOut, f.byUserErr
}

func (f *fakeRefreshRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.purgedAt = now
	return f.byUserOut, f.byUserErr
}

type fakeCustomersRepo struct {
	store  map[int64]*models.Customer
	nextID int64

	err error

	lastFilter models.CustomerFilter
	locked     []int64
	updates    int
}

func newFakeCustomersRepo(cs ...*models.Customer) *fakeCustomersRepo {
	r := &fakeCustomersRepo{store: map[int64]*models.Customer{}}
	for _, c := range cs {
		r.store[c.ID] = c
		if c.ID > r.nextID {
			r.nextID = c.ID
		}
	}
	return r
}

func (f *fakeCustomersRepo) Create(_ context.Context, c *models.Customer) (*models.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	out := *c
	out.ID = f.nextID
	if out.Status == "" {
		out.Status = models.DefaultCustomerStatus
	}
	out.CreatedAt = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	f.store[out.ID] = &out
	return &out, nil
}

func (f *fakeCustomersRepo) GetByID(_ context.Context, id int64) (*models.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.store[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *c
	return &out, nil
}

func (f *fakeCustomersRepo) GetByIDForUpdate(ctx context.Context, id int64) (*models.Customer, error) {
	f.locked = append(f.locked, id)
	return f.GetByID(ctx, id)
}

func (f *fakeCustomersRepo) List(_ context.Context, flt models.CustomerFilter) ([]*models.Customer, error) {
	f.lastFilter = flt
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*models.Customer, 0, len(f.store))
	for id := int64(1); id <= f.nextID; id++ {
		if c, ok := f.store[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCustomersRepo) Update(_ context.Context, c *models.Customer) (*models.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.store[c.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	f.updates++
	now := time.Now()
	out := *c
	out.UpdatedAt = &now
	f.store[c.ID] = &out
	return &out, nil
}

func (f *fakeCustomersRepo) Delete(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.store[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.store, id)
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
	c *fakeCustomersRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error        { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokensrepo.Repository { return m.r }
func (m *fakeRepoManager) Customers(dbx.DBTX) customersrepo.Repository         { return m.c }

type sentEmail struct {
	email  string
	userID int64
}

type recordingNotifier struct {
	sent []sentEmail
	out  mailer.Outcome
}

func (n *recordingNotifier) SendVerificationEmail(_ context.Context, email string, userID int64) mailer.Outcome {
	n.sent = append(n.sent, sentEmail{email: email, userID: userID})
	return n.out
}

func strp(s string) *string { return &s }
