// Package admin implements the operator command line: schema migration,
// account maintenance and customer exports run directly against the database.
package admin

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/custdb/internal/logging"
	"github.com/dmitrijs2005/custdb/internal/server"
	"github.com/dmitrijs2005/custdb/internal/server/config"
	"github.com/dmitrijs2005/custdb/internal/server/mailer"
	"github.com/dmitrijs2005/custdb/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/custdb/internal/server/services"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Test seams.
var (
	openDB         = repomanager.OpenDB
	newRepoManager = repomanager.NewPostgresRepositoryManager
	readPassword   = term.ReadPassword
)

type App struct {
	config *config.Config
	out    io.Writer
	logger logging.Logger
	db     *sql.DB
	rm     repomanager.RepositoryManager
}

// NewRootCommand builds the command tree. cfg supplies the connection
// settings; the --dsn flag overrides cfg.DatabaseDSN.
func NewRootCommand(cfg *config.Config, out io.Writer) *cobra.Command {
	app := &App{config: cfg, out: out}

	root := &cobra.Command{
		Use:          "custdb-admin",
		Short:        "Maintenance commands for the customer database",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&cfg.DatabaseDSN, "dsn", cfg.DatabaseDSN, "PostgreSQL DSN (env DATABASE_DSN)")

	root.AddCommand(app.migrateCommand(), app.userCommand(), app.tokensCommand(), app.customersCommand())
	return root
}

func (a *App) connect(ctx context.Context) error {
	logger, err := logging.New(a.config.LogBackend, a.config.LogLevel)
	if err != nil {
		return err
	}
	a.logger = logger.With("module", "admin")

	db, err := openDB(ctx, a.config.DatabaseDSN)
	if err != nil {
		return err
	}
	a.db = db
	a.rm = newRepoManager()
	return nil
}

// withDB connects before fn runs and closes the connection afterwards,
// whatever fn returns.
func (a *App) withDB(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.connect(cmd.Context()); err != nil {
			return err
		}
		defer a.close()
		return fn(cmd, args)
	}
}

func (a *App) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

func (a *App) users() *services.UserService {
	ml := mailer.New(server.SMTPConfig(a.config), a.logger.With("module", "mailer"))
	return services.NewUserService(a.db, a.rm, ml, a.logger, a.config)
}

func (a *App) customers() *services.CustomerService {
	return services.NewCustomerService(a.db, a.rm, a.logger, a.config)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// getPassword prompts on out and reads a password from the terminal
// without echo. The caller wipes the returned slice.
func getPassword(out io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(out, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return nil, err
	}
	return pw, nil
}
