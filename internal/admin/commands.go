package admin

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dmitrijs2005/custdb/internal/common"
	"github.com/dmitrijs2005/custdb/internal/server/dto"
	"github.com/dmitrijs2005/custdb/internal/server/models"
	"github.com/spf13/cobra"
)

func (a *App) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			if err := a.rm.RunMigrations(cmd.Context(), a.db); err != nil {
				return fmt.Errorf("migration error: %w", err)
			}
			a.printf("migrations applied\n")
			return nil
		}),
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}

func (a *App) userCommand() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var email string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register a user; the password is read from the terminal",
		Args:  cobra.NoArgs,
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			pw, err := getPassword(a.out)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			u, err := a.users().Register(cmd.Context(), dto.UserCreate{Email: email, Password: string(pw)})
			if err != nil {
				return err
			}
			a.printf("created user id=%d email=%s\n", u.ID, u.Email)
			return nil
		}),
	}
	createCmd.Flags().StringVar(&email, "email", "", "email of the new user")
	_ = createCmd.MarkFlagRequired("email")

	verifyCmd := &cobra.Command{
		Use:   "verify <id>",
		Short: "Mark a user's email as verified",
		Args:  cobra.ExactArgs(1),
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.users().Verify(cmd.Context(), id); err != nil {
				if errors.Is(err, common.ErrorAlreadyVerified) {
					a.printf("user %d already verified\n", id)
					return nil
				}
				return err
			}
			a.printf("user %d verified\n", id)
			return nil
		}),
	}

	revokeCmd := &cobra.Command{
		Use:   "revoke-tokens <id>",
		Short: "Delete every refresh token of a user",
		Args:  cobra.ExactArgs(1),
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			n, err := a.users().RevokeTokens(cmd.Context(), id)
			if err != nil {
				return err
			}
			a.printf("revoked %d refresh token(s) of user %d\n", n, id)
			return nil
		}),
	}

	userCmd.AddCommand(createCmd, verifyCmd, revokeCmd)
	return userCmd
}

func (a *App) tokensCommand() *cobra.Command {
	tokensCmd := &cobra.Command{
		Use:   "tokens",
		Short: "Refresh token maintenance",
	}
	tokensCmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete expired refresh tokens",
		Args:  cobra.NoArgs,
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			n, err := a.users().PurgeExpiredTokens(cmd.Context())
			if err != nil {
				return err
			}
			a.printf("purged %d expired refresh token(s)\n", n)
			return nil
		}),
	})
	return tokensCmd
}

func (a *App) customersCommand() *cobra.Command {
	customersCmd := &cobra.Command{
		Use:   "customers",
		Short: "Customer data tools",
	}

	var search, out string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write customers as CSV to a file or stdout",
		Args:  cobra.NoArgs,
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			var w io.Writer = a.out
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := a.customers().ExportCSV(cmd.Context(), w, models.CustomerFilter{Search: search}); err != nil {
				return err
			}
			if w != a.out {
				a.printf("exported to %s\n", out)
			}
			return nil
		}),
	}
	exportCmd.Flags().StringVar(&search, "search", "", "only customers whose name, email or company match")
	exportCmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")

	customersCmd.AddCommand(exportCmd)
	return customersCmd
}
