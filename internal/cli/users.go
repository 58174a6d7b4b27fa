package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"sport_bet/internal/services"
	"sport_bet/internal/storage"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	cmd.AddCommand(newUserCreateCmd(a), newUserAdminCmd(a))

	return cmd
}

func newUserCreateCmd(a *app) *cobra.Command {
	var admin bool

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Add a new user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := strings.TrimSpace(args[0])
			if username == "" {
				return fmt.Errorf("username is required")
			}

			st, err := a.openStorage()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Migrate(); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}

			users := services.NewUserService(st, a.log, a.cfg.BcryptCost)

			if _, err := users.GetByUsername(cmd.Context(), username); err == nil {
				return fmt.Errorf("user already exists: %s", username)
			}

			password, err := readPassword(cmd)
			if err != nil {
				return err
			}

			u, err := users.Register(cmd.Context(), username, password)
			if errors.Is(err, storage.ErrExists) {
				return fmt.Errorf("user already exists: %s", username)
			}
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			if admin {
				if err := users.SetAdmin(cmd.Context(), u.Username, true); err != nil {
					return fmt.Errorf("failed to grant admin: %w", err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "User '%s' created successfully\n", u.Username)
			return nil
		},
	}

	cmd.Flags().BoolVar(&admin, "admin", false, "mark the user as admin")

	return cmd
}

func newUserAdminCmd(a *app) *cobra.Command {
	var set bool

	cmd := &cobra.Command{
		Use:   "admin <username>",
		Short: "Set or clear the admin flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]

			st, err := a.openStorage()
			if err != nil {
				return err
			}
			defer st.Close()

			users := services.NewUserService(st, a.log, a.cfg.BcryptCost)

			err = users.SetAdmin(cmd.Context(), username, set)
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("user not found: %s", username)
			}
			if err != nil {
				return fmt.Errorf("failed to update user: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "User '%s' admin=%t\n", username, set)
			return nil
		},
	}

	cmd.Flags().BoolVar(&set, "set", true, "admin flag value")

	return cmd
}

// readPassword prompts twice on a terminal. Piped input supplies a single
// line instead.
func readPassword(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		out := cmd.OutOrStdout()

		fmt.Fprint(out, "Enter password: ")
		password, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}

		fmt.Fprint(out, "Confirm password: ")
		confirm, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}

		if string(password) != string(confirm) {
			return "", fmt.Errorf("passwords do not match")
		}

		return string(password), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}
