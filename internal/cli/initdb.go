package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitDBCmd(a *app) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create the users and games tables",
		Long: `Create the users and games tables if they are missing.

With --reset both tables are dropped first and every user and game is lost.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			storage, err := a.openStorage()
			if err != nil {
				return err
			}
			defer storage.Close()

			if reset {
				err = storage.Reset()
			} else {
				err = storage.Migrate()
			}
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Initialized the database.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "drop existing tables before creating them")

	return cmd
}
