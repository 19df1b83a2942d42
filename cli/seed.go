package cli

import (
	"fmt"

	"github.com/example/crm-backend/modules/crm"
	"github.com/spf13/cobra"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample customers and products into an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			db, err := crm.OpenDatabase(cfg.Database.Path, cfg.Database.Debug)
			if err != nil {
				return err
			}
			defer crm.CloseDatabase(db)

			result, err := crm.NewService(crm.NewRepository(db)).Seed(cmd.Context())
			if err != nil {
				return fmt.Errorf("seeding %s: %w", cfg.Database.Path, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d customers and %d products into %s\n",
				result.Customers, result.Products, cfg.Database.Path)
			return nil
		},
	}
}
