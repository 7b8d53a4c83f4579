package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"civicreporter-be/services"
	"civicreporter-be/store"
)

var adminSeed services.AdminSeed

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default admin account",
	Long:  `Create indexes and an active admin account if the database has no admin yet.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if err := store.EnsureIndexes(ctx, a.db); err != nil {
			return err
		}
		created, err := a.registrations.EnsureAdmin(ctx, adminSeed)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintln(cmd.OutOrStdout(), "Seeded admin user:", adminSeed.Email)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "admin user already exists; nothing to do")
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&adminSeed.Name, "name", "System Administrator", "admin display name")
	seedCmd.Flags().StringVar(&adminSeed.Email, "email", "admin@civicwelfare.com", "admin email")
	seedCmd.Flags().StringVar(&adminSeed.Password, "password", "", "admin password (required)")
	seedCmd.Flags().StringVar(&adminSeed.Phone, "phone", "", "admin phone")
	seedCmd.Flags().StringVar(&adminSeed.Location, "location", "City Hall", "admin location")
	_ = seedCmd.MarkFlagRequired("password")
}
