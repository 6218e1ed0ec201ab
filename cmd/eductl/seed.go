package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/learnhub/admin/internal/config"
	"github.com/learnhub/admin/internal/domain"
	"github.com/learnhub/admin/internal/module/catalog"
	"github.com/learnhub/admin/internal/module/user"
)

func newSeedCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Migrate the catalog database and load demo data and an administrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			log, err := config.SetupLogger(&cfg.Log)
			if err != nil {
				return err
			}
			defer log.Close()

			db, err := config.SetupDatabase(&cfg.Database, log.Logger)
			if err != nil {
				return err
			}
			defer config.CloseDatabase(db)

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			if err := catalog.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			res, err := catalog.Seed(ctx, db)
			if err != nil {
				return fmt.Errorf("seed catalog: %w", err)
			}
			out := cmd.OutOrStdout()
			if res == (catalog.SeedResult{}) {
				fmt.Fprintln(out, "Catalog already has data, skipped demo content")
			} else {
				fmt.Fprintf(out, "Seeded %d subjects, %d packages, %d videos, %d faculty\n",
					res.Subjects, res.Packages, res.Videos, res.Faculty)
			}

			admin := cfg.Auth.SeedAdmin
			if admin.Email == "" {
				fmt.Fprintln(out, "auth.seed_admin.email is empty, no administrator created")
				return nil
			}
			_, err = user.NewService(user.NewUserRepository(db)).
				Provision(ctx, admin.Name, admin.Email, admin.Password, domain.RoleSuperAdmin)
			switch {
			case domain.IsAlreadyExists(err):
				fmt.Fprintf(out, "Administrator %s already exists\n", admin.Email)
			case err != nil:
				return fmt.Errorf("provision administrator: %w", err)
			default:
				fmt.Fprintf(out, "Created administrator %s\n", admin.Email)
			}
			return nil
		},
	}
}
