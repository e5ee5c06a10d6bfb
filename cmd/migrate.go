package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/festifind/festifind/internal/database"
	"github.com/festifind/festifind/internal/mockdata"
	"github.com/festifind/festifind/internal/repository"
)

const connectAttempts = 5

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the festivals table",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := database.NewPool(cmd.Context(), a.cfg.Store, connectAttempts, a.logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := database.Migrate(cmd.Context(), pool); err != nil {
				return err
			}
			a.logger.Info("schema applied")
			return nil
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the placeholder festivals into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := database.NewPool(cmd.Context(), a.cfg.Store, connectAttempts, a.logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			n, err := database.Seed(cmd.Context(), repository.NewFestivalRepository(pool), mockdata.Festivals())
			if err != nil {
				return err
			}
			a.logger.Info("festivals seeded", zap.Int("inserted", n))
			return nil
		},
	}
}
