package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/database/seeders"
	"github.com/shashiranjanraj/storefront/internal/server"
)

// storefront migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the store's tables or collections and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := server.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "Migrating %s store…\n", rt.Store.Driver())
		if err := rt.Store.Migrate(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✅ Migrated")
		return nil
	},
}

// storefront seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin account and demo catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := server.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.Store.Migrate(cmd.Context()); err != nil {
			return err
		}
		k, err := rt.Kernel(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Running seeders…")
		return seeders.RunAll(cmd.Context(), k.Services(), cmd.OutOrStdout())
	},
}
