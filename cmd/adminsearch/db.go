package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ug-admin-search/internal/config"
	"github.com/ug-admin-search/internal/db"
	"github.com/ug-admin-search/internal/refdata"
	"github.com/ug-admin-search/internal/service"
)

// createDBCmd creates the database management command
func createDBCmd() *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the admin_units table",
	}
	dbCmd.AddCommand(createDBInitCmd())
	dbCmd.AddCommand(createDBImportCmd())
	dbCmd.AddCommand(createDBPingCmd())
	return dbCmd
}

func createDBInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the admin_units table",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := service.OpenDB(cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := db.EnsureSchema(cmd.Context(), conn.DB); err != nil {
				return err
			}
			fmt.Println("Schema ready")
			return nil
		},
	}
}

func createDBImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Replace admin_units with the embedded sample or --data files",
		RunE: func(cmd *cobra.Command, args []string) error {
			var provider refdata.Provider = refdata.Embedded()
			if cfg.Data.Source == config.SourceDir {
				provider = refdata.NewDirProvider(cfg.Data.Dir)
			}
			ds, err := provider.Load(cmd.Context())
			if err != nil {
				return err
			}

			conn, err := service.OpenDB(cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := db.EnsureSchema(cmd.Context(), conn.DB); err != nil {
				return err
			}
			n, err := refdata.Import(cmd.Context(), conn.DB, ds)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d units (fingerprint %s)\n", n, ds.Fingerprint())
			return nil
		},
	}
}

func createDBPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test database connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := service.OpenDB(cfg)
			if err != nil {
				return err
			}
			defer conn.Close()
			fmt.Println("Database connection successful!")

			counts, err := db.CountUnits(cmd.Context(), conn.DB)
			if err != nil {
				return err
			}
			for _, l := range refdata.Levels() {
				fmt.Printf("  %-10s %d\n", l, counts[int(l)])
			}
			return nil
		},
	}
}
