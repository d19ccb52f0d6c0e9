package main

import (
	"fmt"
	"os"

	"parking-lot-manager/internal/pkg/config"

	"ariga.io/atlas-go-sdk/atlasexec"
	"github.com/spf13/cobra"
)

var (
	migrationsDir string
	atlasBinary   string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending SQL migrations with atlas",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		workdir, err := atlasexec.NewWorkingDir(
			atlasexec.WithMigrations(os.DirFS(migrationsDir)),
		)
		if err != nil {
			return fmt.Errorf("failed to load migration directory: %w", err)
		}
		defer workdir.Close()

		client, err := atlasexec.NewClient(workdir.Path(), atlasBinary)
		if err != nil {
			return fmt.Errorf("failed to initialize atlas client: %w", err)
		}

		res, err := client.MigrateApply(cmd.Context(), &atlasexec.MigrateApplyParams{
			URL: cfg.DB.BuildDSN(),
		})
		if err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}

		cmd.Printf("applied %d migrations (current %q, target %q)\n", len(res.Applied), res.Current, res.Target)
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "migrations", "directory holding the SQL migrations and atlas.sum")
	migrateCmd.Flags().StringVar(&atlasBinary, "atlas", "atlas", "path to the atlas binary")
}
