package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/EmpoweredVote/zone-incidents/internal/config"
	"github.com/EmpoweredVote/zone-incidents/internal/db"
	"github.com/EmpoweredVote/zone-incidents/internal/logging"
	"github.com/EmpoweredVote/zone-incidents/internal/router"
	"github.com/EmpoweredVote/zone-incidents/internal/seeds"
)

var fixturePath string

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample zones, incidents and users",
	Long:  "Seeds the database named by DATABASE_URL. Without --file the embedded Campinas fixture is used. Existing zones and users are skipped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger, err := logging.Init(cfg.Log)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		fixture, err := loadFixture()
		if err != nil {
			return err
		}

		d, err := db.Connect(cfg.Database)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close(d) }()

		if err := router.Migrate(d); err != nil {
			return eris.Wrap(err, "migrate")
		}

		rep, err := seeds.SeedAll(cmd.Context(), d, fixture)
		if err != nil {
			return err
		}
		logger.Info("seeded",
			zap.Int("zones", rep.ZonesCreated),
			zap.Int("incidents", rep.IncidentsCreated),
			zap.Int("users", rep.UsersCreated),
		)
		return nil
	},
}

func loadFixture() (*seeds.Fixture, error) {
	if fixturePath == "" {
		return seeds.Default()
	}
	return seeds.Load(fixturePath)
}

func init() {
	rootCmd.Flags().StringVarP(&fixturePath, "file", "f", "", "YAML fixture to load (default embedded Campinas data)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
