package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/EmpoweredVote/zone-incidents/internal/config"
	"github.com/EmpoweredVote/zone-incidents/internal/db/migrations"
	"github.com/EmpoweredVote/zone-incidents/internal/logging"
)

var (
	dsn    string
	schema string
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the zone incidents postgres schema",
	Long:  "Applies or rolls back the embedded goose migrations. The connection defaults to DATABASE_URL and DB_SCHEMA.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_, err := logging.Init(config.LogConfig{Level: "info", Format: "console"})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, db *sql.DB, opts migrations.Options) error {
			return migrations.Up(ctx, db, opts)
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the latest migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, db *sql.DB, opts migrations.Options) error {
			return migrations.Down(ctx, db, opts)
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, db *sql.DB, opts migrations.Options) error {
			v, err := migrations.Version(ctx, db, opts)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), v)
			return err
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "postgres connection string (default DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&schema, "schema", "", "schema to migrate into (default DB_SCHEMA)")
	rootCmd.AddCommand(upCmd, downCmd, versionCmd)
}

// withDB opens a single-connection pool so search_path set by the schema
// option holds for every statement.
func withDB(ctx context.Context, fn func(context.Context, *sql.DB, migrations.Options) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if dsn == "" {
		cfg, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		dsn = cfg.Database.URL
		if schema == "" {
			schema = cfg.Database.Schema
		}
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return eris.Wrap(err, "open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			zap.L().Warn("close database", zap.Error(err))
		}
	}()
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return eris.Wrap(err, "ping database")
	}
	zap.L().Info("connected", zap.String("schema", schema))

	return fn(ctx, db, migrations.Options{Dialect: "postgres", Schema: schema})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
