// Package migrations embeds the versioned SQL schema and runs it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

//go:embed *.sql
var Files embed.FS

// Tables lists the tables the migrations create, in dependency order.
var Tables = []string{"users", "polygons", "zones", "incidents"}

// Options selects the goose dialect and, for postgres, the schema to
// migrate into. db must be limited to one open connection when Schema is
// set, since search_path is per session.
type Options struct {
	Dialect string
	Schema  string
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB, opts Options) error {
	if err := prepare(ctx, db, opts); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return eris.Wrap(err, "migrations: up")
	}
	return nil
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, db *sql.DB, opts Options) error {
	if err := prepare(ctx, db, opts); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, db, "."); err != nil {
		return eris.Wrap(err, "migrations: down")
	}
	return nil
}

// Version returns the current schema version, 0 when nothing was applied.
func Version(ctx context.Context, db *sql.DB, opts Options) (int64, error) {
	if err := prepare(ctx, db, opts); err != nil {
		return 0, err
	}
	v, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, eris.Wrap(err, "migrations: version")
	}
	return v, nil
}

func prepare(ctx context.Context, db *sql.DB, opts Options) error {
	goose.SetBaseFS(Files)
	goose.SetLogger(gooseLogger{zap.S().Named("goose")})
	if err := goose.SetDialect(opts.Dialect); err != nil {
		return eris.Wrapf(err, "migrations: dialect %s", opts.Dialect)
	}
	if opts.Schema == "" {
		return nil
	}

	q := pq.QuoteIdentifier(opts.Schema)
	if _, err := db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+q); err != nil {
		return eris.Wrapf(err, "migrations: create schema %s", opts.Schema)
	}
	if _, err := db.ExecContext(ctx, "SET search_path TO "+q); err != nil {
		return eris.Wrapf(err, "migrations: set search_path %s", opts.Schema)
	}
	return nil
}

// gooseLogger routes goose output through zap.
type gooseLogger struct {
	s *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.s.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.s.Fatal(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
