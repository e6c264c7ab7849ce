package db

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/EmpoweredVote/zone-incidents/internal/config"
)

// Connect opens the postgres handle described by cfg and applies the pool
// settings. When cfg.Schema is set, tables are created inside that schema.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, config.ErrMissingDatabaseURL
	}

	db, err := Open(postgres.Open(cfg.URL), cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Schema != "" {
		if err := EnsureSchema(db, cfg.Schema); err != nil {
			return nil, eris.Wrapf(err, "db: ensure schema %s", cfg.Schema)
		}
	}

	zap.L().Info("connected to database", zap.String("schema", cfg.Schema))
	return db, nil
}

// Open opens a gorm handle over any dialector with the shared logger, naming
// and error translation settings.
func Open(dialector gorm.Dialector, cfg config.DatabaseConfig) (*gorm.DB, error) {
	// Surfaces slow queries through the zap logger.
	lg := logger.New(
		zap.NewStdLog(zap.L().Named("gorm")),
		logger.Config{
			SlowThreshold:             cfg.SlowQuery,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	gormCfg := &gorm.Config{
		Logger:         lg,
		TranslateError: true,
	}
	if cfg.Schema != "" {
		gormCfg.NamingStrategy = schema.NamingStrategy{TablePrefix: cfg.Schema + "."}
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, eris.Wrap(err, "db: open")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, eris.Wrap(err, "db: get sql.DB")
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnLifetime)
	}

	return db, nil
}

// Close releases the pool behind d.
func Close(d *gorm.DB) error {
	sqlDB, err := d.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
