package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/agentnet/ant-orchestrator/internal/config"
	"github.com/agentnet/ant-orchestrator/internal/platform/logger"
)

const pingTimeout = 3 * time.Second

type Service struct {
	db        *gorm.DB
	log       *logger.Logger
	reachable bool
}

// Open connects using cfg.DB and probes reachability. An unreachable database
// is not an error: the service reports Reachable() == false and callers run
// without persistence.
func Open(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "DBService")

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		serviceLog.Warn("db unavailable, running without database", "driver", cfg.Driver, "error", err)
		return &Service{log: serviceLog}, nil
	}

	s := &Service{db: db, log: serviceLog}
	if err := s.Ping(ctx); err != nil {
		serviceLog.Warn("db unavailable, running without database", "driver", cfg.Driver, "error", err)
		return s, nil
	}
	serviceLog.Info("db connected", "driver", cfg.Driver)

	if cfg.Sync {
		if err := AutoMigrateAll(db); err != nil {
			serviceLog.Warn("db schema sync failed, running without database", "error", err)
			return s, nil
		}
		serviceLog.Info("db synced")
	}
	s.reachable = true
	return s, nil
}

// FromGorm wraps an existing handle, treating it as reachable.
func FromGorm(db *gorm.DB, logg *logger.Logger) *Service {
	return &Service{db: db, log: logg.With("service", "DBService"), reachable: db != nil}
}

func (s *Service) DB() *gorm.DB {
	if s == nil {
		return nil
	}
	return s.db
}

// Reachable reports the outcome of the startup probe.
func (s *Service) Reachable() bool {
	return s != nil && s.db != nil && s.reachable
}

func (s *Service) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db not initialized")
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func (s *Service) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(cfg config.DBConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverPostgres, "":
		return postgres.Open(PostgresDSN(cfg)), nil
	case config.DriverSQLite:
		dsn := strings.TrimSpace(cfg.DSN)
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.Driver)
	}
}

// PostgresDSN prefers an explicit DSN and otherwise builds one from parts.
func PostgresDSN(cfg config.DBConfig) string {
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		return dsn
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
		sslMode,
	)
}
