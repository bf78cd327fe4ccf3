// Package database opens the service's connection pool for one of the
// supported drivers: mysql, pgx, postgres (lib/pq) and sqlite3.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/mongoose-kitchen/mongoose/internal/orm/dialect"
)

// Config describes the database connection and its pool
type Config struct {
	Driver string `mapstructure:"driver"`

	// URL is a driver DSN. When empty a MySQL DSN is assembled from the
	// discrete fields below.
	URL string `mapstructure:"url"`

	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`

	// ProbeTables makes every entity check its table before use
	ProbeTables bool `mapstructure:"probe_tables"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

// DefaultConfig returns the settings used when nothing is configured
func DefaultConfig() Config {
	return Config{
		Driver:          "mysql",
		Host:            "localhost",
		Port:            3306,
		User:            "foo",
		Password:        "bar",
		Name:            "mongoose",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

// DSN returns the data source name for the configured driver
func (c Config) DSN() (string, error) {
	if c.URL != "" {
		return c.URL, nil
	}
	if c.Driver != "mysql" {
		return "", fmt.Errorf("database.url is required for driver %q", c.Driver)
	}

	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.Name
	return mc.FormatDSN(), nil
}

// DB is an open pool together with the SQL dialect of its driver
type DB struct {
	*sql.DB
	Dialect dialect.Dialect
	Driver  string
}

// Open opens and pings the pool described by cfg
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	d, err := dialect.ForDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}
	if err := configurePool(ctx, db, cfg); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database connected",
		zap.String("driver", cfg.Driver),
		zap.String("dialect", d.String()),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
	)
	return &DB{DB: db, Dialect: d, Driver: cfg.Driver}, nil
}

// configurePool applies the pool limits and checks the connection
func configurePool(ctx context.Context, db *sql.DB, cfg Config) error {
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}
