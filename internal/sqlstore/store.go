// Package sqlstore opens the relational store that receives committed cases
// and manages its schema. MySQL is the production target; SQLite serves
// local runs and tests.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/docket/pkg/types"
)

const (
	defaultMySQLPort = 3306
	dialTimeout      = 10 * time.Second
	busyTimeoutMS    = 5000
)

// DSN returns the database/sql driver name and data source name for c.
func DSN(c types.DatabaseConfig) (driver, dsn string, err error) {
	if err := c.Validate(); err != nil {
		return "", "", err
	}
	switch c.Driver {
	case types.DriverMySQL:
		port := c.Port
		if port == 0 {
			port = defaultMySQLPort
		}
		cfg := mysql.NewConfig()
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(port))
		cfg.User = c.User
		cfg.Passwd = c.Password
		cfg.DBName = c.Name
		cfg.ParseTime = true
		cfg.Collation = "utf8mb4_unicode_ci"
		cfg.Timeout = dialTimeout
		return "mysql", cfg.FormatDSN(), nil
	case types.DriverSQLite:
		q := url.Values{}
		q.Add("_pragma", "foreign_keys(1)")
		q.Add("_pragma", "busy_timeout("+strconv.Itoa(busyTimeoutMS)+")")
		return "sqlite", "file:" + c.Path + "?" + q.Encode(), nil
	}
	return "", "", types.ErrDriverUnknown
}

// Open opens and pings the store described by c. A SQLite file's directory
// is created if needed.
func Open(ctx context.Context, c types.DatabaseConfig) (*sql.DB, error) {
	driver, dsn, err := DSN(c)
	if err != nil {
		return nil, err
	}
	if driver == types.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s database: %w", driver, err)
	}
	return db, nil
}

// EnsureSchema creates the tables for driver if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB, driver string) error {
	ddl, ok := schemaDDL[driver]
	if !ok {
		return types.ErrDriverUnknown
	}
	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// Counts holds the number of rows in each table.
type Counts struct {
	Cases        int `json:"expedientes" yaml:"expedientes"`
	Movements    int `json:"movimientos" yaml:"movimientos"`
	Participants int `json:"participantes" yaml:"participantes"`
}

// Count reports the row count of every table.
func Count(ctx context.Context, db *sql.DB) (Counts, error) {
	var c Counts
	targets := []struct {
		table string
		dst   *int
	}{
		{TableCases, &c.Cases},
		{TableMovements, &c.Movements},
		{TableParticipants, &c.Participants},
	}
	for _, t := range targets {
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.table).Scan(t.dst); err != nil {
			return Counts{}, fmt.Errorf("counting %s: %w", t.table, err)
		}
	}
	return c, nil
}
