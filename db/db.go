package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"keyword_bot/config"
)

var (
	DB *sql.DB // 数据库连接
)

// driverName 配置中的驱动名映射到 database/sql 注册名
func driverName(driver string) (string, error) {
	switch driver {
	case "mysql":
		return "mysql", nil
	case "sqlite", "sqlite3", "":
		return "sqlite", nil
	default:
		return "", fmt.Errorf("%w: unsupported database driver %q", config.ErrConfiguration, driver)
	}
}

// Open 按配置打开数据库连接池并检查连通性
func Open(cfg *config.Config) (*sql.DB, error) {
	name, err := driverName(cfg.DB.Driver)
	if err != nil {
		return nil, err
	}

	dsn := cfg.DB.DSN
	if name == "sqlite" {
		dsn = cfg.DB.Path
	}
	if dsn == "" {
		return nil, fmt.Errorf("%w: database dsn is empty for driver %s", config.ErrConfiguration, name)
	}

	conn, err := sql.Open(name, dsn)
	if err != nil {
		return nil, err
	}

	if name == "sqlite" {
		// a single connection keeps :memory: databases shared and serializes writers
		conn.SetMaxOpenConns(1)
	} else {
		// 从配置读取连接池参数，提供默认值保护
		maxOpenConns := cfg.DB.MaxOpenConns
		if maxOpenConns <= 0 {
			maxOpenConns = 50 // 默认最大连接数
		}

		maxIdleConns := cfg.DB.MaxIdleConns
		if maxIdleConns <= 0 {
			maxIdleConns = 10 // 默认最大空闲连接数
		}

		connMaxLifetime := cfg.DB.ConnMaxLifetime
		if connMaxLifetime <= 0 {
			connMaxLifetime = 60 // 默认连接最大生命周期（分钟）
		}

		conn.SetMaxOpenConns(maxOpenConns)
		conn.SetMaxIdleConns(maxIdleConns)
		conn.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Minute)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// InitWithConfig 初始化全局连接并建表
func InitWithConfig(cfg *config.Config) error {
	conn, err := Open(cfg)
	if err != nil {
		return err
	}
	if err := EnsureSchema(context.Background(), conn, cfg.DB.Driver); err != nil {
		conn.Close()
		return err
	}
	DB = conn
	return nil
}

// Close 关闭全局连接
func Close() error {
	if DB == nil {
		return nil
	}
	err := DB.Close()
	DB = nil
	return err
}

const mysqlSchema = `
CREATE TABLE IF NOT EXISTS keyword_runs (
	run_id       VARCHAR(26)  NOT NULL PRIMARY KEY,
	query        VARCHAR(255) NOT NULL,
	mode         VARCHAR(16)  NOT NULL,
	top_category VARCHAR(255) NOT NULL DEFAULT '',
	start_date   VARCHAR(10)  NOT NULL,
	end_date     VARCHAR(10)  NOT NULL,
	records      TEXT         NOT NULL,
	created_at   BIGINT       NOT NULL,
	INDEX idx_keyword_runs_query_created (query, created_at)
) DEFAULT CHARSET=utf8mb4`

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS keyword_runs (
	run_id       TEXT    NOT NULL PRIMARY KEY,
	query        TEXT    NOT NULL,
	mode         TEXT    NOT NULL,
	top_category TEXT    NOT NULL DEFAULT '',
	start_date   TEXT    NOT NULL,
	end_date     TEXT    NOT NULL,
	records      TEXT    NOT NULL,
	created_at   INTEGER NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_keyword_runs_query_created ON keyword_runs (query, created_at)`,
}

// EnsureSchema 创建运行历史表（幂等）
func EnsureSchema(ctx context.Context, conn *sql.DB, driver string) error {
	name, err := driverName(driver)
	if err != nil {
		return err
	}
	stmts := sqliteSchema
	if name == "mysql" {
		stmts = []string{mysqlSchema}
	}
	for _, stmt := range stmts {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
