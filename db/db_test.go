package db

import (
	"context"
	"errors"
	"testing"

	"keyword_bot/config"
)

func memoryConfig() *config.Config {
	cfg := &config.Config{}
	cfg.DB.Driver = "sqlite"
	cfg.DB.Path = ":memory:"
	return cfg
}

func TestInitWithConfigSQLite(t *testing.T) {
	if err := InitWithConfig(memoryConfig()); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer Close()

	// idempotent
	if err := EnsureSchema(context.Background(), DB, "sqlite"); err != nil {
		t.Fatalf("ensure schema twice: %v", err)
	}
	var n int
	if err := DB.QueryRow(`SELECT COUNT(*) FROM keyword_runs`).Scan(&n); err != nil || n != 0 {
		t.Fatalf("count = %d, %v", n, err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.DB.Driver = "postgres"
	if _, err := Open(cfg); !errors.Is(err, config.ErrConfiguration) {
		t.Fatalf("err = %v", err)
	}
}

func TestOpenRequiresMySQLDSN(t *testing.T) {
	cfg := memoryConfig()
	cfg.DB.Driver = "mysql"
	if _, err := Open(cfg); !errors.Is(err, config.ErrConfiguration) {
		t.Fatalf("err = %v", err)
	}
}

func TestCloseWithoutInit(t *testing.T) {
	DB = nil
	if err := Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
