// Package mydb is the top-level facade for the mydb engine.
package mydb

import (
	"go.uber.org/zap"

	"github.com/tuannm99/mydb/internal"
	"github.com/tuannm99/mydb/internal/engine"
)

type (
	Database = engine.Database
	Config   = internal.MyDBConfig
)

// Open opens a database as described by cfg; nil cfg means defaults.
func Open(cfg *Config, log *zap.Logger) (*Database, error) {
	return engine.Open(cfg, log)
}

// LoadConfig reads an optional YAML file plus MYDB_* environment variables.
func LoadConfig(path string) (*Config, error) {
	return internal.LoadConfig(path, nil)
}
