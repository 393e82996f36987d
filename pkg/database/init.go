package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Alijeyrad/formsbot/config"
)

// InitializeDatabases creates the configured PostgreSQL databases if they
// don't exist. It connects to the default 'postgres' database to create the
// others. For SQLite it only makes sure the database file can be created.
func InitializeDatabases(cfg *config.Config) error {
	dbCfg := FromCentralConfig(cfg.Database)

	if dbCfg.NormalizedDriver() == DriverSQLite {
		conn, err := openSQLDB(dbCfg)
		if err != nil {
			return fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return conn.Close()
	}

	names := cfg.Server.Databases
	if len(names) == 0 && dbCfg.DBName != "" {
		names = []string{dbCfg.DBName}
	}
	if len(names) == 0 {
		return fmt.Errorf("no database names provided")
	}

	// Connect to 'postgres' database
	postgresConfig := Config{
		Driver:   DriverPostgres,
		Host:     dbCfg.Host,
		Port:     dbCfg.Port,
		User:     dbCfg.User,
		Password: dbCfg.Password,
		DBName:   "postgres",
		SSLMode:  dbCfg.SSLMode,
	}

	conn, err := openSQLDB(postgresConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres database: %w", err)
	}
	defer conn.Close()

	for _, dbName := range names {
		if err := createDatabaseIfNotExists(conn, dbName); err != nil {
			return fmt.Errorf("failed to create database %q: %w", dbName, err)
		}
	}

	return nil
}

// createDatabaseIfNotExists creates a database if it doesn't already exist
func createDatabaseIfNotExists(conn *sql.DB, dbName string) error {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`
	err := conn.QueryRowContext(context.Background(), query, dbName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}

	if exists {
		return nil
	}

	createQuery := fmt.Sprintf("CREATE DATABASE %q", dbName)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = conn.ExecContext(ctx, createQuery)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	return nil
}
