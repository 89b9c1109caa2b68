package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/vayhout/notesphere/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

// NewMySQLConnection opens the database and verifies connectivity with a
// bounded retry, so the service survives the database still starting up.
// parseTime+loc=UTC make every DATETIME column come back as a time.Time
// tagged UTC, which is how the columns are written.
func NewMySQLConnection(cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC&multiStatements=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	var pingErr error
	for attempt := 1; attempt <= cfg.DBMaxAttempts; attempt++ {
		pingErr = db.Ping()
		if pingErr == nil {
			return db, nil
		}
		log.Printf("Database ping attempt %d/%d failed: %v", attempt, cfg.DBMaxAttempts, pingErr)
		time.Sleep(2 * time.Second)
	}

	db.Close()
	return nil, fmt.Errorf("database unreachable after %d attempts: %w", cfg.DBMaxAttempts, pingErr)
}

// Migrate applies the embedded schema migrations.
func Migrate(db *sql.DB, dbName string) error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	driver, err := migratemysql.WithInstance(db, &migratemysql.Config{DatabaseName: dbName})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
