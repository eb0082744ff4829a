package preferences

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/i474232898/cloudcast/internal/weather"
)

// Supported SQL drivers for the remote preferences table.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

var schemas = map[string]string{
	DriverSQLite: `CREATE TABLE IF NOT EXISTS user_preferences (
		user_id TEXT PRIMARY KEY,
		favorite_cities TEXT NOT NULL DEFAULT '[]',
		default_city TEXT NOT NULL DEFAULT '',
		temperature_unit TEXT NOT NULL,
		theme_preference TEXT NOT NULL,
		language TEXT NOT NULL,
		notifications_enabled INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL
	)`,
	DriverMySQL: `CREATE TABLE IF NOT EXISTS user_preferences (
		user_id CHAR(36) NOT NULL PRIMARY KEY,
		favorite_cities TEXT NOT NULL,
		default_city VARCHAR(255) NOT NULL DEFAULT '',
		temperature_unit VARCHAR(16) NOT NULL,
		theme_preference VARCHAR(16) NOT NULL,
		language VARCHAR(8) NOT NULL,
		notifications_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at VARCHAR(40) NOT NULL
	)`,
}

const insertColumns = `INSERT INTO user_preferences
	(user_id, favorite_cities, default_city, temperature_unit, theme_preference, language, notifications_enabled, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

var upserts = map[string]string{
	DriverSQLite: insertColumns + `
	ON CONFLICT(user_id) DO UPDATE SET
		favorite_cities = excluded.favorite_cities,
		default_city = excluded.default_city,
		temperature_unit = excluded.temperature_unit,
		theme_preference = excluded.theme_preference,
		language = excluded.language,
		notifications_enabled = excluded.notifications_enabled,
		updated_at = excluded.updated_at`,
	DriverMySQL: insertColumns + `
	ON DUPLICATE KEY UPDATE
		favorite_cities = VALUES(favorite_cities),
		default_city = VALUES(default_city),
		temperature_unit = VALUES(temperature_unit),
		theme_preference = VALUES(theme_preference),
		language = VALUES(language),
		notifications_enabled = VALUES(notifications_enabled),
		updated_at = VALUES(updated_at)`,
}

const selectRow = `SELECT favorite_cities, default_city, temperature_unit, theme_preference, language, notifications_enabled
	FROM user_preferences WHERE user_id = ?`

// SQLRemote stores one preferences row per user in a SQL database.
type SQLRemote struct {
	db     *sql.DB
	driver string
}

// OpenSQLRemote opens dsn with driver ("sqlite" or "mysql") and creates the
// table if needed.
func OpenSQLRemote(ctx context.Context, driver, dsn string) (*SQLRemote, error) {
	schema, ok := schemas[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported preferences driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create user_preferences: %w", err)
	}
	return &SQLRemote{db: db, driver: driver}, nil
}

// Get reads the row for userID.
func (r *SQLRemote) Get(ctx context.Context, userID uuid.UUID) (Preferences, bool, error) {
	var (
		favorites string
		unit      string
		theme     string
		p         Preferences
	)
	err := r.db.QueryRowContext(ctx, selectRow, userID.String()).Scan(
		&favorites, &p.DefaultCity, &unit, &theme, &p.Language, &p.NotificationsEnabled)
	if errors.Is(err, sql.ErrNoRows) {
		return Preferences{}, false, nil
	}
	if err != nil {
		return Preferences{}, false, fmt.Errorf("select preferences: %w", err)
	}

	if err := json.Unmarshal([]byte(favorites), &p.FavoriteCities); err != nil {
		return Preferences{}, false, fmt.Errorf("decode favorite_cities: %w", err)
	}
	p.TemperatureUnit = weather.TemperatureUnit(unit)
	p.ThemePreference = Theme(theme)
	return normalize(p), true, nil
}

// Upsert writes the row for userID, replacing any existing one.
func (r *SQLRemote) Upsert(ctx context.Context, userID uuid.UUID, p Preferences) error {
	favorites, err := json.Marshal(p.clone().FavoriteCities)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, upserts[r.driver],
		userID.String(),
		string(favorites),
		p.DefaultCity,
		string(p.TemperatureUnit),
		string(p.ThemePreference),
		p.Language,
		p.NotificationsEnabled,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}

// Close closes the database.
func (r *SQLRemote) Close() error {
	return r.db.Close()
}
