package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB is the global database connection
var DB *sql.DB

// Config holds database configuration
type Config struct {
	Path string
}

// Open initializes the database connection and runs migrations.
// Transactions are opened IMMEDIATE so concurrent writers queue on the
// sqlite write lock instead of failing at commit time.
func Open(cfg Config) error {
	// Ensure directory exists
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	var err error
	DB, err = sql.Open("sqlite", cfg.Path+"?_txlock=immediate&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Run migrations
	if err := migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// migrate runs all database migrations
func migrate() error {
	// Create migrations table
	_, err := DB.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	// Run each migration
	for _, m := range migrations {
		if err := runMigration(m); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.name, err)
		}
	}

	return nil
}

type migration struct {
	name string
	up   string
}

func runMigration(m migration) error {
	// Check if already applied
	var count int
	err := DB.QueryRow("SELECT COUNT(*) FROM migrations WHERE name = ?", m.name).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // Already applied
	}

	// Run migration
	if _, err := DB.Exec(m.up); err != nil {
		return err
	}

	// Record migration
	_, err = DB.Exec("INSERT INTO migrations (name) VALUES (?)", m.name)
	return err
}

var migrations = []migration{
	{
		name: "001_create_users",
		up: `
			CREATE TABLE users (
				id TEXT PRIMARY KEY,
				full_name TEXT NOT NULL,
				email TEXT UNIQUE,
				password_hash TEXT,
				role TEXT NOT NULL DEFAULT 'student',
				auth_type TEXT NOT NULL DEFAULT 'local',
				year INTEGER,
				department TEXT,
				program TEXT,
				college TEXT,
				disabled INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				last_login DATETIME
			);
			CREATE INDEX idx_users_email ON users(email);
			CREATE INDEX idx_users_role ON users(role);
			CREATE INDEX idx_users_program_year ON users(program, year);
		`,
	},
	{
		name: "002_create_sessions",
		up: `
			CREATE TABLE sessions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id TEXT NOT NULL,
				token_hash TEXT NOT NULL UNIQUE,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				expires_at DATETIME NOT NULL,
				ip_address TEXT,
				user_agent TEXT,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			);
			CREATE INDEX idx_sessions_token_hash ON sessions(token_hash);
			CREATE INDEX idx_sessions_user_id ON sessions(user_id);
			CREATE INDEX idx_sessions_expires_at ON sessions(expires_at);
		`,
	},
	{
		name: "003_create_timetable",
		up: `
			CREATE TABLE timetable (
				college TEXT,
				department TEXT,
				program TEXT,
				year_semester TEXT,
				course_code TEXT NOT NULL,
				course_name TEXT NOT NULL,
				section TEXT,
				day TEXT,
				from_time TEXT,
				to_time TEXT,
				venue TEXT,
				lecturer TEXT,
				lecturer_id TEXT,
				latitude REAL,
				longitude REAL,
				allowed_ips TEXT
			);
			CREATE INDEX idx_timetable_course_code ON timetable(course_code);
			CREATE INDEX idx_timetable_lecturer_id ON timetable(lecturer_id);
			CREATE INDEX idx_timetable_program ON timetable(program, year_semester);
		`,
	},
	{
		name: "004_create_attendance_sessions",
		up: `
			CREATE TABLE attendance_sessions (
				id TEXT PRIMARY KEY,
				class_id TEXT NOT NULL,
				secret TEXT NOT NULL,
				created_at DATETIME NOT NULL,
				expires_at DATETIME NOT NULL,
				active INTEGER NOT NULL DEFAULT 1,
				lecturer_ip TEXT
			);
			CREATE INDEX idx_attendance_sessions_class ON attendance_sessions(class_id, expires_at);
		`,
	},
	{
		name: "005_create_attendance_marks",
		up: `
			CREATE TABLE attendance_marks (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				class_id TEXT NOT NULL,
				date TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'present',
				method TEXT NOT NULL DEFAULT 'manual',
				marked_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				UNIQUE (user_id, class_id, date)
			);
			CREATE INDEX idx_attendance_marks_user ON attendance_marks(user_id);
			CREATE INDEX idx_attendance_marks_class ON attendance_marks(class_id);
			CREATE INDEX idx_attendance_marks_date ON attendance_marks(date);
		`,
	},
	{
		name: "006_create_audit_logs",
		up: `
			CREATE TABLE audit_logs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
				user_id TEXT,
				username TEXT,
				action TEXT NOT NULL,
				target TEXT,
				details TEXT,
				ip_address TEXT
			);
			CREATE INDEX idx_audit_logs_timestamp ON audit_logs(timestamp);
			CREATE INDEX idx_audit_logs_user_id ON audit_logs(user_id);
			CREATE INDEX idx_audit_logs_action ON audit_logs(action);
		`,
	},
	{
		name: "007_create_settings",
		up: `
			CREATE TABLE settings (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);
			-- Default settings
			INSERT INTO settings (key, value) VALUES
				('attendance.session_lifetime_minutes', '120'),
				('attendance.code_window_steps', '1'),
				('session.timeout_minutes', '60'),
				('auth.sso_enabled', 'false');
		`,
	},
}
