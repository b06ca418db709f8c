package database

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/naperu/collabmesh/pkg/config"
	"golang.org/x/crypto/bcrypt"
)

func Connect(databaseURL string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// Migrate applies the schema for the 11 domain tables plus the dev-login
// credential table. Every statement is idempotent so Migrate can run on
// every boot.
func Migrate(db *pgxpool.Pool) error {
	ctx := context.Background()

	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`,

		`CREATE TABLE IF NOT EXISTS companies (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(100) NOT NULL,
			slug VARCHAR(50) UNIQUE NOT NULL,
			location VARCHAR(100) NOT NULL,
			bio VARCHAR(500) NOT NULL DEFAULT '',
			kvk_number VARCHAR(20) NOT NULL DEFAULT '',
			is_public BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS accounts (
			identity BYTEA PRIMARY KEY,
			full_name VARCHAR(50) NOT NULL,
			nickname VARCHAR(30) NOT NULL,
			email VARCHAR(100) NOT NULL,
			active_company_id UUID REFERENCES companies(id) ON DELETE NO ACTION,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS capabilities (
			company_id UUID PRIMARY KEY REFERENCES companies(id),
			can_install BOOLEAN NOT NULL DEFAULT FALSE,
			has_cnc BOOLEAN NOT NULL DEFAULT FALSE,
			has_large_format BOOLEAN NOT NULL DEFAULT FALSE,
			has_bucket_truck BOOLEAN NOT NULL DEFAULT FALSE
		)`,

		`CREATE TABLE IF NOT EXISTS memberships (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			identity BYTEA NOT NULL,
			company_id UUID NOT NULL REFERENCES companies(id),
			role VARCHAR(20) NOT NULL,
			joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE(identity, company_id)
		)`,

		`CREATE TABLE IF NOT EXISTS invite_codes (
			code VARCHAR(19) PRIMARY KEY,
			company_id UUID NOT NULL REFERENCES companies(id),
			created_by BYTEA NOT NULL,
			max_uses INT NOT NULL,
			uses_remaining INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS connections (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			company_a UUID NOT NULL REFERENCES companies(id),
			company_b UUID NOT NULL REFERENCES companies(id),
			status VARCHAR(20) NOT NULL,
			requested_by BYTEA NOT NULL,
			requested_by_company UUID NOT NULL REFERENCES companies(id),
			initial_message VARCHAR(500) NOT NULL DEFAULT '',
			blocking_company_id UUID,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE(company_a, company_b)
		)`,

		`CREATE TABLE IF NOT EXISTS connection_chats (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			connection_id UUID NOT NULL REFERENCES connections(id),
			sender BYTEA NOT NULL,
			text VARCHAR(500) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS projects (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			owner_company_id UUID NOT NULL REFERENCES companies(id),
			name VARCHAR(80) NOT NULL,
			description VARCHAR(500) NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS project_members (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			project_id UUID NOT NULL REFERENCES projects(id),
			company_id UUID NOT NULL REFERENCES companies(id),
			status VARCHAR(20) NOT NULL,
			invited_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE(project_id, company_id)
		)`,

		`CREATE TABLE IF NOT EXISTS project_chats (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			project_id UUID NOT NULL REFERENCES projects(id),
			sender BYTEA NOT NULL,
			text VARCHAR(500) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			recipient_identity BYTEA NOT NULL,
			company_id UUID NOT NULL REFERENCES companies(id),
			notification_type VARCHAR(40) NOT NULL,
			title VARCHAR(100) NOT NULL,
			body VARCHAR(300) NOT NULL,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		// Dev-login credential table. Not a spec entity: identity itself is
		// externally issued, this is just the stand-in oracle for local/dev
		// use so the HTTP surface has something to authenticate against.
		`CREATE TABLE IF NOT EXISTS dev_credentials (
			username VARCHAR(100) PRIMARY KEY,
			identity BYTEA NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE UNIQUE INDEX IF NOT EXISTS idx_memberships_identity_company ON memberships(identity, company_id)`,
		`CREATE INDEX IF NOT EXISTS idx_memberships_company ON memberships(company_id)`,
		`CREATE INDEX IF NOT EXISTS idx_invite_codes_company ON invite_codes(company_id)`,
		`CREATE INDEX IF NOT EXISTS idx_connections_company_a ON connections(company_a)`,
		`CREATE INDEX IF NOT EXISTS idx_connections_company_b ON connections(company_b)`,
		`CREATE INDEX IF NOT EXISTS idx_connection_chats_connection ON connection_chats(connection_id)`,
		`CREATE INDEX IF NOT EXISTS idx_project_members_company ON project_members(company_id)`,
		`CREATE INDEX IF NOT EXISTS idx_project_members_project ON project_members(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_recipient_company ON notifications(recipient_identity, company_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration failed: %w\nquery: %s", err, migration)
		}
	}

	return nil
}

// SeedDevUser creates a bcrypt-backed dev login for cfg.AdminUser so the HTTP
// surface is reachable before any real identity oracle is wired in. If that
// login already exists it is left unchanged, password included.
func SeedDevUser(db *pgxpool.Pool, cfg *config.Config) error {
	ctx := context.Background()

	var count int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM dev_credentials WHERE username = $1`, cfg.AdminUser).Scan(&count); err != nil {
		return fmt.Errorf("failed to check dev user existence: %w", err)
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash dev password: %w", err)
	}

	seed := sha256.Sum256([]byte(cfg.AdminUser))

	_, err = db.Exec(ctx, `
		INSERT INTO dev_credentials (username, identity, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
	`, cfg.AdminUser, seed[:], string(hashed))
	return err
}
