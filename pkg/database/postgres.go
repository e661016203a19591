package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/uptrace/bun/driver/pgdriver"
)

// NewPostgres opens a connection pool using either a full DSN or a
// plain host:port with default local credentials, then applies pending
// migrations. The pool is created once at startup and injected into
// repositories.
func NewPostgres(url, host string) (*sql.DB, error) {
	var connector *pgdriver.Connector
	if url != "" {
		connector = pgdriver.NewConnector(pgdriver.WithDSN(url))
	} else {
		connector = pgdriver.NewConnector(
			pgdriver.WithAddr(host),
			pgdriver.WithUser("postgres"),
			pgdriver.WithPassword("postgres"),
			pgdriver.WithDatabase("chatweb"),
			pgdriver.WithInsecure(true),
		)
	}

	db := sql.OpenDB(connector)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging db: %w", err)
	}

	applied, err := migrate.Exec(db, "postgres", migrations(), migrate.Up)
	if err != nil {
		return nil, fmt.Errorf("applying migrations: %w", err)
	}
	if applied > 0 {
		slog.Info("applied db migrations", "count", applied)
	}

	return db, nil
}

func migrations() *migrate.MemoryMigrationSource {
	return &migrate.MemoryMigrationSource{
		Migrations: []*migrate.Migration{
			{
				Id: "001_create_users",
				Up: []string{`
					CREATE TABLE IF NOT EXISTS users (
						id            UUID PRIMARY KEY,
						name          TEXT NOT NULL,
						email         TEXT NOT NULL UNIQUE,
						password_hash TEXT NOT NULL,
						created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
						updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
					)`,
				},
				Down: []string{`DROP TABLE users`},
			},
			{
				Id: "002_create_conversations",
				Up: []string{`
					CREATE TABLE IF NOT EXISTS conversations (
						id         UUID PRIMARY KEY,
						user_id    UUID NOT NULL,
						title      TEXT NOT NULL,
						messages   JSONB NOT NULL DEFAULT '[]',
						created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
						updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
					)`,
					`CREATE INDEX IF NOT EXISTS conversations_user_recency_idx
						ON conversations (user_id, updated_at DESC)`,
				},
				Down: []string{`DROP TABLE conversations`},
			},
		},
	}
}
