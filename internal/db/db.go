package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            role TEXT NOT NULL DEFAULT 'registered' CHECK (role IN ('registered', 'admin')),
            name TEXT NOT NULL,
            surname TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            phone TEXT,
            photo TEXT,
            active BOOLEAN NOT NULL DEFAULT TRUE,
            registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS listings (
            id BIGSERIAL PRIMARY KEY,
            owner_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            title TEXT NOT NULL,
            description TEXT NOT NULL,
            price NUMERIC(10,2) NOT NULL CHECK (price >= 0),
            images JSONB NOT NULL DEFAULT '[]',
            status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive', 'deleted')),
            published_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_listings_owner ON listings(owner_id);`,
		`CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status);`,
		`CREATE TABLE IF NOT EXISTS messages (
            id BIGSERIAL PRIMARY KEY,
            sender_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            recipient_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            listing_id BIGINT REFERENCES listings(id) ON DELETE SET NULL,
            body TEXT NOT NULL,
            sent_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender_id, sent_at);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_recipient ON messages(recipient_id, sent_at);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_listing ON messages(listing_id) WHERE listing_id IS NOT NULL;`,
		`CREATE TABLE IF NOT EXISTS ratings (
            id BIGSERIAL PRIMARY KEY,
            listing_id BIGINT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
            user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            score INT NOT NULL CHECK (score BETWEEN 1 AND 5),
            comment TEXT,
            rated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE (listing_id, user_id)
        );`,
		`CREATE TABLE IF NOT EXISTS favorites (
            user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            listing_id BIGINT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
            added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY (user_id, listing_id)
        );`,
		`CREATE TABLE IF NOT EXISTS payments (
            id BIGSERIAL PRIMARY KEY,
            payer_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            payee_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            listing_id BIGINT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
            amount NUMERIC(10,2) NOT NULL CHECK (amount >= 0),
            status TEXT NOT NULL DEFAULT 'completed' CHECK (status IN ('pending', 'completed', 'failed')),
            paid_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_payments_payer ON payments(payer_id, paid_at);`,
		`CREATE INDEX IF NOT EXISTS idx_payments_payee ON payments(payee_id, paid_at);`,
		`CREATE TABLE IF NOT EXISTS reports (
            id BIGSERIAL PRIMARY KEY,
            admin_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            kind TEXT NOT NULL CHECK (kind IN ('users', 'listings', 'payments', 'messages', 'ratings')),
            params JSONB NOT NULL DEFAULT '{}',
            generated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}
