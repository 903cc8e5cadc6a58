// Package main implements a standalone seed script that populates a gatepass
// database with an admin account and a spread of sample events. It talks SQL
// directly, so the server does not need to be running; point it at the same
// database the server uses.
//
// Usage:
//
//	POSTGRES_HOST=localhost ADMIN_EMAIL=admin@gatepass.dev ADMIN_PASSWORD=... go run ./seed
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func dsn() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("POSTGRES_USER", "postgres"),
		getEnv("POSTGRES_PASSWORD", "postgres"),
		getEnv("POSTGRES_HOST", "localhost"),
		getEnv("POSTGRES_PORT", "5432"),
		getEnv("POSTGRES_DB_NAME", "gatepass"),
		getEnv("POSTGRES_SSL_MODE", "disable"),
	)
}

// seedAdmin creates (or reuses) the admin account and grants it both roles.
func seedAdmin(ctx context.Context, pool *pgxpool.Pool, email, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", fmt.Errorf("hash admin password: %w", err)
	}

	var userID string
	err = pool.QueryRow(ctx, `
		INSERT INTO users (user_name, first_name, last_name, email, password_hash, age)
		VALUES ('admin', 'Admin', 'User', $1, $2, 30)
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash
		RETURNING id`, email, string(hash)).Scan(&userID)
	if err != nil {
		return "", fmt.Errorf("upsert admin user: %w", err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name IN ('USER', 'ADMIN')
		ON CONFLICT DO NOTHING`, userID)
	if err != nil {
		return "", fmt.Errorf("grant admin roles: %w", err)
	}

	return userID, nil
}

var venues = []string{
	"Grand Arena", "Riverside Hall", "The Warehouse", "Summit Center",
	"Harborview Pavilion", "Old Town Theatre",
}

var eventTemplates = []struct {
	name     string
	category string
	price    int64 // cents
}{
	{"Indie Rock Night", "concert", 3500},
	{"Symphony Under the Stars", "concert", 5500},
	{"Go Developer Summit", "conference", 19900},
	{"Data Engineering Days", "conference", 14900},
	{"Stand-up Showcase", "comedy", 2500},
	{"Improv Marathon", "comedy", 1800},
	{"City Food Festival", "festival", 1200},
	{"Winter Lights Festival", "festival", 900},
	{"Championship Qualifier", "sports", 4200},
	{"Charity Fun Run", "sports", 1500},
}

func seedEvents(ctx context.Context, pool *pgxpool.Pool, count int) error {
	for i := 0; i < count; i++ {
		tpl := eventTemplates[i%len(eventTemplates)]
		quantity := 50 + rand.Intn(450)
		date := time.Now().AddDate(0, 0, 7+rand.Intn(180)).Truncate(time.Hour)

		_, err := pool.Exec(ctx, `
			INSERT INTO events (name, description, date, venue, quantity, remaining_quantity, price, category, is_open)
			VALUES ($1, $2, $3, $4, $5, $5, $6, $7, TRUE)`,
			fmt.Sprintf("%s #%d", tpl.name, i+1),
			fmt.Sprintf("Seeded %s event at %s.", tpl.category, venues[i%len(venues)]),
			date,
			venues[i%len(venues)],
			quantity,
			tpl.price,
			tpl.category,
		)
		if err != nil {
			return fmt.Errorf("insert event %d: %w", i+1, err)
		}
	}
	return nil
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn())
	if err != nil {
		log.Fatalf("connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping postgres: %v", err)
	}

	adminEmail := getEnv("ADMIN_EMAIL", "admin@gatepass.dev")
	adminPassword := getEnv("ADMIN_PASSWORD", "")
	if adminPassword == "" {
		log.Fatal("ADMIN_PASSWORD must be set")
	}

	adminID, err := seedAdmin(ctx, pool, adminEmail, adminPassword)
	if err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	log.Printf("admin account ready: %s (%s)", adminEmail, adminID)

	var existing int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM events WHERE description LIKE 'Seeded %'`).Scan(&existing); err != nil && err != pgx.ErrNoRows {
		log.Fatalf("count seeded events: %v", err)
	}
	if existing > 0 {
		log.Printf("found %d seeded events, skipping event seeding", existing)
		return
	}

	if err := seedEvents(ctx, pool, 30); err != nil {
		log.Fatalf("seed events: %v", err)
	}
	log.Print("seeded 30 events")
}
