package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

const usage = "Usage: go run ./cmd/migrate [up|drop]"

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	table := os.Getenv("ENQUIRY_TABLE")
	if table == "" {
		table = "space_enquiries"
	}

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "up":
		if err := run(ctx, conn, createQueries(table)); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("✅ Enquiry table created successfully")

	case "drop":
		if err := run(ctx, conn, dropQueries(table)); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("✅ Enquiry table dropped successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println(usage)
		os.Exit(1)
	}
}

func createQueries(table string) []string {
	ident := pgx.Identifier{table}.Sanitize()
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT NOT NULL,
			email TEXT NOT NULL,
			event_type TEXT NOT NULL CHECK (event_type IN ('birthday', 'corporate', 'picnic', 'wedding', 'workshop', 'other')),
			event_date DATE NOT NULL,
			message TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, ident),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_created_at ON %s(created_at DESC)`, table, ident),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_event_date ON %s(event_date)`, table, ident),
	}
}

func dropQueries(table string) []string {
	return []string{
		fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE`, pgx.Identifier{table}.Sanitize()),
	}
}

func run(ctx context.Context, conn *pgx.Conn, queries []string) error {
	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w\nQuery: %s", err, query)
		}
		fmt.Printf("  Executed: %s\n", firstLine(query))
	}
	return nil
}

func firstLine(query string) string {
	if i := strings.IndexByte(query, '\n'); i >= 0 {
		return strings.TrimSpace(query[:i])
	}
	return query
}
