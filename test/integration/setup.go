package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing. Mirrors
// scripts/schema.sql.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS products (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price       NUMERIC(10, 2) NOT NULL,
			category    TEXT NOT NULL DEFAULT '',
			images      TEXT[] NOT NULL DEFAULT '{}',
			sizes       TEXT[] NOT NULL DEFAULT '{}',
			colors      TEXT[] NOT NULL DEFAULT '{}',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS orders (
			id                      UUID PRIMARY KEY,
			subtotal                NUMERIC(10, 2) NOT NULL,
			shipping_cost           NUMERIC(10, 2) NOT NULL DEFAULT 0,
			total                   NUMERIC(10, 2) NOT NULL,
			status                  TEXT NOT NULL DEFAULT 'pending',
			payment_status          TEXT NOT NULL DEFAULT 'pending',
			shipping_address        JSONB NOT NULL,
			shipping_service        JSONB NOT NULL,
			tracking_code           TEXT,
			shipping_status         TEXT,
			mercado_pago_payment_id TEXT,
			melhor_envio_id         TEXT,
			created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at              TIMESTAMPTZ NOT NULL DEFAULT now(),

			CONSTRAINT orders_status_check CHECK (
				status IN ('pending', 'confirmed', 'processing', 'shipped', 'delivered', 'cancelled', 'failed')
			),
			CONSTRAINT orders_payment_status_check CHECK (
				payment_status IN ('pending', 'paid', 'failed')
			)
		);

		CREATE TABLE IF NOT EXISTS order_items (
			id            UUID PRIMARY KEY,
			order_id      UUID NOT NULL REFERENCES orders (id),
			product_id    TEXT NOT NULL,
			product_name  TEXT NOT NULL,
			product_image TEXT,
			price         NUMERIC(10, 2) NOT NULL,
			quantity      INTEGER NOT NULL CHECK (quantity > 0),
			size          TEXT,
			color         TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items (order_id);
		CREATE INDEX IF NOT EXISTS idx_orders_payment_status ON orders (payment_status);
		CREATE INDEX IF NOT EXISTS idx_orders_mercado_pago_payment_id ON orders (mercado_pago_payment_id);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedProducts inserts test catalogue data into the database.
func SeedProducts(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	products := []struct {
		id          string
		name        string
		description string
		price       float64
		category    string
		images      []string
		sizes       []string
		colors      []string
	}{
		{"bermuda-sarja", "Bermuda de Sarja", "Bermuda masculina de sarja", 99.90, "bermudas",
			[]string{"https://cdn.example.com/bermuda-sarja-1.jpg"}, []string{"38", "40", "42"}, []string{"caqui"}},
		{"blusa-seda", "Blusa de Seda", "Blusa feminina de seda", 159.90, "blusas",
			[]string{"https://cdn.example.com/blusa-seda-1.jpg"}, []string{"P", "M", "G"}, []string{"off-white", "preto"}},
		{"camisa-algodao", "Camisa de Algodão", "Camisa social de algodão", 119.90, "camisas",
			[]string{"https://cdn.example.com/camisa-algodao-1.jpg"}, []string{"P", "M", "G", "GG"}, []string{"branco", "azul"}},
		{"saia-midi", "Saia Midi", "Saia midi plissada", 139.90, "saias",
			[]string{"https://cdn.example.com/saia-midi-1.jpg"}, []string{"P", "M"}, []string{"terracota"}},
		{"vestido-linho", "Vestido de Linho", "Vestido midi de linho natural", 189.90, "vestidos",
			[]string{"https://cdn.example.com/vestido-linho-1.jpg"}, []string{"P", "M", "G"}, []string{"cru", "verde"}},
	}

	for _, p := range products {
		_, err := pool.Exec(ctx,
			"INSERT INTO products (id, name, description, price, category, images, sizes, colors) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
			p.id, p.name, p.description, p.price, p.category, p.images, p.sizes, p.colors,
		)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", p.id, err)
		}
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_items", "orders", "products"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
