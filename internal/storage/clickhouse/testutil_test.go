package clickhouse

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a ClickHouse container and returns a connection.
// Returns a cleanup function that must be called when done.
func setupTestDB(t *testing.T) (*Conn, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "clickhouse/clickhouse-server:24.1-alpine",
		ExposedPorts: []string{"9000/tcp", "8123/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForLog("Application: Ready for connections").
				WithStartupTimeout(60 * time.Second),
			wait.ForListeningPort("9000/tcp"),
		),
		Env: map[string]string{
			"CLICKHOUSE_DB":       "test",
			"CLICKHOUSE_USER":     "default",
			"CLICKHOUSE_PASSWORD": "",
		},
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "9000")
	require.NoError(t, err)

	dsn := fmt.Sprintf("clickhouse://%s:%s/test", host, port.Port())

	conn, err := NewConn(ctx, dsn)
	require.NoError(t, err)

	createTables(t, conn)

	cleanup := func() {
		conn.Close()
		_ = container.Terminate(ctx)
	}

	return conn, cleanup
}

// createTables applies the schema directly. Kept in sync with
// internal/storage/migrations/clickhouse/*.sql; inline so the tests do not
// depend on the migrations package.
func createTables(t *testing.T, conn *Conn) {
	t.Helper()
	ctx := context.Background()

	err := conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS daily_signal_buckets (
			ticker                  String,
			day                     String,
			news_count              UInt32,
			news_sentiment_sum      Float64,
			news_sentiment_n        UInt32,
			retail_engagement_sum   Float64,
			retail_hype_sum         Float64,
			retail_count            UInt32,
			is_swan_day             UInt8,
			created_at              DateTime64(3) DEFAULT now64(3)
		)
		ENGINE = ReplacingMergeTree(created_at)
		ORDER BY (ticker, day)
		SETTINGS index_granularity = 8192
	`)
	require.NoError(t, err)

	err = conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS noise_series (
			ticker              String,
			day                 String,
			news_volume_norm    Float64,
			retail_volume_norm  Float64,
			avg_news_sentiment  Float64,
			avg_retail_hype     Float64,
			raw_combined        Float64,
			z_score             Float64,
			noise_index         Float64,
			is_swan             UInt8,
			created_at          DateTime64(3) DEFAULT now64(3)
		)
		ENGINE = ReplacingMergeTree(created_at)
		ORDER BY (ticker, day)
		SETTINGS index_granularity = 8192
	`)
	require.NoError(t, err)
}
