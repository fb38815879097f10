package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticlesHarmonizer/internal/config"
	"ArticlesHarmonizer/internal/domain"
)

func testConfig() config.Config {
	return config.Config{
		Logging:   config.LoggingConfig{Level: "error"},
		Database:  config.DatabaseConfig{Driver: config.DriverSQLite, DSN: ":memory:"},
		Pipeline:  config.PipelineConfig{Sources: []string{"gfg"}, LockStaleAfter: time.Minute},
		Scheduler: config.SchedulerConfig{Interval: time.Hour},
		HTTP:      config.HTTPConfig{Addr: "127.0.0.1:0"},
	}
}

func newApp(t *testing.T, cfg config.Config) *Application {
	t.Helper()
	a, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	require.NoError(t, a.Migrate())
	return a
}

func TestApplicationIngestRunStats(t *testing.T) {
	ctx := context.Background()
	a := newApp(t, testConfig())

	path := filepath.Join(t.TempDir(), "gfg.csv")
	require.NoError(t, os.WriteFile(path, []byte(`title,author_id,last_updated,link,category
Understanding Bloom Filters,anjalibo6rb,"5 Jun, 2023",https://www.geeksforgeeks.org/bloom-filters-introduction/,medium
Broken Link Article,anjalibo6rb,"6 Jun, 2023",not-a-url/broken-link/,easy
`), 0o600))

	n, err := a.IngestGFG(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	results, err := a.Run(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.SourceGFG, results[0].Source)
	assert.Equal(t, 1, results[0].Integrated)
	assert.Equal(t, 1, results[0].Quarantined)

	dim, q, err := a.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dim.Total)
	assert.Equal(t, "2023-06-05", domain.Deref(dim.EarliestPub))
	require.Len(t, q, 1)
	assert.Equal(t, domain.TableGFGStaging, q[0].SourceTable)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles/bloom-filters-introduction", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	metricsRec := httptest.NewRecorder()
	a.Handler().ServeHTTP(metricsRec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, metricsRec.Body.String(), `harmonizer_rows_total`)
}

func TestApplicationIngestGFGNeedsPath(t *testing.T) {
	a := newApp(t, testConfig())
	_, err := a.IngestGFG(context.Background(), "")
	assert.Error(t, err)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Driver = "mysql"
	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestServeStopsOnCancel(t *testing.T) {
	a := newApp(t, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
