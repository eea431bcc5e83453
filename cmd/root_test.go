package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/price-check/internal/config"
	"github.com/sells-group/price-check/internal/trigger"
)

const testCatalog = `
items:
  - id: 5057
    name: Iron Ingot
    marketable: true
    vendor_price: 100
  - id: 4
    name: Wind Shard
    marketable: false
    vendor_price: 1
`

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"serve", "check", "modes", "history"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "price-check", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
	require.NotNil(t, serveCmd.Flags().Lookup("world"))
}

func TestCheckCommand_Flags(t *testing.T) {
	for _, name := range []string{"item", "hq", "world"} {
		assert.NotNil(t, checkCmd.Flags().Lookup(name), "check should have --%s", name)
	}
}

func TestModesCommand(t *testing.T) {
	out, err := execute(t, "modes")
	require.NoError(t, err)
	assert.Contains(t, out, "Price modes")
	assert.Contains(t, out, "* 0  Historical Average")
	assert.Contains(t, out, "  4  Current Minimum")
}

func TestCheckCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/73/5057", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"itemID":5057,"worldID":73,"lastUploadTime":1700000000000,"averagePriceNQ":5000.4,"listings":[]}`))
	}))
	defer srv.Close()

	t.Setenv("PRICECHECK_MARKET_BASE_URL", srv.URL)
	t.Setenv("PRICECHECK_CATALOG_PATH", writeCatalog(t))
	t.Setenv("PRICECHECK_CHAT_SHOW", "false")
	t.Setenv("PRICECHECK_TOAST_SHOW", "false")

	out, err := execute(t, "check", "--item", "5057", "--world", "73", "--hq=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Iron Ingot: 5,000 (success)")
	assert.Contains(t, out, "market 5000, vendor 100")
}

func TestCheckCommand_RequiresItem(t *testing.T) {
	_, err := execute(t, "check", "--item", "0", "--world", "73")
	assert.ErrorContains(t, err, "--item is required")
}

func TestHistoryCommand_Disabled(t *testing.T) {
	_, err := execute(t, "history")
	assert.ErrorContains(t, err, "history is disabled")
}

func TestHistoryCommand_SQLite(t *testing.T) {
	t.Setenv("PRICECHECK_HISTORY_DRIVER", "sqlite")
	t.Setenv("PRICECHECK_HISTORY_DATABASE_URL", filepath.Join(t.TempDir(), "h.db"))

	out, err := execute(t, "history", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "no price checks recorded")
}

func TestInitEnv(t *testing.T) {
	c := &config.Config{
		Market:  config.MarketConfig{BaseURL: "http://127.0.0.1:1", RequestTimeoutMs: 100},
		Catalog: config.CatalogConfig{Path: writeCatalog(t)},
		History: config.HistoryConfig{Driver: "sqlite", DatabaseURL: filepath.Join(t.TempDir(), "env.db")},
		Overlay: config.OverlayConfig{MaxItems: 3},
	}
	var chat bytes.Buffer
	env, err := initEnv(context.Background(), func() *config.Config { return c }, &chat, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, env.Catalog.Len())
	assert.Equal(t, 3, env.Store.Capacity())
	require.NotNil(t, env.History)
	require.NotNil(t, env.Service)

	env.applyConfig(&config.Config{Overlay: config.OverlayConfig{MaxItems: 7}})
	assert.Equal(t, 7, env.Store.Capacity())

	env.Close()
	env.Close()
}

func TestInitEnv_Errors(t *testing.T) {
	_, err := initEnv(context.Background(), func() *config.Config { return &config.Config{} }, &bytes.Buffer{}, nil)
	assert.ErrorContains(t, err, "market.base_url")

	c := &config.Config{
		Market:  config.MarketConfig{BaseURL: "http://127.0.0.1:1"},
		Catalog: config.CatalogConfig{Path: filepath.Join(t.TempDir(), "missing.yaml")},
	}
	_, err = initEnv(context.Background(), func() *config.Config { return c }, &bytes.Buffer{}, nil)
	assert.ErrorContains(t, err, "game: read catalog")
}

type countingTicker struct {
	n atomic.Int32
}

func (c *countingTicker) Tick() *trigger.Task {
	c.n.Add(1)
	return nil
}

func TestRunRefresh(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tk := &countingTicker{}

	done := make(chan error, 1)
	go func() { done <- runRefresh(ctx, tk, 5*time.Millisecond) }()

	assert.Eventually(t, func() bool { return tk.n.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

func TestRefreshInterval(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, refreshInterval(&config.Config{}))
	assert.Equal(t, 250*time.Millisecond, refreshInterval(&config.Config{Server: config.ServerConfig{RefreshMs: 250}}))
}
