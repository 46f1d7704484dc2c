package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"recordhub/internal/infra/seedsource"
	"recordhub/internal/platform/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		HTTPAddr:           "127.0.0.1:0",
		LogLevel:           "<root>=WARNING",
		SeedDriver:         seedsource.DriverNone,
		SeedKey:            "data.json",
		SubscriptionBuffer: 4,
		ShutdownTimeout:    2 * time.Second,
	}
}

func startRun(t *testing.T, cfg config.Config) (string, context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	addrCh := make(chan net.Addr, 1)
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, func(a net.Addr) { addrCh <- a }) }()
	select {
	case addr := <-addrCh:
		return "http://" + addr.String(), cancel, done
	case err := <-done:
		cancel()
		t.Fatalf("run exited early: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatalf("server did not start")
	}
	return "", cancel, done
}

func TestRunServesSeededData(t *testing.T) {
	root := t.TempDir()
	seedDoc := `{"authors":[{"id":1,"name":"Ada","surname":"Lovelace","age":36}],"books":[{"id":1,"title":"Notes","author_id":1,"pages":10}]}`
	if err := os.WriteFile(filepath.Join(root, "data.json"), []byte(seedDoc), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	cfg := testConfig(t)
	cfg.SeedDriver = seedsource.DriverFilesystem
	cfg.SeedRoot = root

	base, cancel, done := startRun(t, cfg)
	resp, err := http.Get(base + "/api/v1/books/1?include=author")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var book map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&book)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || book["author"].(map[string]any)["name"] != "Ada" {
		t.Fatalf("unexpected response %d %v", resp.StatusCode, book)
	}

	resp, err = http.Get(base + "/metrics")
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics: %v", err)
	}
	_ = resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("run did not stop")
	}
}

func TestRunStartsEmptyWhenSeedMissing(t *testing.T) {
	cfg := testConfig(t)
	cfg.SeedDriver = seedsource.DriverFilesystem
	cfg.SeedRoot = t.TempDir()
	_, cancel, done := startRun(t, cfg)
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunRejectsMemorySeedDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.SeedDriver = seedsource.DriverMemory
	if err := run(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected memory seed driver to be rejected")
	}
}

func TestRunFailsOnBadSeed(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "data.json"), []byte("{"), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	cfg := testConfig(t)
	cfg.SeedDriver = seedsource.DriverFilesystem
	cfg.SeedRoot = root
	if err := run(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected seed error")
	}
}
