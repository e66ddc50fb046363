package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce-dashboard/internal/config"
)

const testCSV = "order_id,order_approved_at,product_category_name_english,order_item_id,payment_value,review_score,customer_lat,customer_lng\n" +
	"o1,2017-01-05 09:30:00,bed_bath_table,1,20.25,4,-22.9,-43.2\n" +
	"o2,2018-03-10 12:00:00,toys,2,100.50,5,-23.5,-46.6\n"

func testConfig(t *testing.T, csvFile string) *config.Config {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            port,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			IdleTimeout:     5 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Dataset: config.DatasetConfig{
			CSVFile:     csvFile,
			LoadTimeout: 5 * time.Second,
			Workers:     2,
		},
		Security: config.SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8084"},
			TrustedProxies: []string{"127.0.0.1"},
		},
		Tracing: config.TracingConfig{Exporter: "none", SampleRatio: 1},
	}
}

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRun_ServesUntilCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "all_df.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCSV), 0o644))
	cfg := testConfig(t, path)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, testLogger) }()

	base := "http://" + cfg.Address()
	var resp *http.Response
	deadline := time.Now().Add(3 * time.Second)
	for {
		var err error
		resp, err = http.Get(base + "/api/bounds")
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			require.NoError(t, err, "server never came up")
		}
		time.Sleep(20 * time.Millisecond)
	}

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"data"`
	}
	err := json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	require.NoError(t, err, "decode bounds")
	assert.True(t, body.Success)
	assert.Equal(t, "2017-01-05", body.Data.Start)
	assert.Equal(t, "2018-03-10", body.Data.End)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err, "run should return nil after cancel")
	case <-time.After(5 * time.Second):
		require.Fail(t, "run did not return after cancel")
	}
}

func TestRun_MissingDataset(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "missing.csv"))

	err := run(context.Background(), cfg, testLogger)
	require.Error(t, err)
	assert.ErrorContains(t, err, "load dataset")
}

func TestRun_BadTraceExporter(t *testing.T) {
	cfg := testConfig(t, "unused.csv")
	cfg.Tracing.Exporter = "zipkin"

	assert.Error(t, run(context.Background(), cfg, testLogger), "unsupported exporter")
}
