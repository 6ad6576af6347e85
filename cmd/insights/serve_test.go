package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"go-insights-engine/internal/config"
	"go-insights-engine/internal/logger"
	"go-insights-engine/internal/model"
	"go-insights-engine/internal/store"
)

func testApp(t *testing.T, seedFile string) (*app, *observer.ObservedLogs) {
	t.Helper()
	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "insights.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	core, logs := observer.New(zapcore.InfoLevel)
	cfg := &config.Config{Data: config.DataConfig{SeedFile: seedFile, ImportOnStart: true}}
	return &app{cfg: cfg, log: logger.FromZap(zap.New(core)), db: db}, logs
}

func TestImportSeed_FailureKeepsExistingRecords(t *testing.T) {
	ctx := context.Background()
	a, logs := testApp(t, filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, a.db.ReplaceRecords(ctx, []model.Record{{Sector: model.Str("Energy")}}))

	a.importSeed(ctx, nil)

	failures := logs.FilterMessage("Seed import failed, serving existing records").All()
	require.Len(t, failures, 1)
	assert.Equal(t, zapcore.ErrorLevel, failures[0].Level)

	n, err := a.db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestImportSeed_ReplacesRecords(t *testing.T) {
	ctx := context.Background()
	seed := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(seed, []byte(`[{"sector":"Energy","intensity":6},{"sector":"Retail"}]`), 0o644))
	a, logs := testApp(t, seed)

	a.importSeed(ctx, nil)

	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	n, err := a.db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
