package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type fakeSessionClearer struct {
	cleared int
}

func (f *fakeSessionClearer) ClearSession() { f.cleared++ }

func TestSettingsDefaults(t *testing.T) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	svc := NewSettingsService(newFakeSettingRepo(), &fakeSessionClearer{}, level)

	settings, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, settings.SolverEnabled)
	assert.Empty(t, settings.SolverURL)
	assert.Equal(t, "info", settings.LogLevel)
}

func TestUpdateSolverClearsSession(t *testing.T) {
	clearer := &fakeSessionClearer{}
	repo := newFakeSettingRepo()
	svc := NewSettingsService(repo, clearer, zap.NewAtomicLevelAt(zapcore.InfoLevel))

	settings, err := svc.UpdateSolver(context.Background(), true, "http://solver:8191")
	require.NoError(t, err)
	assert.True(t, settings.SolverEnabled)
	assert.Equal(t, "http://solver:8191", settings.SolverURL)
	assert.Equal(t, 1, clearer.cleared)

	cfg, err := svc.SolverConfig(context.Background())
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "http://solver:8191", cfg.URL)
}

func TestUpdateSolverRejectsBadURL(t *testing.T) {
	svc := NewSettingsService(newFakeSettingRepo(), &fakeSessionClearer{}, zap.NewAtomicLevelAt(zapcore.InfoLevel))

	_, err := svc.UpdateSolver(context.Background(), true, "solver:8191")
	assert.ErrorIs(t, err, ErrInvalidSolverURL)

	_, err = svc.UpdateSolver(context.Background(), true, "ftp://solver:8191")
	assert.ErrorIs(t, err, ErrInvalidSolverURL)

	// Enabling without a URL makes no sense.
	_, err = svc.UpdateSolver(context.Background(), true, "")
	assert.ErrorIs(t, err, ErrInvalidSolverURL)
}

func TestUpdateSolverDisable(t *testing.T) {
	clearer := &fakeSessionClearer{}
	svc := NewSettingsService(newFakeSettingRepo(), clearer, zap.NewAtomicLevelAt(zapcore.InfoLevel))

	_, err := svc.UpdateSolver(context.Background(), true, "http://solver:8191")
	require.NoError(t, err)

	settings, err := svc.UpdateSolver(context.Background(), false, "")
	require.NoError(t, err)
	assert.False(t, settings.SolverEnabled)
	assert.Equal(t, 2, clearer.cleared)

	cfg, err := svc.SolverConfig(context.Background())
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
}

func TestUpdateLogLevel(t *testing.T) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	svc := NewSettingsService(newFakeSettingRepo(), &fakeSessionClearer{}, level)

	settings, err := svc.UpdateLogLevel(context.Background(), "debug")
	require.NoError(t, err)
	assert.Equal(t, "debug", settings.LogLevel)
	assert.Equal(t, zapcore.DebugLevel, level.Level())

	_, err = svc.UpdateLogLevel(context.Background(), "verbose")
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
	assert.Equal(t, zapcore.DebugLevel, level.Level())
}

func TestSolverSourceReadsRepo(t *testing.T) {
	repo := newFakeSettingRepo()
	require.NoError(t, repo.Set(context.Background(), SettingSolverEnabled, "true"))
	require.NoError(t, repo.Set(context.Background(), SettingSolverURL, "http://solver:8191"))

	cfg, err := NewSolverSource(repo).SolverConfig(context.Background())
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "http://solver:8191", cfg.URL)
}
