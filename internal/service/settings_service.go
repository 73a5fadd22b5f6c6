package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gptteam/seathub/internal/chatgpt"
	"gptteam/seathub/internal/repository"
)

const (
	SettingSolverEnabled = "flaresolverr_enabled"
	SettingSolverURL     = "flaresolverr_url"
	SettingLogLevel      = "log_level"
)

// Settings is the operator-visible view of the stored configuration.
type Settings struct {
	SolverEnabled bool   `json:"flaresolverr_enabled"`
	SolverURL     string `json:"flaresolverr_url"`
	LogLevel      string `json:"log_level"`
}

// SessionClearer is the slice of the upstream client the settings service
// needs: dropping the cached session so a changed solver config takes
// effect on the next request.
type SessionClearer interface {
	ClearSession()
}

type SettingsService interface {
	Get(ctx context.Context) (*Settings, error)
	UpdateSolver(ctx context.Context, enabled bool, solverURL string) (*Settings, error)
	UpdateLogLevel(ctx context.Context, level string) (*Settings, error)

	// SolverConfig makes the service usable as the upstream client's
	// solver configuration source.
	SolverConfig(ctx context.Context) (chatgpt.SolverConfig, error)
}

type settingsService struct {
	settingRepo repository.SettingRepository
	sessions    SessionClearer
	logLevel    zap.AtomicLevel
}

func NewSettingsService(settingRepo repository.SettingRepository, sessions SessionClearer, logLevel zap.AtomicLevel) SettingsService {
	return &settingsService{
		settingRepo: settingRepo,
		sessions:    sessions,
		logLevel:    logLevel,
	}
}

func (s *settingsService) Get(ctx context.Context) (*Settings, error) {
	enabled, err := s.settingRepo.Get(ctx, SettingSolverEnabled)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", SettingSolverEnabled, err)
	}
	solverURL, err := s.settingRepo.Get(ctx, SettingSolverURL)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", SettingSolverURL, err)
	}
	level, err := s.settingRepo.Get(ctx, SettingLogLevel)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", SettingLogLevel, err)
	}
	if level == "" {
		level = s.logLevel.Level().String()
	}
	return &Settings{
		SolverEnabled: enabled == "true",
		SolverURL:     solverURL,
		LogLevel:      level,
	}, nil
}

func (s *settingsService) UpdateSolver(ctx context.Context, enabled bool, solverURL string) (*Settings, error) {
	solverURL = strings.TrimSpace(solverURL)
	if solverURL != "" {
		u, err := url.Parse(solverURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, ErrInvalidSolverURL
		}
	}
	if enabled && solverURL == "" {
		return nil, ErrInvalidSolverURL
	}

	if err := s.settingRepo.Set(ctx, SettingSolverEnabled, strconv.FormatBool(enabled)); err != nil {
		return nil, fmt.Errorf("set %s: %w", SettingSolverEnabled, err)
	}
	if err := s.settingRepo.Set(ctx, SettingSolverURL, solverURL); err != nil {
		return nil, fmt.Errorf("set %s: %w", SettingSolverURL, err)
	}

	// The cached session carries cookies from the previous solver; a
	// config change invalidates them.
	if s.sessions != nil {
		s.sessions.ClearSession()
	}
	return s.Get(ctx)
}

func (s *settingsService) UpdateLogLevel(ctx context.Context, level string) (*Settings, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLogLevel, level)
	}
	if err := s.settingRepo.Set(ctx, SettingLogLevel, parsed.String()); err != nil {
		return nil, fmt.Errorf("set %s: %w", SettingLogLevel, err)
	}
	s.logLevel.SetLevel(parsed)
	return s.Get(ctx)
}

func (s *settingsService) SolverConfig(ctx context.Context) (chatgpt.SolverConfig, error) {
	return solverConfigFromRepo(ctx, s.settingRepo)
}

// solverSource exposes only the solver configuration; it lets the upstream
// client be constructed before the full settings service exists.
type solverSource struct {
	settingRepo repository.SettingRepository
}

func NewSolverSource(settingRepo repository.SettingRepository) chatgpt.SolverConfigSource {
	return &solverSource{settingRepo: settingRepo}
}

func (s *solverSource) SolverConfig(ctx context.Context) (chatgpt.SolverConfig, error) {
	return solverConfigFromRepo(ctx, s.settingRepo)
}

func solverConfigFromRepo(ctx context.Context, repo repository.SettingRepository) (chatgpt.SolverConfig, error) {
	enabled, err := repo.Get(ctx, SettingSolverEnabled)
	if err != nil {
		return chatgpt.SolverConfig{}, err
	}
	solverURL, err := repo.Get(ctx, SettingSolverURL)
	if err != nil {
		return chatgpt.SolverConfig{}, err
	}
	return chatgpt.SolverConfig{
		Enabled: enabled == "true" && solverURL != "",
		URL:     solverURL,
	}, nil
}

var _ SettingsService = (*settingsService)(nil)
var _ chatgpt.SolverConfigSource = (*settingsService)(nil)
