package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"mms/internal/domain"
	"mms/internal/remote"
	"mms/internal/storage/config"
	"mms/internal/storage/db"
)

// ServiceConfig holds configuration for the core service.
type ServiceConfig struct {
	ConfigDir  string       // Directory for profiles, overrides and settings
	DataDir    string       // Directory for the sync history database
	HTTPClient *http.Client // Optional; defaults to http.DefaultClient
	Logger     *slog.Logger // Optional; nil disables logging
	Workers    int          // Optional per-file download concurrency
}

// Service is the main entry point for sync operations: it owns profile
// management, session activation and transfer execution.
type Service struct {
	appConfig  *config.AppConfig
	db         *db.DB
	httpClient *http.Client
	logger     *slog.Logger

	configDir string
	workers   int

	running atomic.Bool
}

// NewService loads settings and opens the history database.
func NewService(cfg ServiceConfig) (*Service, error) {
	appConfig, err := config.Load(cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	database, err := db.New(filepath.Join(cfg.DataDir, "mms.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Service{
		appConfig:  appConfig,
		db:         database,
		httpClient: cfg.HTTPClient,
		logger:     logger,
		configDir:  cfg.ConfigDir,
		workers:    cfg.Workers,
	}, nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB exposes the sync history store.
func (s *Service) DB() *db.DB {
	return s.db
}

// ListProfiles returns all stored profile names.
func (s *Service) ListProfiles() ([]string, error) {
	return config.ListProfiles(s.configDir)
}

// Profile loads one profile by name.
func (s *Service) Profile(name string) (*domain.Profile, error) {
	return config.LoadProfile(s.configDir, name)
}

// SaveProfile persists a profile.
func (s *Service) SaveProfile(profile *domain.Profile) error {
	return config.SaveProfile(s.configDir, profile)
}

// DeleteProfile removes a profile and its overrides.
func (s *Service) DeleteProfile(name string) error {
	return config.DeleteProfile(s.configDir, name)
}

// LastProfile returns the name of the most recently activated profile,
// or empty on first run.
func (s *Service) LastProfile() string {
	return s.appConfig.LastProfile
}

// Branches lists the branches the profile's server offers. Used by the
// CLI to recover when the configured branch has disappeared.
func (s *Service) Branches(ctx context.Context, profile *domain.Profile) ([]string, error) {
	return remote.NewClient(s.httpClient, profile.Address).Branches(ctx)
}

// Activate builds a fresh session for the named profile: fetch the
// branch manifest, scan the mods directory, load the overrides, and
// remember the profile as last used. A stale session from a previous
// profile must be discarded by the caller; nothing is shared.
func (s *Service) Activate(ctx context.Context, name string) (*Session, error) {
	profile, err := config.LoadProfile(s.configDir, name)
	if err != nil {
		return nil, err
	}
	if err := ValidateModsPath(profile.ModsPath); err != nil {
		return nil, err
	}

	client := remote.NewClient(s.httpClient, profile.Address)
	manifest, err := client.Manifest(ctx, profile.Branch)
	if err != nil {
		return nil, fmt.Errorf("fetching manifest for branch %s: %w", profile.Branch, err)
	}

	inventory, err := ScanInventory(profile.ModsPath)
	if err != nil {
		return nil, err
	}

	overrides, err := config.LoadOverrides(s.configDir, profile.Name, s.logger)
	if err != nil {
		return nil, fmt.Errorf("loading overrides: %w", err)
	}

	s.appConfig.LastProfile = name
	if err := s.appConfig.Save(s.configDir); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	return &Session{
		Profile:   profile,
		Client:    client,
		Manifest:  manifest,
		Inventory: inventory,
		Overrides: overrides,
	}, nil
}

// Execute runs a confirmed plan for the session, then persists the
// session's overrides and a history row. The override write happens
// strictly after the orchestrator has quiesced, so transfer workers can
// never race the keep-file. The mods directory is exclusively owned for
// the duration of the run: a second Execute while one is in flight
// returns domain.ErrSyncInProgress.
func (s *Service) Execute(ctx context.Context, sess *Session, plan *Plan, onEvent EventFunc) (*Result, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, domain.ErrSyncInProgress
	}
	defer s.running.Store(false)

	opts := []OrchestratorOption{}
	if s.workers > 0 {
		opts = append(opts, WithWorkers(s.workers))
	}
	orch := NewOrchestrator(sess.Client, s.logger, opts...)

	started := time.Now()
	result, execErr := orch.Execute(ctx, plan, onEvent)
	if result == nil {
		return nil, execErr
	}
	finished := time.Now()

	if err := config.SaveOverrides(s.configDir, sess.Profile.Name, sess.Overrides); err != nil {
		return result, fmt.Errorf("saving overrides: %w", err)
	}

	run := db.SyncRun{
		ProfileName:     sess.Profile.Name,
		Branch:          plan.Branch,
		Strategy:        plan.Strategy.String(),
		DownloadsOK:     result.DownloadsSucceeded,
		DownloadsFailed: result.DownloadsFailed,
		DeletesOK:       result.DeletesSucceeded,
		DeletesFailed:   result.DeletesFailed,
		Cancelled:       result.Cancelled,
		StartedAt:       started,
		FinishedAt:      finished,
	}
	failures := make([]db.UnitFailure, len(result.Failures))
	for i, f := range result.Failures {
		failures[i] = db.UnitFailure{Unit: f.Unit, Kind: f.Kind.String(), Reason: f.Reason}
	}
	if _, err := s.db.RecordRun(run, failures); err != nil {
		s.logger.Warn("recording sync history failed", "error", err)
	}

	return result, execErr
}
