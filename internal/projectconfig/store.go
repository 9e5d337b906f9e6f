package projectconfig

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bilgisen/zenstudio/internal/events"
	"github.com/bilgisen/zenstudio/internal/logger"
	"github.com/bilgisen/zenstudio/internal/metrics"
	"github.com/bilgisen/zenstudio/internal/models"
	"github.com/bilgisen/zenstudio/internal/storage"
)

const (
	configDir         = "config"
	configFile        = "config.json"
	projectsDir       = "projects"
	defaultProjectDir = "default"
)

// Info is the resolved installation layout together with its config.
type Info struct {
	AppRoot            string               `json:"appRoot"`
	ConfigPath         string               `json:"configPath"`
	DefaultProjectPath string               `json:"defaultProjectPath"`
	Config             models.ProjectConfig `json:"config"`
	Outcome            models.LoadOutcome   `json:"-"`
}

// Store manages the single installation config under appRoot.
type Store struct {
	fs      storage.FS
	appRoot string
	bus     *events.Bus
	log     zerolog.Logger
	now     func() time.Time
}

func NewStore(fsys storage.FS, appRoot string, bus *events.Bus) *Store {
	return &Store{
		fs:      fsys,
		appRoot: appRoot,
		bus:     bus,
		log:     logger.Component("projectconfig"),
		now:     time.Now,
	}
}

// ProjectDataDir returns the per-project data directory below dataRoot.
func ProjectDataDir(dataRoot, projectPath string) string {
	return storage.Layout{DataRoot: dataRoot}.ProjectDir(projectPath)
}

// Ensure creates the installation directories, loads or creates the config,
// resets a last project path that no longer exists to the default project
// and persists the result. Calling it repeatedly is safe.
func (s *Store) Ensure(ctx context.Context) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	info, err := s.ensure()
	metrics.Observe("config", "ensure", err)
	return info, err
}

func (s *Store) ensure() (Info, error) {
	info := Info{
		AppRoot:            s.appRoot,
		ConfigPath:         filepath.Join(s.appRoot, configDir, configFile),
		DefaultProjectPath: filepath.Join(s.appRoot, projectsDir, defaultProjectDir),
	}

	dirs := []string{
		s.appRoot,
		filepath.Join(s.appRoot, configDir),
		filepath.Join(s.appRoot, projectsDir),
		info.DefaultProjectPath,
	}
	for _, dir := range dirs {
		if err := s.fs.MkdirAll(dir); err != nil {
			return Info{}, fmt.Errorf("%w: failed to create %s: %w", models.ErrIO, dir, err)
		}
	}

	now := s.now()
	cfg, outcome := s.read(info.ConfigPath)
	if outcome != models.OutcomeLoaded {
		cfg = models.ProjectConfig{
			Version:         models.ConfigVersion,
			LastProjectPath: info.DefaultProjectPath,
			CreatedAt:       now,
		}
	}
	if cfg.Version == "" {
		cfg.Version = models.ConfigVersion
	}
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}
	cfg.UpdatedAt = now
	cfg.RecentProjectPaths = uniquePaths(cfg.RecentProjectPaths)

	if cfg.LastProjectPath == "" {
		cfg.LastProjectPath = info.DefaultProjectPath
	} else if ok, err := s.fs.Exists(cfg.LastProjectPath); err != nil || !ok {
		s.log.Info().Str("path", cfg.LastProjectPath).Msg("last project missing, switching to default project")
		cfg.LastProjectPath = info.DefaultProjectPath
	}

	if err := s.write(info.ConfigPath, cfg); err != nil {
		return Info{}, err
	}
	info.Config = cfg
	info.Outcome = outcome
	return info, nil
}

func (s *Store) read(path string) (models.ProjectConfig, models.LoadOutcome) {
	var cfg models.ProjectConfig
	err := storage.ReadJSON(s.fs, path, &cfg)
	switch {
	case err == nil:
		return cfg, models.OutcomeLoaded
	case errors.Is(err, fs.ErrNotExist):
		return models.ProjectConfig{}, models.OutcomeEmpty
	}
	metrics.Recovered("config")
	s.log.Warn().Err(err).Str("path", path).Msg("config unreadable, writing a new one")
	return models.ProjectConfig{}, models.OutcomeRecovered
}

func (s *Store) write(path string, cfg models.ProjectConfig) error {
	if err := storage.WriteJSON(s.fs, path, cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// UpdateLastProjectPath records projectPath as the last opened project and
// moves it to the front of the recent projects. A blank path is ignored.
func (s *Store) UpdateLastProjectPath(ctx context.Context, projectPath string) (Info, error) {
	info, err := s.Ensure(ctx)
	if err != nil {
		return Info{}, err
	}
	projectPath = strings.TrimSpace(projectPath)
	if projectPath == "" {
		return info, nil
	}

	info.Config.LastProjectPath = projectPath
	info.Config.RecentProjectPaths = uniquePaths(append([]string{projectPath}, info.Config.RecentProjectPaths...))
	info.Config.UpdatedAt = s.now()
	if err := s.write(info.ConfigPath, info.Config); err != nil {
		return Info{}, err
	}
	s.bus.Publish(events.Event{Kind: events.ConfigUpdated, ProjectPath: projectPath})
	return info, nil
}

// RemoveProjectPath drops projectPath from the recent projects. When it was
// the last project, the next recent one takes its place, or the default
// project when none is left.
func (s *Store) RemoveProjectPath(ctx context.Context, projectPath string) (Info, error) {
	info, err := s.Ensure(ctx)
	if err != nil {
		return Info{}, err
	}
	projectPath = strings.TrimSpace(projectPath)
	if projectPath == "" {
		return info, nil
	}

	recent := make([]string, 0, len(info.Config.RecentProjectPaths))
	for _, p := range info.Config.RecentProjectPaths {
		if p != projectPath {
			recent = append(recent, p)
		}
	}
	info.Config.RecentProjectPaths = recent
	if info.Config.LastProjectPath == projectPath {
		info.Config.LastProjectPath = info.DefaultProjectPath
		if len(recent) > 0 {
			info.Config.LastProjectPath = recent[0]
		}
	}
	info.Config.UpdatedAt = s.now()
	if err := s.write(info.ConfigPath, info.Config); err != nil {
		return Info{}, err
	}
	s.bus.Publish(events.Event{Kind: events.ConfigUpdated, ProjectPath: projectPath})
	return info, nil
}

// uniquePaths trims paths and drops blanks and repeats, keeping at most
// RecentProjectsLimit in their original order.
func uniquePaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
		if len(out) == models.RecentProjectsLimit {
			break
		}
	}
	return out
}

// MarkBootstrapNoticeSeen sets the bootstrap notice flag once.
func (s *Store) MarkBootstrapNoticeSeen(ctx context.Context) (Info, error) {
	info, err := s.Ensure(ctx)
	if err != nil {
		return Info{}, err
	}
	if info.Config.HasSeenBootstrapNotice {
		return info, nil
	}

	info.Config.HasSeenBootstrapNotice = true
	info.Config.UpdatedAt = s.now()
	if err := s.write(info.ConfigPath, info.Config); err != nil {
		return Info{}, err
	}
	s.bus.Publish(events.Event{Kind: events.ConfigUpdated})
	return info, nil
}
