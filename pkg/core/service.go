package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Dependencies wires the ports a Service works through.
// Configs and Notifier are optional.
type Dependencies struct {
	NoteTypes NoteTypeStore
	Media     MediaStore
	Versions  VersionStore
	Configs   ConfigStore
	Notifier  Notifier
	Logger    *slog.Logger

	// Version is the running release.
	Version string
	// Asset is the shipped script file.
	Asset Asset
}

// Service handles the session-start pass and the maintenance operations
// around it. Every call completes synchronously before returning.
type Service struct {
	deps   Dependencies
	logger *slog.Logger

	mu   sync.RWMutex
	last *SessionReport
}

// NewService creates a new Service.
func NewService(deps Dependencies) *Service {
	return &Service{deps: deps, logger: orDiscard(deps.Logger)}
}

// OnSessionStart runs the whole pass: the version gate, config propagation and
// the collection scan. The scan runs even when the deploy fails, but an
// unreachable version slot aborts the pass. Every failure is surfaced once
// through the Notifier and nothing is retried until the next session.
func (s *Service) OnSessionStart(ctx context.Context) (SessionReport, error) {
	start := time.Now()
	report := SessionReport{SessionID: uuid.NewString(), CurrentVersion: s.deps.Version}
	logger := s.logger.With("session_id", report.SessionID)

	var errs []error

	gate := &Gate{
		Current:  s.deps.Version,
		Versions: s.deps.Versions,
		Deployer: NewDeployer(s.deps.Media, logger),
		Asset:    s.deps.Asset,
		Logger:   logger,
	}
	res, err := gate.CheckAndMaybeDeploy(ctx)
	report.PreviousVersion = res.Previous
	report.Deployed = res.Deployed
	if err != nil {
		errs = append(errs, fmt.Errorf("version gate: %w", err))
	}

	if !errors.Is(err, ErrStoreUnavailable) {
		if s.deps.Configs != nil {
			if err := s.propagate(ctx, logger); err != nil {
				errs = append(errs, fmt.Errorf("config: %w", err))
			} else {
				report.ConfigPropagated = true
			}
		}

		scan, err := NewScanner(logger).Run(ctx, s.deps.NoteTypes)
		report.Scan = scan
		if err != nil {
			errs = append(errs, fmt.Errorf("scan: %w", err))
		}
	}

	report.Duration = time.Since(start)
	s.record(report)

	if err := errors.Join(errs...); err != nil {
		logger.Error("session pass failed", "error", err)
		s.notify(err)
		return report, err
	}

	logger.Info("session pass complete",
		"deployed", report.Deployed,
		"mutated", len(report.Scan.Mutated),
		"duration", report.Duration,
	)
	return report, nil
}

// Uninstall strips the marker from every template, removes the asset and the
// config snapshot from the media store and clears the version slot, so a later
// session starts from a fresh install.
func (s *Service) Uninstall(ctx context.Context) (SessionReport, error) {
	start := time.Now()
	report := SessionReport{SessionID: uuid.NewString(), CurrentVersion: s.deps.Version}
	logger := s.logger.With("session_id", report.SessionID)

	scan, err := NewScanner(logger).Purge(ctx, s.deps.NoteTypes)
	report.Scan = scan
	if err != nil {
		s.notify(err)
		return report, fmt.Errorf("purge: %w", err)
	}

	for _, name := range []string{s.deps.Asset.Name, SnapshotName} {
		exists, err := s.deps.Media.Has(ctx, name)
		if err != nil {
			err = fmt.Errorf("%w: lookup %s: %w", ErrStoreUnavailable, name, err)
			s.notify(err)
			return report, err
		}
		if !exists {
			continue
		}
		if err := s.deps.Media.Remove(ctx, name); err != nil {
			err = fmt.Errorf("%w: remove %s: %w", ErrStoreUnavailable, name, err)
			s.notify(err)
			return report, err
		}
		logger.Info("media entry removed", "name", name)
	}

	if err := s.deps.Versions.Clear(ctx); err != nil {
		err = fmt.Errorf("%w: clear version: %w", ErrStoreUnavailable, err)
		s.notify(err)
		return report, err
	}

	report.Duration = time.Since(start)
	s.record(report)
	logger.Info("uninstall complete", "mutated", len(report.Scan.Mutated))
	return report, nil
}

// Inspect reports what a session pass would do to each template.
func (s *Service) Inspect(ctx context.Context) ([]TemplateStatus, error) {
	noteTypes, err := s.deps.NoteTypes.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list note types: %w", ErrStoreUnavailable, err)
	}
	return NewScanner(s.logger).Inspect(noteTypes), nil
}

// Config returns the stored grading options.
func (s *Service) Config(ctx context.Context) (Config, error) {
	if s.deps.Configs == nil {
		return DefaultConfig(), nil
	}
	cfg, err := s.deps.Configs.Load(ctx)
	if err != nil {
		return Config{}, fmt.Errorf("%w: load config: %w", ErrStoreUnavailable, err)
	}
	return cfg, nil
}

// SaveConfig persists the grading options and republishes the snapshot.
func (s *Service) SaveConfig(ctx context.Context, cfg Config) error {
	if s.deps.Configs == nil {
		return errors.New("no config store configured")
	}
	if err := s.deps.Configs.Save(ctx, cfg); err != nil {
		return fmt.Errorf("%w: save config: %w", ErrStoreUnavailable, err)
	}
	return s.propagator(s.logger).Propagate(ctx, cfg)
}

// PropagateConfig republishes the stored grading options.
func (s *Service) PropagateConfig(ctx context.Context) error {
	if s.deps.Configs == nil {
		return errors.New("no config store configured")
	}
	return s.propagate(ctx, s.logger)
}

func (s *Service) propagate(ctx context.Context, logger *slog.Logger) error {
	cfg, err := s.deps.Configs.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: load config: %w", ErrStoreUnavailable, err)
	}
	return s.propagator(logger).Propagate(ctx, cfg)
}

func (s *Service) propagator(logger *slog.Logger) *ConfigPropagator {
	return &ConfigPropagator{
		Configs:  s.deps.Configs,
		Deployer: NewDeployer(s.deps.Media, logger),
		Media:    s.deps.Media,
		Logger:   logger,
	}
}

func (s *Service) notify(err error) {
	if s.deps.Notifier == nil {
		return
	}
	s.deps.Notifier.Notify(fmt.Sprintf("Smarter type field could not finish: %v", err))
}

func (s *Service) record(report SessionReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &report
}
