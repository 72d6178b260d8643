// Package background owns the key/value store: it wipes it when a new
// version is installed, records every extraction and runs the janitor that
// evicts stale ones.
package background

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dtnitsch/llm-web-summarizer/models"
	"github.com/dtnitsch/llm-web-summarizer/pkg/db"
	"github.com/dtnitsch/llm-web-summarizer/pkg/scheduler"
)

// KeyInstalledVersion records which build last initialized the store.
const KeyInstalledVersion = "installedVersion"

type Service struct {
	store   *db.DB
	janitor *scheduler.Janitor
	clock   scheduler.Clock
	logger  *slog.Logger
}

func New(store *db.DB, clock scheduler.Clock, cfg models.EvictionConfig, logger *slog.Logger) *Service {
	if clock == nil {
		clock = scheduler.RealClock
	}
	return &Service{
		store: store,
		janitor: scheduler.New(store, logger,
			scheduler.WithClock(clock),
			scheduler.WithInterval(cfg.Interval),
			scheduler.WithMaxAge(cfg.MaxAge),
		),
		clock:  clock,
		logger: logger,
	}
}

// Install clears the store the first time version runs against it.
// It reports whether the store was cleared.
func (s *Service) Install(ctx context.Context, version string) (bool, error) {
	installed, _, err := s.store.Get(ctx, KeyInstalledVersion)
	if err != nil {
		return false, err
	}
	if installed == version {
		return false, nil
	}

	s.logger.Info("Summarizer installed", "version", version, "previous", installed)
	if err := s.store.Clear(ctx); err != nil {
		return false, err
	}
	if err := s.store.Put(ctx, KeyInstalledVersion, version); err != nil {
		return false, err
	}
	return true, nil
}

// HandleEvent stores extracted content. It is meant to be subscribed to the
// bridge.
func (s *Service) HandleEvent(ctx context.Context, ev models.Event) {
	if ev.Type != models.EventContentExtracted {
		return
	}
	if err := s.store.SaveExtraction(ctx, ev.Content, s.clock.Now()); err != nil {
		s.logger.Error("Failed to store extracted content", "url", ev.Content.SourceURL, "error", err)
		return
	}
	s.logger.Debug("Stored extracted content", "url", ev.Content.SourceURL)
}

// Start sweeps once, then keeps sweeping on the janitor's interval until
// Stop or ctx is done.
func (s *Service) Start(ctx context.Context) error {
	if _, err := s.janitor.Sweep(ctx); err != nil {
		s.logger.Warn("Initial sweep failed", "error", err)
	}
	if err := s.janitor.Start(ctx); err != nil {
		return fmt.Errorf("failed to start janitor: %w", err)
	}
	return nil
}

func (s *Service) Stop() {
	s.janitor.Stop()
}
