package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xkilldash9x/gamepilot/api/schemas"
	"github.com/xkilldash9x/gamepilot/internal/browser"
	"github.com/xkilldash9x/gamepilot/internal/config"
	"github.com/xkilldash9x/gamepilot/internal/game"
	"github.com/xkilldash9x/gamepilot/internal/reporting"
	"github.com/xkilldash9x/gamepilot/internal/store"
)

// tabOpener hands out a fresh page per game run.
type tabOpener interface {
	OpenTab(ctx context.Context) (game.Page, func(), error)
	Close()
}

// managerTabs adapts browser.Manager to tabOpener.
type managerTabs struct {
	*browser.Manager
}

func (m managerTabs) OpenTab(ctx context.Context) (game.Page, func(), error) {
	session, err := m.NewSession(ctx)
	if err != nil {
		return nil, nil, err
	}
	return session, session.Close, nil
}

// openBrowser launches the browser. Tests replace it to run commands against
// a mock page.
var openBrowser = func(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (tabOpener, error) {
	mgr, err := browser.NewManager(ctx, logger, cfg)
	if err != nil {
		return nil, err
	}
	return managerTabs{mgr}, nil
}

// services bundles what a game command needs: the browser and the optional
// report sinks.
type services struct {
	logger   *zap.Logger
	tabs     tabOpener
	pool     *pgxpool.Pool
	store    *store.Store
	reporter reporting.Reporter
}

// openStore connects to the run history database and makes sure its tables
// exist. The caller closes the returned pool.
func openStore(ctx context.Context, url string, logger *zap.Logger) (*pgxpool.Pool, *store.Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	s, err := store.New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pool, s, nil
}

// newServices opens the report sinks first, so a bad path or database URL
// fails before a browser is launched.
func newServices(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *services, err error) {
	svc := &services{logger: logger}
	defer func() {
		if err != nil {
			svc.Close()
		}
	}()

	if cfg.Report.Path != "" {
		if svc.reporter, err = reporting.New(cfg.Report.Path); err != nil {
			return nil, err
		}
	}
	if cfg.Database.URL != "" {
		if svc.pool, svc.store, err = openStore(ctx, cfg.Database.URL, logger); err != nil {
			return nil, err
		}
	}
	if svc.tabs, err = openBrowser(ctx, cfg.Browser, logger); err != nil {
		return nil, err
	}
	return svc, nil
}

// Close releases the browser, the report file and the database pool.
func (s *services) Close() {
	if s.tabs != nil {
		s.tabs.Close()
	}
	if s.reporter != nil {
		if err := s.reporter.Close(); err != nil {
			s.logger.Error("Failed to close report", zap.Error(err))
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
}

// recordBearing sends a report to every configured sink.
func (s *services) recordBearing(ctx context.Context, report *schemas.BearingReport) error {
	var errs []error
	if s.reporter != nil {
		errs = append(errs, s.reporter.WriteBearing(report))
	}
	if s.store != nil {
		errs = append(errs, s.store.SaveBearingReport(ctx, report))
	}
	return errors.Join(errs...)
}

func (s *services) recordCircle(ctx context.Context, report *schemas.CircleReport) error {
	var errs []error
	if s.reporter != nil {
		errs = append(errs, s.reporter.WriteCircle(report))
	}
	if s.store != nil {
		errs = append(errs, s.store.SaveCircleReport(ctx, report))
	}
	return errors.Join(errs...)
}

// settle combines a run error with a failure to record the run. Recording
// failures are logged and only surface when the run itself succeeded.
func (s *services) settle(runErr, recordErr error) error {
	if recordErr == nil {
		return runErr
	}
	s.logger.Error("Failed to record run report", zap.Error(recordErr))
	if runErr != nil {
		return runErr
	}
	return fmt.Errorf("failed to record run report: %w", recordErr)
}
