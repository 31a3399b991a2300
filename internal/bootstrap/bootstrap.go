package bootstrap

import (
	"context"
	"fmt"

	hclog "github.com/hashicorp/go-hclog"

	patterninadapter "hapkit/internal/modules/pattern/adapter/in"
	patternoutadapter "hapkit/internal/modules/pattern/adapter/out"
	patterndomain "hapkit/internal/modules/pattern/domain"
	patternservice "hapkit/internal/modules/pattern/service"
	patternusecase "hapkit/internal/modules/pattern/usecase"
	sessioninadapter "hapkit/internal/modules/session/adapter/in"
	sessionoutadapter "hapkit/internal/modules/session/adapter/out"
	sessionservice "hapkit/internal/modules/session/service"
	sessionusecase "hapkit/internal/modules/session/usecase"
	"hapkit/internal/platform/clock"
	"hapkit/internal/platform/config"
	"hapkit/internal/platform/id"
	"hapkit/internal/platform/logging"
)

type App struct {
	PatternCLI patterninadapter.CLIHandler
	SessionCLI sessioninadapter.CLIHandler

	cfg    config.Config
	logger hclog.Logger
}

func New(cfg config.Config) (*App, error) {
	clk := clock.SystemClock{}
	ids := id.RandomHex{}
	logger := logging.New(cfg.LogLevel)
	decodeOpts := patterndomain.DecodeOptions{Strict: cfg.StrictPatterns}

	patternStore := patternoutadapter.NewFilePatternStore(cfg.LibraryDir, decodeOpts)
	patternIndex, err := patternoutadapter.NewSQLitePatternIndex(cfg.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("new pattern index: %w", err)
	}
	patternSvc := patternservice.NewPatternService(clk, ids, patternStore, patternIndex, decodeOpts)
	patternUC := patternusecase.NewInteractor(patternSvc)

	sessionSvc := sessionservice.NewSessionService(
		clk,
		sessionoutadapter.NewFileRegistryStore(cfg.RegistryPath),
		sessionoutadapter.NewPluginDriverOpener(logger),
		logger,
		cfg.DriverName,
		decodeOpts,
	)
	sessionUC := sessionusecase.NewInteractor(sessionSvc)

	return &App{
		PatternCLI: patterninadapter.NewCLIHandler(patternUC),
		SessionCLI: sessioninadapter.NewCLIHandler(sessionUC),
		cfg:        cfg,
		logger:     logger,
	}, nil
}

func (a *App) Logger() hclog.Logger {
	return a.logger
}

// NewLibraryWatcher wires a filesystem watcher that keeps the pattern
// index in sync with the library directory.
func (a *App) NewLibraryWatcher() *patternoutadapter.LibraryWatcher {
	reindex := func(ctx context.Context) (int, error) {
		out, err := a.PatternCLI.Reindex(ctx)
		if err != nil {
			return 0, err
		}
		return out.Indexed, nil
	}
	return patternoutadapter.NewLibraryWatcher(a.cfg.LibraryDir, reindex, a.logger)
}

// Close tears down the driver connection if one was opened.
func (a *App) Close() error {
	return a.SessionCLI.Close()
}
