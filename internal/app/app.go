package app

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/todoboard/internal/actions"
	"github.com/five82/todoboard/internal/api"
	"github.com/five82/todoboard/internal/config"
	"github.com/five82/todoboard/internal/logging"
	"github.com/five82/todoboard/internal/prefs"
	"github.com/five82/todoboard/internal/query"
	"github.com/five82/todoboard/internal/state"
	"github.com/five82/todoboard/internal/todo"
	"github.com/five82/todoboard/internal/ui"
)

// Options configure the todoboard application.
type Options struct {
	ConfigPath string
	PrefsPath  string  // empty uses ~/.config/todoboard/prefs.toml
	OpenTodo   todo.ID // open this list instead of the dashboard
	Filter     string  // initial item filter; unknown values mean all
}

// Run boots the TUI and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = closeLog() }()

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs := prefs.Load(prefsPath)

	client, err := api.NewClient(api.Options{
		BaseURL:  cfg.APIURL,
		Resource: cfg.Resource,
		Timeout:  cfg.RequestTimeout,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	store := state.NewStore()
	store.SetFilter(todo.ParseFilter(opts.Filter))
	cache := query.New()

	orch, err := actions.New(actions.Options{
		Store:  store,
		Cache:  cache,
		API:    client,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("init actions: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := StartRevalidator(ctx, cache.Invalidated(), orch, logger)

	logger.Info("starting", "api", cfg.APIURL, "resource", cfg.Resource, "open", opts.OpenTodo)
	err = ui.Run(ui.Options{
		Context:   ctx,
		Actions:   orch,
		Logger:    logger,
		Prefs:     userPrefs,
		PrefsPath: prefsPath,
		ThemeName: cfg.Theme,
		LogFile:   cfg.LogFile,
		OpenTodo:  opts.OpenTodo,
	})
	cancel()
	<-done

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}
	if err != nil {
		logger.Error("ui exited", "err", err)
		return err
	}
	logger.Info("stopped")
	return nil
}
