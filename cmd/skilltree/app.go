package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/skilltree"
	"github.com/aretw0/skilltree/internal/config"
	"github.com/aretw0/skilltree/internal/logging"
	"github.com/aretw0/skilltree/internal/metrics"
	"github.com/aretw0/skilltree/pkg/domain"
	"github.com/aretw0/skilltree/pkg/dsl"
	"github.com/aretw0/skilltree/pkg/ports"
	"github.com/aretw0/skilltree/pkg/session"
)

// app holds what every command needs: config, logger, store and trees.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	backend *config.Backend
	trees   *session.Manager
	metrics *metrics.Collector
}

// loadConfig resolves the config file and environment, then applies the flags
// that were set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	overrides := map[string]*string{
		"store":     &cfg.Store,
		"dir":       &cfg.Dir,
		"tree":      &cfg.Tree,
		"seed":      &cfg.Seed,
		"log-level": &cfg.LogLevel,
	}
	for name, field := range overrides {
		if cmd.Flags().Changed(name) {
			*field, _ = cmd.Flags().GetString(name)
		}
	}
	return cfg, cfg.Validate()
}

// newApp opens the configured store. withMetrics records tree activity in a
// Prometheus collector.
func newApp(cmd *cobra.Command, withMetrics bool) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logging.New(level)}
	if withMetrics {
		a.metrics = metrics.NewCollector()
	}

	var opts []skilltree.Option
	opts = append(opts,
		skilltree.WithLogger(a.logger),
		skilltree.WithDebounce(cfg.Debounce),
		skilltree.WithBudget(cfg.Budget),
	)
	if cfg.IDs == config.IDsUUID {
		opts = append(opts, skilltree.WithUUIDs())
	}
	if cfg.Seed != "" {
		g, err := dsl.LoadFile(cfg.Seed)
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", cfg.Seed, err)
		}
		opts = append(opts, skilltree.WithSeed(g))
	}
	if a.metrics != nil {
		opts = append(opts, skilltree.WithLifecycleHooks(a.metrics.Hooks(domain.LifecycleHooks{})))
	}

	a.backend, err = config.OpenStore(cmd.Context(), cfg, a.logger)
	if err != nil {
		return nil, err
	}

	managerOpts := []session.Option{session.WithLogger(a.logger)}
	if a.backend.Locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(a.backend.Locker))
	}
	a.trees = session.NewManager(a.backend.Store, func(ctx context.Context, store ports.KVStore) (session.Tree, error) {
		return skilltree.Open(ctx, store, opts...)
	}, managerOpts...)

	return a, nil
}

// withTree runs fn on the configured tree.
func (a *app) withTree(ctx context.Context, fn func(context.Context, session.Tree) error) error {
	return a.trees.WithTree(ctx, a.cfg.Tree, fn)
}

// close saves every open tree and releases the store.
func (a *app) close(ctx context.Context) error {
	return errors.Join(a.trees.Close(ctx), a.backend.Close())
}

// run opens the app, runs fn and closes the app, keeping the first error.
func run(cmd *cobra.Command, fn func(context.Context, *app) error) (err error) {
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(context.Background()); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(cmd.Context(), a)
}
