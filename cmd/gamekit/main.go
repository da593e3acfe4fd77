package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/gamekit/internal/config"
	"github.com/udisondev/gamekit/internal/data"
	"github.com/udisondev/gamekit/internal/db"
	"github.com/udisondev/gamekit/internal/game/ability"
	"github.com/udisondev/gamekit/internal/game/cooldown"
	"github.com/udisondev/gamekit/internal/game/curve"
	"github.com/udisondev/gamekit/internal/game/fog"
	"github.com/udisondev/gamekit/internal/game/targeting"
	"github.com/udisondev/gamekit/internal/telemetry"
	"github.com/udisondev/gamekit/internal/world"
)

const ConfigPath = "config/gamekit.yaml"

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("GAMEKIT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg.ApplyEnv()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("gamekit starting", "config", cfgPath, "log_level", cfg.LogLevel, "tick_rate", cfg.TickRate)

	if cfg.Telemetry.Endpoint != "" {
		shutdown, err := telemetry.Setup(ctx, cfg.Telemetry.Endpoint)
		if err != nil {
			return fmt.Errorf("setting up telemetry: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Warn("telemetry shutdown failed", "error", err)
			}
		}()
		slog.Info("telemetry enabled", "endpoint", cfg.Telemetry.Endpoint)
	}

	tables, err := loadTables(cfg.DataPath)
	if err != nil {
		return err
	}

	var persistence *db.UnitPersistenceService
	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		applied, err := db.RunMigrations(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied", "count", applied)
		persistence = db.NewUnitPersistenceService(database.Pool())
	}

	store, closeStore, err := cooldownStore(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer closeStore()
	ledger := cooldown.NewLedger(store, nil)

	var drawer targeting.DebugDrawer
	if cfg.DebugTargeting {
		drawer = targeting.NewLogDrawer(nil)
	}
	w := world.New(drawer)

	volume, err := fog.New(cfg.Fog)
	if err != nil {
		return fmt.Errorf("creating fog of war: %w", err)
	}

	deps := abilityDeps(tables, w, ledger)
	sess, err := newSession(ctx, w, volume, tables, deps, persistence, ledger)
	if err != nil {
		return err
	}

	hupCh := make(chan os.Signal, 1)
	signal.Notify(hupCh, syscall.SIGHUP)
	defer signal.Stop(hupCh)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := w.Run(gctx, cfg.TickRate); err != nil {
			return fmt.Errorf("world loop: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := volume.Run(gctx); err != nil {
			return fmt.Errorf("fog of war: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return ledger.Run(gctx)
	})

	g.Go(func() error {
		sess.drive(gctx)
		return nil
	})

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hupCh:
				w.Post(func() {
					if err := tables.Reload(cfg.DataPath); err != nil {
						slog.Error("reloading tables", "path", cfg.DataPath, "error", err)
						return
					}
					slog.Info("tables reloaded", "path", cfg.DataPath)
				})
			}
		}
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	// the world loop has stopped, the session is ours again
	sess.close(context.Background())
	return nil
}

// abilityDeps wires the collaborators shared by every ability of the world,
// including the one curve table all cooldown and cost rows are generated into.
func abilityDeps(tables *data.Tables, w *world.World, ledger *cooldown.Ledger) ability.Deps {
	return ability.Deps{
		Abilities:   tables.Abilities,
		Curves:      curve.NewTable(),
		Projectiles: w,
		Ledger:      ledger,
		Tracer:      telemetry.Tracer("gamekit/ability"),
	}
}

func loadTables(path string) (*data.Tables, error) {
	if path == "" {
		tables, err := data.LoadDefaultTables()
		if err != nil {
			return nil, fmt.Errorf("loading default tables: %w", err)
		}
		return tables, nil
	}
	tables, err := data.LoadTables(path)
	if err != nil {
		return nil, fmt.Errorf("loading tables: %w", err)
	}
	return tables, nil
}

// cooldownStore connects to Redis when configured, memory otherwise.
func cooldownStore(ctx context.Context, cfg config.RedisConfig) (cooldown.Store, func(), error) {
	if cfg.URL == "" {
		slog.Info("cooldown ledger in memory")
		return cooldown.NewMemoryStore(), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connecting to redis: %w", err)
	}
	slog.Info("cooldown ledger in redis", "addr", opts.Addr)
	return cooldown.NewRedisStore(client), func() { _ = client.Close() }, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
