package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/baxeinwear/storefront-backend/pkg/config"
	"github.com/baxeinwear/storefront-backend/pkg/db"
	"github.com/baxeinwear/storefront-backend/pkg/logger"
	"github.com/baxeinwear/storefront-backend/pkg/migrate"
)

type cliFlags struct {
	cmd     string
	dir     string
	name    string
	version string
}

// offline commands only touch files.
var offline = map[string]func(cliFlags) error{
	"create": func(f cliFlags) error {
		path, err := migrate.Scaffold(f.dir, f.name, time.Now())
		if err == nil {
			fmt.Println("created", path)
		}
		return err
	},
	"validate": func(f cliFlags) error {
		if err := migrate.Lint(f.dir); err != nil {
			return err
		}
		fmt.Println("migrations ok")
		return nil
	},
}

var online = map[string]func(context.Context, *migrate.Runner, cliFlags) error{
	"up":     func(ctx context.Context, r *migrate.Runner, _ cliFlags) error { return r.Exec(ctx, "up") },
	"down":   func(ctx context.Context, r *migrate.Runner, _ cliFlags) error { return r.Exec(ctx, "down") },
	"status": func(ctx context.Context, r *migrate.Runner, _ cliFlags) error { return r.Exec(ctx, "status") },
	"version": func(ctx context.Context, r *migrate.Runner, f cliFlags) error {
		if f.version == "" {
			return fmt.Errorf("-version is required")
		}
		return r.To(ctx, f.version)
	},
}

func main() {
	var f cliFlags
	flag.StringVar(&f.cmd, "cmd", "up", "up|down|status|version|create|validate")
	flag.StringVar(&f.dir, "dir", migrate.DefaultDir, "migrations directory")
	flag.StringVar(&f.name, "name", "", "migration name for -cmd=create")
	flag.StringVar(&f.version, "version", "", "target YYYYMMDDHHMMSS for -cmd=version")
	flag.Parse()

	_ = godotenv.Load()

	if run, ok := offline[f.cmd]; ok {
		exitOn(run(f))
		return
	}
	run, ok := online[f.cmd]
	if !ok {
		exitOn(fmt.Errorf("unknown -cmd %q", f.cmd))
	}

	cfg, err := config.Load()
	exitOn(err)

	logg := logger.New(logger.Options{
		ServiceName: "baxeinwear-migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"cmd": f.cmd, "dir": f.dir, "env": cfg.App.Env})

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "migrate.db_unavailable", err)
		os.Exit(1)
	}
	defer client.Close()

	sqlDB, err := client.DB().DB()
	exitOn(err)

	if err := run(ctx, migrate.FromDir(sqlDB, cfg.DB.Driver, f.dir), f); err != nil {
		logg.Error(ctx, "migrate.failed", err)
		client.Close()
		os.Exit(1)
	}
	logg.Info(ctx, "migrate.done")
}

func exitOn(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}
