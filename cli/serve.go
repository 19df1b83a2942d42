package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/example/crm-backend/config"
	"github.com/example/crm-backend/modules/activity"
	"github.com/example/crm-backend/modules/api"
	"github.com/example/crm-backend/modules/crm"
	"github.com/example/crm-backend/modules/ratelimit"
	"github.com/example/crm-backend/modules/scheduler"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and scheduled jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg config.Config) error {
	level := mono.LogLevelInfo
	if cfg.LogLevel == "error" {
		level = mono.LogLevelError
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(level),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	var middleware []fiber.Handler
	modules := []mono.Module{
		crm.NewModule(cfg.CRM()),
		activity.NewModule(0),
		scheduler.NewModule(cfg.Scheduler()),
	}
	if rlCfg, enabled := cfg.RateLimitEnabled(); enabled {
		limiter := ratelimit.NewModule(rlCfg)
		modules = append(modules, limiter)
		middleware = append(middleware, limiter.Handler())
	}
	modules = append(modules, api.NewModule(cfg.API(), middleware...))

	for _, m := range modules {
		if err := app.Register(m); err != nil {
			return fmt.Errorf("failed to register %s module: %w", m.Name(), err)
		}
	}

	if err := app.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	printStartupInfo(cfg)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	if exitCode != 0 {
		os.Exit(exitCode)
	}
	return nil
}

func printStartupInfo(cfg config.Config) {
	log.Println("")
	log.Println("CRM backend started successfully!")
	log.Println("")
	log.Printf("Database:   %s", cfg.Database.Path)
	log.Printf("HTTP API:   http://localhost:%d/api/v1", cfg.HTTP.Port)
	if cfg.RateLimit.RedisAddr != "" {
		log.Printf("Rate limit: %d reads / %d writes per %s (redis %s)",
			cfg.RateLimit.ReadRequests, cfg.RateLimit.WriteRequests, cfg.RateLimit.Window, cfg.RateLimit.RedisAddr)
	} else {
		log.Println("Rate limit: disabled (set REDIS_ADDR to enable)")
	}
	log.Println("")
	log.Println("Scheduled jobs:")
	sched := cfg.Scheduler()
	log.Printf("  - %-16s every %s -> %s", scheduler.JobHeartbeat, sched.HeartbeatInterval, sched.HeartbeatLog)
	log.Printf("  - %-16s every %s -> %s", scheduler.JobLowStock, sched.LowStockInterval, sched.LowStockLog)
	log.Printf("  - %-16s every %s -> %s", scheduler.JobOrderReminders, sched.RemindersInterval, sched.RemindersLog)
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
