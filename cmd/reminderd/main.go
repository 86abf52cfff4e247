package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/hray3182/datekeeper/internal/config"
	"github.com/hray3182/datekeeper/internal/database"
	"github.com/hray3182/datekeeper/internal/format"
	"github.com/hray3182/datekeeper/internal/logging"
	"github.com/hray3182/datekeeper/internal/mailer"
	"github.com/hray3182/datekeeper/internal/metrics"
	"github.com/hray3182/datekeeper/internal/notify"
	"github.com/hray3182/datekeeper/internal/pipeline"
	"github.com/hray3182/datekeeper/internal/repository"
	"github.com/hray3182/datekeeper/internal/scheduler"
	"github.com/hray3182/datekeeper/internal/server"
	"github.com/hray3182/datekeeper/internal/storage/memory"
)

type store interface {
	pipeline.DueSource
	server.Directory
}

// pgStore joins the Postgres repositories into one store.
type pgStore struct {
	*repository.EventRepository
	*repository.UserRepository
}

func main() {
	once := flag.Bool("once", false, "run the reminder batch once, print the summary and exit")
	useMemory := flag.Bool("memory", false, "use a seeded in-memory store instead of Postgres")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(!*useMemory); err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger, *once, *useMemory); err != nil {
		logger.Error("reminderd exited with error", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, once, useMemory bool) error {
	src, closeStore, err := openStore(ctx, cfg, logger, useMemory)
	if err != nil {
		return err
	}
	defer closeStore()

	transport, err := newTransport(cfg, logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.MustNewMetrics(reg)

	dispatcher := notify.New(transport, format.NewRenderer(cfg.AppURL),
		notify.WithMaxAttempts(cfg.MaxAttempts),
		notify.WithLogger(logger.With("component", "dispatcher")),
		notify.WithMetrics(m),
	)
	orchestrator := pipeline.New(src, dispatcher,
		pipeline.WithConcurrency(cfg.DispatchConcurrency),
		pipeline.WithLogger(logger.With("component", "pipeline")),
		pipeline.WithMetrics(m),
	)

	if once {
		return runOnce(ctx, orchestrator)
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	sched, err := scheduler.New(orchestrator, cfg.Schedule, loc, logger)
	if err != nil {
		return err
	}

	// SIGHUP asks for an immediate run.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sched.Start(gctx)
		return nil
	})
	g.Go(func() error {
		watchHangup(gctx, hup, sched.Notify, logger)
		return nil
	})

	if cfg.CronSecret == "" {
		logger.Warn("CRON_SECRET not set, HTTP trigger disabled")
	} else {
		srv := server.New(server.Config{
			Addr:       cfg.ListenAddr,
			CronSecret: cfg.CronSecret,
			Metrics:    promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
			Debug:      logging.ParseLevel(cfg.LogLevel) == slog.LevelDebug,
		}, orchestrator, src, logger)
		g.Go(func() error { return srv.Run(gctx) })
	}

	logger.Info("reminderd started", "memory", useMemory, "transport", cfg.MailTransport)
	return g.Wait()
}

// watchHangup calls trigger for every signal on hup until ctx is done.
func watchHangup(ctx context.Context, hup <-chan os.Signal, trigger func(), logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			logger.Info("received SIGHUP, triggering reminder run")
			trigger()
		}
	}
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, useMemory bool) (store, func(), error) {
	if useMemory {
		s := memory.NewStore()
		if err := s.Seed(ctx, time.Now()); err != nil {
			return nil, nil, fmt.Errorf("seed memory store: %w", err)
		}
		logger.Info("using seeded in-memory store")
		return s, func() {}, nil
	}

	db, err := database.New(ctx, cfg.DatabaseURI, logger.With("component", "database"))
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("connected to database")
	return pgStore{
		EventRepository: repository.NewEventRepository(db),
		UserRepository:  repository.NewUserRepository(db),
	}, db.Close, nil
}

func newTransport(cfg *config.Config, logger *slog.Logger) (mailer.Transport, error) {
	switch cfg.MailTransport {
	case config.TransportLog:
		return mailer.NewLogTransport(logger.With("component", "mailer")), nil
	case config.TransportSMTP:
		return mailer.NewSMTP(mailer.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.MailFrom,
		})
	default:
		return nil, errors.New("unknown mail transport " + cfg.MailTransport)
	}
}

func runOnce(ctx context.Context, o *pipeline.Orchestrator) error {
	sum, err := o.Run(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(sum.Response())
}
