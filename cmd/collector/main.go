package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raccog/HydroManager/internal/collector"
	"github.com/raccog/HydroManager/internal/config"
	db "github.com/raccog/HydroManager/internal/db"
	"github.com/raccog/HydroManager/internal/device"
	"github.com/raccog/HydroManager/internal/logging"
	"github.com/raccog/HydroManager/internal/migrate"
	"github.com/raccog/HydroManager/internal/modules/hydro/repository"
	"github.com/raccog/HydroManager/internal/mqtt"
)

const (
	appName = "hydro-collector"
	// Default version is "dev" if not set with -ldflags "-X main.version=..."
	version = "dev"
)

func usage() {
	fmt.Fprintf(os.Stderr, "USAGE: %s [-schedule SPEC] DEVICE_ADDR\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	schedule := flag.String("schedule", "", "cron spec for unattended collection (e.g. \"*/5 * * * *\"); empty runs one cycle and exits")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}
	deviceAddr := flag.Arg(0)

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg, version, appName)
	slog.SetDefault(logger)

	slog.Info("starting",
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
		"device", deviceAddr,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, deviceAddr, *schedule); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}

	slog.Info("shutting down")
}

func run(ctx context.Context, cfg config.Config, deviceAddr string, schedule string) error {
	dbConn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := db.Close(dbConn)
		if closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	if err := migrate.Run(dbConn); err != nil {
		return err
	}

	client := device.NewClient(deviceAddr, cfg.DevicePath, cfg.DeviceTimeout)
	repo := repository.NewRepository(dbConn)

	var publisher collector.Publisher
	if cfg.MQTTBroker != "" {
		pub := mqtt.NewPublisher(cfg, slog.Default())
		// Short timeout so an unreachable broker doesn't stall collection.
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err := pub.Connect(connectCtx)
		connectCancel()
		if err != nil {
			slog.Warn("mqtt connection failed (continuing without mqtt)", "error", err)
		} else {
			publisher = pub
		}
		defer pub.Disconnect()
	}

	svc := collector.NewService(client, repo, publisher, cfg.DeviceFetchRetries)

	if schedule != "" {
		return svc.RunSchedule(ctx, schedule)
	}
	return svc.CollectOnce(ctx)
}
