package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/voltwatch/voltwatch/internal/alerts"
	"github.com/voltwatch/voltwatch/internal/analytics"
	"github.com/voltwatch/voltwatch/internal/api"
	"github.com/voltwatch/voltwatch/internal/config"
	"github.com/voltwatch/voltwatch/internal/health"
	"github.com/voltwatch/voltwatch/internal/ingest"
	"github.com/voltwatch/voltwatch/internal/metrics"
	"github.com/voltwatch/voltwatch/internal/model"
	"github.com/voltwatch/voltwatch/internal/monitor"
	"github.com/voltwatch/voltwatch/internal/store"
	"github.com/voltwatch/voltwatch/internal/window"
	"github.com/voltwatch/voltwatch/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	writeSampleModel := flag.String("write-sample-model", "", "write a baseline scoring model to this path and exit")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if *writeSampleModel != "" {
		if err := model.WriteSample(*writeSampleModel); err != nil {
			slog.Error("failed to write sample model", "err", err)
			os.Exit(1)
		}
		slog.Info("sample model written", "path", *writeSampleModel)
		return
	}

	slog.Info("voltwatch-server starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"database", cfg.Server.Database,
		"window_capacity", cfg.Server.WindowCapacity,
		"mqtt_enabled", cfg.Server.MQTT.Enabled,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := store.OpenSQLite(cfg.Server.Database)
	if err != nil {
		slog.Error("failed to open store", "err", err)
		os.Exit(1)
	}
	defer st.Close()

	// A missing model is not fatal: ingestion and analytics keep working,
	// health predictions fail with ModelUnavailable until one is provided.
	var scorer health.Model
	if m, err := model.Load(cfg.Server.ModelPath); err != nil {
		slog.Warn("scoring model not loaded — health predictions unavailable",
			"path", cfg.Server.ModelPath, "err", err)
	} else {
		scorer = m
		slog.Info("scoring model loaded", "path", cfg.Server.ModelPath)
	}

	win := window.New(cfg.Server.WindowCapacity)
	evaluator := alerts.New(alerts.Thresholds{
		LowVoltage:      cfg.Server.Thresholds.LowVoltage,
		HighTemperature: cfg.Server.Thresholds.HighTemperature,
		LowSoC:          cfg.Server.Thresholds.LowSoC,
	})
	stats := metrics.New()

	mon := monitor.New(monitor.Deps{
		Windows:   win,
		Evaluator: evaluator,
		Health:    health.New(win, scorer),
		Analytics: analytics.New(st),
		Store:     st,
		Registry:  st,
		Stats:     stats,
	})

	// Live threshold reload: editing the config file updates the evaluator
	// without a restart.
	go func() {
		err := config.Watch(ctx, *configPath, func(c *config.Config) {
			evaluator.SetThresholds(alerts.Thresholds{
				LowVoltage:      c.Server.Thresholds.LowVoltage,
				HighTemperature: c.Server.Thresholds.HighTemperature,
				LowSoC:          c.Server.Thresholds.LowSoC,
			})
			slog.Info("alert thresholds updated",
				"low_voltage", c.Server.Thresholds.LowVoltage,
				"high_temperature", c.Server.Thresholds.HighTemperature,
				"low_soc", c.Server.Thresholds.LowSoC,
			)
		})
		if err != nil {
			slog.Error("config watch failed", "err", err)
		}
	}()

	if cfg.Server.MQTT.Enabled {
		consumer, err := ingest.NewConsumer(mon, ingest.Options{
			Broker:   cfg.Server.MQTT.Broker,
			ClientID: cfg.Server.MQTT.ClientID,
			Username: cfg.Server.MQTT.Username(),
			Password: cfg.Server.MQTT.Password(),
			Topic:    cfg.Server.MQTT.Topic,
		})
		if err != nil {
			slog.Error("failed to start MQTT ingestion", "err", err)
			os.Exit(1)
		}
		defer consumer.Close()
	}

	// WebSocket hub — pushes the fleet overview to dashboard clients.
	hub := ws.New(win, evaluator, cfg.Server.BroadcastInterval)
	go hub.Run(ctx)

	httpMux := http.NewServeMux()
	httpMux.Handle("/ws/stream", hub)
	httpMux.Handle("/", api.New(mon, evaluator, win, stats.Handler()))

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("voltwatch-server shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}
