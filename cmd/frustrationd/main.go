package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"frustration-engine/pkg/classifier"
	"frustration-engine/pkg/config"
	"frustration-engine/pkg/httpsrv"
	"frustration-engine/pkg/messaging"
	"frustration-engine/pkg/metrics"
	"frustration-engine/pkg/prosody"
	"frustration-engine/pkg/textpattern"
	"frustration-engine/pkg/tracker"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load(logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	logger.SetLevel(cfg.Logging.LogLevel())
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if cfg.HTTP.MetricsEnabled {
		metrics.Init(logger)
	}

	// Text side: pattern matcher (with optional overlay) feeding the
	// per-session tracker
	var matcher *textpattern.Matcher
	if cfg.Classifier.PatternTablePath != "" {
		matcher, err = textpattern.NewMatcherWithOverlay(cfg.Classifier.PatternTablePath)
		if err != nil {
			logger.WithError(err).Fatal("Failed to load pattern table overlay")
		}
		logger.WithField("path", cfg.Classifier.PatternTablePath).Info("Pattern table overlay loaded")
	} else {
		matcher = textpattern.NewMatcher()
	}

	trk := tracker.NewTracker(logger, matcher)
	prosodyAnalyzer := prosody.NewAnalyzer(prosody.DefaultConfig())

	clf := classifier.New(logger, classifier.Config{
		Weights: classifier.Weights{
			Text:    cfg.Classifier.TextWeight,
			Timing:  cfg.Classifier.TimingWeight,
			Prosody: cfg.Classifier.ProsodyWeight,
		},
		InterventionThreshold: cfg.Classifier.InterventionThreshold,
	}, trk, prosodyAnalyzer)

	// Realtime side: streamed PCM feeds the monitor, whose probes and
	// analyses fan out to websocket meters
	source := httpsrv.NewStreamSource(cfg.Monitor.SampleRate, cfg.Monitor.RetainSeconds)
	monitor := prosody.NewMonitor(logger, prosodyAnalyzer, source, prosody.MonitorConfig{
		SampleRate:       cfg.Monitor.SampleRate,
		ProbeInterval:    cfg.Monitor.ProbeInterval,
		AnalysisInterval: cfg.Monitor.AnalysisWindow,
		RetainSeconds:    cfg.Monitor.RetainSeconds,
		TrimSeconds:      cfg.Monitor.TrimSeconds,
		SmoothingAlpha:   cfg.Monitor.SmoothingFactor,
	})

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	hub := httpsrv.NewMeterHub(logger)
	go hub.Run(rootCtx)
	monitor.OnProbe(hub.BroadcastProbe)
	monitor.OnResult(hub.BroadcastProsody)

	var publisher *messaging.Publisher
	if cfg.AMQP.URL != "" {
		publisher = messaging.NewPublisher(logger, messaging.AMQPConfig{
			URL:        cfg.AMQP.URL,
			QueueName:  cfg.AMQP.QueueName,
			RoutingKey: cfg.AMQP.RoutingKey,
			Durable:    cfg.AMQP.Durable,
		})
		if err := publisher.Connect(); err != nil {
			// Best effort: classification keeps working without the broker
			logger.WithError(err).Warn("AMQP connect failed, events will not be published")
		}
	}

	ingest := httpsrv.NewAudioIngestHandler(logger, source)

	var eventPublisher httpsrv.EventPublisher
	if publisher != nil {
		eventPublisher = publisher
	}
	server := httpsrv.NewServer(logger, httpsrv.ServerConfig{
		ListenAddr:     cfg.HTTP.ListenAddr,
		MetricsEnabled: cfg.HTTP.MetricsEnabled,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
	}, clf, hub, ingest, eventPublisher)

	if err := monitor.Start(); err != nil {
		logger.WithError(err).Fatal("Failed to start prosody monitor")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.WithField("signal", sig.String()).Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			logger.WithError(err).Error("HTTP server failed")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP server shutdown failed")
	}
	if err := monitor.Stop(); err != nil {
		logger.WithError(err).Warn("Monitor stop failed")
	}
	if publisher != nil {
		publisher.Close()
	}
	rootCancel()

	logger.Info("Shutdown complete")
}
