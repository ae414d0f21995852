package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jakco/support-router/internal/audit"
	"github.com/jakco/support-router/internal/cache"
	"github.com/jakco/support-router/internal/config"
	"github.com/jakco/support-router/internal/connectors/imap"
	"github.com/jakco/support-router/internal/content"
	"github.com/jakco/support-router/internal/engine"
	"github.com/jakco/support-router/internal/httpapi"
	"github.com/jakco/support-router/internal/session"
	"github.com/jakco/support-router/internal/sweeper"
	"github.com/jakco/support-router/internal/watcher"
)

const Version = "0.1.0"

type Runtime struct {
	cfg        config.Config
	logger     *slog.Logger
	blocks     *content.Store
	sessions   *session.Memory
	decisions  *cache.Decisions
	engine     *engine.Engine
	httpServer *http.Server
	watcher    *watcher.Service
	sweeper    *sweeper.Service
	inbox      *imap.Connector
}

func New(cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.BlocksDB), 0o755); err != nil {
		return nil, fmt.Errorf("create blocks db directory: %w", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	blocks, err := content.New(cfg.BlocksDB)
	if err != nil {
		return nil, err
	}
	if err := blocks.AutoMigrate(context.Background()); err != nil {
		blocks.Close()
		return nil, err
	}
	loaded, err := content.LoadDir(context.Background(), blocks, cfg.BlocksDir)
	if err != nil {
		blocks.Close()
		return nil, fmt.Errorf("load blocks: %w", err)
	}
	logger.Info("blocks loaded", "count", loaded, "dir", cfg.BlocksDir)

	sessions := session.New(session.Options{
		Capacity:    cfg.SessionCapacity,
		TurnLimit:   cfg.SessionTurnLimit,
		HistorySize: cfg.BlockHistorySize,
		TTL:         time.Duration(cfg.SessionTTLSec) * time.Second,
	})
	decisions := cache.New(cfg.DecisionCacheSize, time.Duration(cfg.DecisionCacheTTLSec)*time.Second)

	routingEngine := engine.New(engine.Options{
		Thresholds: engine.Thresholds{
			DirectEscalationDays:  cfg.DirectEscalationDays,
			TypeBEscalationMonths: cfg.TypeBEscalationMonths,
			TypeAReviewGateDays:   cfg.TypeAReviewGateDays,
		},
		Sessions:          sessions,
		Cache:             decisions,
		Content:           blocks,
		Audit:             audit.NewSink(cfg.DataDir, logger.With("component", "audit")),
		Logger:            logger.With("component", "engine"),
		CacheKeyPrefixLen: cfg.CacheKeyPrefixLen,
	})

	blocksWatcher, err := watcher.New(cfg.BlocksDir, logger.With("component", "watcher"), func(ctx context.Context, path string) {
		count, reloadErr := content.LoadDir(ctx, blocks, cfg.BlocksDir)
		if reloadErr != nil {
			logger.Error("blocks reload failed", "error", reloadErr, "trigger", path)
			return
		}
		logger.Info("blocks reloaded", "count", count, "trigger", path)
	})
	if err != nil {
		blocks.Close()
		return nil, err
	}

	handler := httpapi.NewRouter(httpapi.Dependencies{
		Config:   cfg,
		Engine:   routingEngine,
		Sessions: sessions,
		Content:  blocks,
		Logger:   logger.With("component", "httpapi"),
		Version:  Version,
	})

	return &Runtime{
		cfg:       cfg,
		logger:    logger,
		blocks:    blocks,
		sessions:  sessions,
		decisions: decisions,
		engine:    routingEngine,
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		watcher: blocksWatcher,
		sweeper: sweeper.New(cfg.SweepCron, sessions, decisions, logger.With("component", "sweeper")),
		inbox: imap.New(
			cfg.IMAPHost, cfg.IMAPPort, cfg.IMAPUsername, cfg.IMAPPassword,
			cfg.IMAPMailbox, cfg.IMAPPollSeconds, cfg.IMAPTLSSkipVerify,
			routingEngine, logger.With("component", "imap"),
		),
	}, nil
}

// Engine exposes the routing engine for the chat and mcp commands, which
// run it without the HTTP surface.
func (r *Runtime) Engine() *engine.Engine {
	return r.engine
}

func (r *Runtime) Close() error {
	if r.blocks == nil {
		return nil
	}
	return r.blocks.Close()
}
