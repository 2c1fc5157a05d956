package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"cmsadmin/pkg/api"
	"cmsadmin/pkg/auth"
	"cmsadmin/pkg/config"
	"cmsadmin/pkg/controller"
	"cmsadmin/pkg/handlers"
	"cmsadmin/pkg/render"
)

// sessionCleanupInterval is how often idle page state is swept
const sessionCleanupInterval = 5 * time.Minute

// App holds the wired admin panel
type App struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	config   *config.Config
	logger   *zap.Logger
	client   *api.Client
	auth     *auth.Manager
	registry *controller.Registry
	renderer *render.Renderer
	handlers *handlers.Handlers
}

// NewApp builds every component from cfg
func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	renderer, err := render.NewRenderer(cfg.TemplateDir, logger)
	if err != nil {
		return nil, err
	}

	client := newAPIClient(cfg, logger)
	authManager := auth.NewManager(cfg.SessionKeys(), cfg.SecureCookies, logger)
	registry := controller.NewRegistry(cfg.PageSize, cfg.AlertTTL())

	return &App{
		config:   cfg,
		logger:   logger,
		client:   client,
		auth:     authManager,
		registry: registry,
		renderer: renderer,
		handlers: handlers.New(authManager, auth.NewClient(client, cfg.LoginMode), client, registry, renderer, logger),
	}, nil
}

func newAPIClient(cfg *config.Config, logger *zap.Logger) *api.Client {
	return api.NewWithTimeout(cfg.APIURL, cfg.RequestTimeout(), logger.Named("api"))
}

// startup starts the background work: template watching and the idle
// session sweep
func (a *App) startup(ctx context.Context) error {
	a.ctx, a.cancel = context.WithCancel(ctx)
	a.done = make(chan struct{})

	if err := a.renderer.Watch(); err != nil {
		a.logger.Warn("template hot reload unavailable", zap.Error(err))
	} else if a.config.TemplateDir != "" {
		a.logger.Info("watching templates", zap.String("dir", a.config.TemplateDir))
	}

	go a.startSessionCleanup()
	return nil
}

// shutdown stops the background work
func (a *App) shutdown() {
	if a.cancel == nil {
		return
	}
	a.cancel()
	<-a.done
	if err := a.renderer.Close(); err != nil {
		a.logger.Warn("failed to stop template watcher", zap.Error(err))
	}
}

func (a *App) startSessionCleanup() {
	defer close(a.done)
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := a.registry.Sweep(); n > 0 {
				a.logger.Debug("evicted idle sessions", zap.Int("count", n))
			}
		case <-a.ctx.Done():
			return
		}
	}
}

// Handler returns the admin panel router
func (a *App) Handler() http.Handler {
	return a.handlers.Routes()
}
