package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-multiview/components/multiview"
	"github.com/goliatone/go-multiview/components/multiview/commands"
	"github.com/goliatone/go-multiview/components/multiview/gorouter"
	"github.com/goliatone/go-multiview/components/multiview/httpapi"
	"github.com/goliatone/go-multiview/components/multiview/queries"
)

const shutdownTimeout = 5 * time.Second

type serveCmd struct {
	Addr      string `help:"Listen address; overrides server.addr."`
	Transport string `help:"fiber or http; overrides server.transport."`
}

func (cmd *serveCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.Resolve()
	if err != nil {
		return err
	}
	override(&cfg.Server.Addr, cmd.Addr)
	override(&cfg.Server.Transport, cmd.Transport)
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return err
	}

	rt, err := newRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	renderer, err := multiview.NewTemplateRenderer()
	if err != nil {
		return err
	}
	controller := multiview.NewController(multiview.ControllerOptions{
		Service:  rt.service,
		Renderer: renderer,
	})
	executor := httpapi.NewCommandExecutor(rt.service, rt.telemetry)

	group, gctx := errgroup.WithContext(ctx)
	if fs, ok := rt.storage.(*multiview.FileStorage); ok {
		watchLayouts(gctx, group, rt, fs)
	}

	switch cfg.Server.Transport {
	case TransportHTTP:
		serveHTTP(gctx, group, rt, controller, executor)
	default:
		if err := serveFiber(gctx, group, rt, controller, executor); err != nil {
			return err
		}
	}
	return group.Wait()
}

// watchLayouts reloads the collection when another process rewrites the file.
func watchLayouts(ctx context.Context, group *errgroup.Group, rt *runtime, fs *multiview.FileStorage) {
	reload := commands.NewReloadLayoutsCommand(rt.service, rt.telemetry)
	source := fs.Path(multiview.LayoutsKey)
	group.Go(func() error {
		return fs.Watch(ctx, multiview.LayoutsKey, func() {
			if err := reload.Execute(ctx, commands.ReloadLayoutsInput{Source: source}); err != nil {
				rt.logger.Warn("reload layouts", zap.String("source", source), zap.Error(err))
			}
		})
	})
}

func serveFiber(ctx context.Context, group *errgroup.Group, rt *runtime, controller *multiview.Controller, executor httpapi.Executor) error {
	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: controller,
		API:        executor,
		Events:     rt.hub,
		BasePath:   rt.cfg.Server.BasePath,
	}); err != nil {
		return err
	}

	group.Go(func() error {
		rt.logger.Info("multiview server listening",
			zap.String("addr", rt.cfg.Server.Addr),
			zap.String("transport", TransportFiber),
			zap.String("page", strings.TrimRight(rt.cfg.Server.BasePath, "/")+"/multiview"),
		)
		return server.Serve(rt.cfg.Server.Addr)
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return nil
}

func serveHTTP(ctx context.Context, group *errgroup.Group, rt *runtime, controller *multiview.Controller, executor httpapi.Executor) {
	base := strings.TrimRight(rt.cfg.Server.BasePath, "/") + "/multiview"
	handlers := &httpapi.Handlers{
		API:     executor,
		Layouts: queries.NewLayoutsQuery(rt.service),
		View:    queries.NewViewQuery(rt.service),
	}
	mux := http.NewServeMux()
	handlers.Mount(mux, base, rt.hub)
	mux.HandleFunc("GET "+base, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := controller.RenderTemplate(r.Context(), w); err != nil {
			rt.logger.Error("render multiview page", zap.Error(err))
			http.Error(w, "render failed", http.StatusInternalServerError)
		}
	})

	srv := &http.Server{
		Addr:              rt.cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	group.Go(func() error {
		rt.logger.Info("multiview server listening",
			zap.String("addr", srv.Addr),
			zap.String("transport", TransportHTTP),
			zap.String("page", base),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
