package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"

	"ratebank/internal/api"
	"ratebank/internal/api/middleware"
	"ratebank/internal/cache"
)

func (app *App) initHTTP(svc api.RateService) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogging(app.logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/rates", api.HandleListRates(svc))
	r.Get("/rates/{from}/{to}", api.HandleGetRate(svc))
	r.Post("/rates/refresh", api.HandleRefreshRates(svc))
	r.Get("/healthz", api.HandleHealthz())

	var pingers []cache.Pinger
	if p, ok := app.store.(cache.Pinger); ok {
		pingers = append(pingers, p)
	}
	r.Get("/readyz", api.HandleReadyz(pingers...))

	if app.cfg.Server.ServeSwagger {
		r.Get("/swagger/*", api.SwaggerUIHandler())
		r.Get("/openapi.json", api.OpenAPISpecHandler())
	}

	if app.cfg.Server.ServeAsynqmon && app.asynqServer != nil {
		mon := asynqmon.New(asynqmon.Options{
			RootPath:     "/monitoring",
			RedisConnOpt: asynq.RedisClientOpt{Addr: app.cfg.Redis.AsynqAddr},
		})
		r.Handle(mon.RootPath()+"/*", mon)
	}

	app.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
