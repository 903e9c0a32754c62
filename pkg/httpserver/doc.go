// Package httpserver runs HTTP listeners with context-driven graceful
// shutdown, configurable timeouts, and health-check handlers.
//
// Each Server owns one listener. The API process runs three of them (REST
// API, client-facing WebSocket port, internal producer port) under a single
// errgroup; cancelling the shared context stops all of them. Request
// contexts derive from the Run context, so hijacked WebSocket connections
// observe shutdown too.
//
// # Usage
//
//	srv := httpserver.NewFromConfig(cfg.API,
//		httpserver.WithName("api"),
//		httpserver.WithLogger(log),
//	)
//	g.Go(func() error { return srv.Run(ctx, router) })
//
// # Health checks
//
// LivenessHandler always answers ALIVE. ReadinessHandler runs named checks
// such as redis.Healthcheck or mongo.Healthcheck and answers 503 NOT_READY
// when any fails.
//
// # Errors
//
// Run wraps listen and serve errors with ErrStart, while Shutdown wraps
// underlying shutdown errors with ErrShutdown. Use errors.Is to distinguish
// them.
package httpserver
