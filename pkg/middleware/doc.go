// Package middleware provides observability middleware for view rendering.
//
// # OpenTelemetry
//
// OpenTelemetry wraps every view render in a span named after the view,
// carrying the generation, language and outcome. The span context is passed
// to the renderer, so content API requests made while rendering inherit it.
//
//	d := view.NewDispatcher(surface,
//	    view.WithMiddleware(middleware.OpenTelemetry(
//	        middleware.WithTracerName("openheavens"),
//	    )),
//	)
//
// The tracer comes from the global provider unless WithTracerProvider is given.
//
// # Prometheus
//
// Prometheus records, per view:
//   - oh_renders_total: renders by view and status
//   - oh_render_duration_seconds: render duration histogram
//   - oh_render_errors_total: failed renders by view and error type
//
// and the package-level Record functions feed:
//   - oh_stale_renders_total: renders discarded because a newer one started
//   - oh_navigations_total: resolved navigations by view
//   - oh_active_sessions: connected browser sessions
//   - oh_websocket_errors_total: websocket failures by type
//   - oh_content_fetches_total: content API fetches by outcome
//
// Expose them with promhttp:
//
//	r.Handle("/metrics", promhttp.Handler())
package middleware
