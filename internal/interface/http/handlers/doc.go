// Package handlers provides the building blocks the HTTP server wires
// together: dependency health probes and reusable middleware.
//
// # Health Probes
//
// Probes run in parallel and carry a criticality flag — a failed
// critical probe (postgres) takes readiness down, a failed non-critical
// probe (redis) only degrades the health report:
//
//	checker := handlers.NewCompositeHealthChecker("v1.0.0")
//	checker.AddCriticalCheck("database", handlers.NewDatabaseCheck(db))
//	checker.AddCheck("cache", handlers.NewCacheCheck(cache))
//
//	status := checker.Check(ctx)
//	if !status.Ready {
//	    log.Printf("refusing traffic: %s", status.Message)
//	}
//
// # Middleware
//
// Reusable middleware composes with Chain:
//
//	handler := handlers.ChainHandler(mux,
//	    handlers.SecurityHeadersMiddleware,
//	    handlers.RequestSizeLimitMiddleware(1<<20),
//	)
package handlers
