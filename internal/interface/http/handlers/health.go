// Package handlers contains HTTP handler interfaces and implementations.
package handlers

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH CHECKS
// Probes distinguish critical dependencies (postgres) from degradable
// ones (redis): losing the cache makes the service degraded but still
// ready, losing the database makes it unready.
// ══════════════════════════════════════════════════════════════════════════════

// HealthChecker defines the interface for health checking.
type HealthChecker interface {
	// Check runs all registered probes and returns the aggregate.
	Check(ctx context.Context) HealthStatus

	// AddCheck registers a named probe.
	AddCheck(name string, check HealthCheckFunc)

	// RemoveCheck unregisters a probe.
	RemoveCheck(name string)
}

// HealthCheckFunc probes a single dependency. A nil return means the
// dependency answered.
type HealthCheckFunc func(ctx context.Context) error

// HealthStatus is the aggregate the health endpoints serialize.
type HealthStatus struct {
	// Healthy is true only when every probe passed.
	Healthy bool `json:"healthy"`

	// Ready is true when every critical probe passed. The service can
	// be ready-but-degraded when a non-critical dependency is down.
	Ready bool `json:"ready"`

	// Message summarizes the failures, if any.
	Message string `json:"message,omitempty"`

	// Checks holds the per-probe outcomes keyed by probe name.
	Checks map[string]CheckResult `json:"checks,omitempty"`

	Uptime    string    `json:"uptime,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
}

// CheckResult is the outcome of one probe.
type CheckResult struct {
	Healthy bool `json:"healthy"`

	// Critical marks probes whose failure takes readiness down.
	Critical bool `json:"critical"`

	// Error carries the probe failure, empty on success.
	Error string `json:"error,omitempty"`

	// Latency is how long the dependency took to answer.
	Latency string `json:"latency,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// COMPOSITE HEALTH CHECKER
// ══════════════════════════════════════════════════════════════════════════════

// probe is a registered check plus its criticality.
type probe struct {
	name     string
	fn       HealthCheckFunc
	critical bool
}

// CompositeHealthChecker runs registered probes in parallel with a
// per-probe timeout.
type CompositeHealthChecker struct {
	mu        sync.RWMutex
	probes    []probe
	startTime time.Time
	version   string
	timeout   time.Duration
}

// NewCompositeHealthChecker creates an empty checker.
func NewCompositeHealthChecker(version string) *CompositeHealthChecker {
	return &CompositeHealthChecker{
		startTime: time.Now(),
		version:   version,
		timeout:   5 * time.Second,
	}
}

// SetTimeout overrides the per-probe timeout.
func (c *CompositeHealthChecker) SetTimeout(timeout time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = timeout
}

// AddCheck registers a non-critical probe. Its failure marks the
// service degraded but keeps it ready.
func (c *CompositeHealthChecker) AddCheck(name string, check HealthCheckFunc) {
	c.add(name, check, false)
}

// AddCriticalCheck registers a probe whose failure takes readiness down.
func (c *CompositeHealthChecker) AddCriticalCheck(name string, check HealthCheckFunc) {
	c.add(name, check, true)
}

func (c *CompositeHealthChecker) add(name string, check HealthCheckFunc, critical bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.probes {
		if c.probes[i].name == name {
			c.probes[i].fn = check
			c.probes[i].critical = critical
			return
		}
	}
	c.probes = append(c.probes, probe{name: name, fn: check, critical: critical})
}

// RemoveCheck unregisters a probe.
func (c *CompositeHealthChecker) RemoveCheck(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.probes {
		if c.probes[i].name == name {
			c.probes = append(c.probes[:i], c.probes[i+1:]...)
			return
		}
	}
}

// Check runs every probe in parallel and aggregates the outcomes.
func (c *CompositeHealthChecker) Check(ctx context.Context) HealthStatus {
	c.mu.RLock()
	probes := make([]probe, len(c.probes))
	copy(probes, c.probes)
	timeout := c.timeout
	c.mu.RUnlock()

	status := HealthStatus{
		Healthy:   true,
		Ready:     true,
		Checks:    make(map[string]CheckResult, len(probes)),
		Uptime:    time.Since(c.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
		Version:   c.version,
	}

	if len(probes) == 0 {
		status.Message = "no probes registered"
		return status
	}

	results := make([]CheckResult, len(probes))

	var wg sync.WaitGroup
	for i := range probes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			probeCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			err := probes[i].fn(probeCtx)

			results[i] = CheckResult{
				Healthy:  err == nil,
				Critical: probes[i].critical,
				Latency:  time.Since(start).Round(time.Millisecond).String(),
			}
			if err != nil {
				results[i].Error = err.Error()
			}
		}(i)
	}
	wg.Wait()

	var failed []string
	for i, p := range probes {
		status.Checks[p.name] = results[i]
		if results[i].Healthy {
			continue
		}
		status.Healthy = false
		if p.critical {
			status.Ready = false
		}
		failed = append(failed, p.name)
	}

	switch {
	case status.Healthy:
		status.Message = "all probes passed"
	case status.Ready:
		sort.Strings(failed)
		status.Message = fmt.Sprintf("degraded: %v down", failed)
	default:
		sort.Strings(failed)
		status.Message = fmt.Sprintf("not ready: %v down", failed)
	}

	return status
}

// ══════════════════════════════════════════════════════════════════════════════
// PREDEFINED PROBES
// ══════════════════════════════════════════════════════════════════════════════

// Pinger is anything that can answer a connectivity probe. Both the
// postgres connection and the redis cache satisfy it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewDatabaseCheck probes the postgres pool.
func NewDatabaseCheck(db Pinger) HealthCheckFunc {
	return func(ctx context.Context) error {
		return db.Ping(ctx)
	}
}

// NewCacheCheck probes the redis cache.
func NewCacheCheck(cache Pinger) HealthCheckFunc {
	return func(ctx context.Context) error {
		return cache.Ping(ctx)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// NOOP IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// NoopHealthChecker reports healthy unconditionally. Used in tests and
// as the default when no dependencies are wired.
type NoopHealthChecker struct {
	startTime time.Time
}

// NewNoopHealthChecker creates a new noop health checker.
func NewNoopHealthChecker() *NoopHealthChecker {
	return &NoopHealthChecker{startTime: time.Now()}
}

// Check always returns a healthy status.
func (n *NoopHealthChecker) Check(ctx context.Context) HealthStatus {
	return HealthStatus{
		Healthy:   true,
		Ready:     true,
		Message:   "ok",
		Uptime:    time.Since(n.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
	}
}

// AddCheck is a no-op.
func (n *NoopHealthChecker) AddCheck(name string, check HealthCheckFunc) {}

// RemoveCheck is a no-op.
func (n *NoopHealthChecker) RemoveCheck(name string) {}
