package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"customer-feedback-hub/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
)

// Status represents the health status of a component
type Status string

const (
	// StatusUp indicates a component is working correctly
	StatusUp Status = "up"
	// StatusDown indicates a component is not working
	StatusDown Status = "down"
	// StatusDegraded indicates a component is working but with reduced functionality
	StatusDegraded Status = "degraded"
)

// Component represents a system component that can be health-checked
type Component struct {
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	Description string    `json:"description,omitempty"`
	Error       string    `json:"error,omitempty"`
	LastChecked time.Time `json:"last_checked"`
}

// Check represents a health check function
type Check func(ctx context.Context) (Status, string, error)

// Checker manages health checks for the system
type Checker struct {
	checks      map[string]Check
	critical    map[string]bool
	components  map[string]*Component
	listeners   []func(healthy bool)
	checkPeriod time.Duration
	clock       clockwork.Clock
	mutex       sync.RWMutex
	log         *logger.Logger
}

// NewChecker creates a new health checker
func NewChecker(log *logger.Logger, clock clockwork.Clock, checkPeriod time.Duration) *Checker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	checker := &Checker{
		checks:      make(map[string]Check),
		critical:    make(map[string]bool),
		components:  make(map[string]*Component),
		checkPeriod: checkPeriod,
		clock:       clock,
		log:         log.WithComponent("health"),
	}

	checker.RegisterCheck("self", false, func(context.Context) (Status, string, error) {
		return StatusUp, "Health checker is running", nil
	})

	return checker
}

// RegisterCheck registers a new health check. A critical component that is
// down makes the whole system unhealthy.
func (c *Checker) RegisterCheck(name string, critical bool, check Check) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.checks[name] = check
	c.critical[name] = critical
	c.components[name] = &Component{
		Name:        name,
		Status:      StatusDown,
		Description: "Not checked yet",
	}
}

// OnChange registers fn to be called after each round of checks
func (c *Checker) OnChange(fn func(healthy bool)) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.listeners = append(c.listeners, fn)
}

// RunChecks executes all registered health checks
func (c *Checker) RunChecks(ctx context.Context) {
	c.mutex.Lock()
	for name, check := range c.checks {
		status, description, err := check(ctx)

		component := c.components[name]
		component.Status = status
		component.Description = description
		component.LastChecked = c.clock.Now()

		if err != nil {
			component.Error = err.Error()
			c.log.Error("Health check failed",
				"component", name,
				"status", string(status),
				"error", err.Error(),
			)
		} else {
			component.Error = ""
			c.log.Debug("Health check completed",
				"component", name,
				"status", string(status),
			)
		}
	}
	healthy := c.healthyLocked()
	listeners := append([]func(bool){}, c.listeners...)
	c.mutex.Unlock()

	for _, fn := range listeners {
		fn(healthy)
	}
}

// Start runs the checks immediately and then every checkPeriod until ctx is done
func (c *Checker) Start(ctx context.Context) {
	go func() {
		c.RunChecks(ctx)

		ticker := c.clock.NewTicker(c.checkPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				c.RunChecks(ctx)
			}
		}
	}()
}

// GetStatus returns the current health status
func (c *Checker) GetStatus() map[string]*Component {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	// Create a copy to avoid race conditions
	result := make(map[string]*Component, len(c.components))
	for k, v := range c.components {
		componentCopy := *v
		result[k] = &componentCopy
	}

	return result
}

// IsSystemHealthy returns true if all critical components are up
func (c *Checker) IsSystemHealthy() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.healthyLocked()
}

func (c *Checker) healthyLocked() bool {
	for name, component := range c.components {
		if component.Status == StatusDown && c.critical[name] {
			return false
		}
	}
	return true
}

// Handler runs the checks on demand and reports 503 when a critical
// component is down
func (c *Checker) Handler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		c.RunChecks(ctx.Request.Context())

		code := http.StatusOK
		status := "healthy"
		if !c.IsSystemHealthy() {
			code = http.StatusServiceUnavailable
			status = "unhealthy"
		}

		ctx.JSON(code, gin.H{
			"status":     status,
			"timestamp":  c.clock.Now().UTC(),
			"components": c.GetStatus(),
		})
	}
}

// RegisterDatabaseCheck registers a critical database health check
func (c *Checker) RegisterDatabaseCheck(ping func(ctx context.Context) error) {
	c.RegisterCheck("database", true, func(ctx context.Context) (Status, string, error) {
		if err := ping(ctx); err != nil {
			return StatusDown, "Database connection failed", err
		}
		return StatusUp, "Database connection is established", nil
	})
}

// RegisterCacheCheck registers a non-critical cache check; analytics fall
// back to the database when the cache is unreachable
func (c *Checker) RegisterCacheCheck(ping func(ctx context.Context) error) {
	c.RegisterCheck("cache", false, func(ctx context.Context) (Status, string, error) {
		if err := ping(ctx); err != nil {
			return StatusDegraded, "Cache unreachable, serving analytics from the database", err
		}
		return StatusUp, "Cache is reachable", nil
	})
}
