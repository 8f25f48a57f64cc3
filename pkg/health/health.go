package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"pingup/backend/pkg/logger"
)

type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
	// StatusDegraded means a non-critical dependency is down
	StatusDegraded Status = "degraded"
)

// Component is the last observed state of one dependency
type Component struct {
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	Critical    bool      `json:"critical"`
	Error       string    `json:"error,omitempty"`
	LastChecked time.Time `json:"last_checked"`
}

// Report is the body served at /health
type Report struct {
	Status     Status       `json:"status"`
	Timestamp  time.Time    `json:"timestamp"`
	Components []*Component `json:"components"`
}

// CheckFunc returns nil when the dependency is usable
type CheckFunc func(ctx context.Context) error

type check struct {
	fn       CheckFunc
	critical bool
}

// Checker runs dependency checks and caches the results. Listeners are
// told about every overall status change.
type Checker struct {
	mu         sync.RWMutex
	checks     map[string]check
	components map[string]*Component
	overall    Status
	listeners  []func(Status)
	timeout    time.Duration
	log        *logger.Logger
}

func NewChecker(log *logger.Logger, timeout time.Duration) *Checker {
	if log == nil {
		log = logger.GetGlobal()
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Checker{
		checks:     make(map[string]check),
		components: make(map[string]*Component),
		overall:    StatusUp,
		timeout:    timeout,
		log:        log,
	}
}

// Register adds a named check. A failing critical check makes the whole
// system down; a failing non-critical one only degrades it.
func (c *Checker) Register(name string, critical bool, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checks[name] = check{fn: fn, critical: critical}
	c.components[name] = &Component{Name: name, Status: StatusDown, Critical: critical}
}

// OnChange registers fn to be called with the new overall status
func (c *Checker) OnChange(fn func(Status)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Run executes every check once
func (c *Checker) Run(ctx context.Context) Status {
	c.mu.RLock()
	checks := make(map[string]check, len(c.checks))
	for name, ch := range c.checks {
		checks[name] = ch
	}
	c.mu.RUnlock()

	results := make(map[string]error, len(checks))
	for name, ch := range checks {
		cctx, cancel := context.WithTimeout(ctx, c.timeout)
		results[name] = ch.fn(cctx)
		cancel()
	}

	c.mu.Lock()
	overall := StatusUp
	now := time.Now()
	for name, err := range results {
		comp := c.components[name]
		comp.LastChecked = now
		comp.Status = StatusUp
		comp.Error = ""
		if err != nil {
			comp.Status = StatusDown
			comp.Error = err.Error()
			c.log.Warn("Health check failed", "component", name, "error", err.Error())
			if comp.Critical {
				overall = StatusDown
			} else if overall == StatusUp {
				overall = StatusDegraded
			}
		}
	}
	changed := overall != c.overall
	c.overall = overall
	listeners := append([]func(Status){}, c.listeners...)
	c.mu.Unlock()

	if changed {
		c.log.Info("Health status changed", "status", string(overall))
		for _, fn := range listeners {
			fn(overall)
		}
	}
	return overall
}

// Start runs the checks immediately and then every period until ctx is done
func (c *Checker) Start(ctx context.Context, period time.Duration) {
	go func() {
		c.Run(ctx)
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Run(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (c *Checker) Report() Report {
	c.mu.RLock()
	defer c.mu.RUnlock()

	comps := make([]*Component, 0, len(c.components))
	for _, comp := range c.components {
		cp := *comp
		comps = append(comps, &cp)
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i].Name < comps[j].Name })

	return Report{Status: c.overall, Timestamp: time.Now(), Components: comps}
}

// Handler serves the current report; 503 when the system is down
func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := c.Report()

		w.Header().Set("Content-Type", "application/json")
		if report.Status == StatusDown {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		if err := json.NewEncoder(w).Encode(report); err != nil {
			c.log.LogError(err, "Failed to encode health report")
		}
	}
}

// Pinger is satisfied by *sql.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingCheck adapts a Pinger into a CheckFunc
func PingCheck(p Pinger) CheckFunc {
	return p.PingContext
}
