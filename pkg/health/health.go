// Package health serves liveness and readiness probes backed by periodic
// background checks.
//
// A check flips to unhealthy after FailureThreshold consecutive failures and
// back after SuccessThreshold consecutive successes. Every flip is logged.
package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
	"go.uber.org/zap"
)

// CheckFunc reports the health of one dependency.
type CheckFunc func(ctx context.Context) error

// Kind selects the probe a check contributes to.
type Kind int

const (
	Liveness Kind = iota
	Readiness
)

func (k Kind) String() string {
	if k == Readiness {
		return "readiness"
	}
	return "liveness"
}

// Check describes a registered check. Zero thresholds default to 3 failures
// and 1 success; a zero Timeout defaults to 2s.
type Check struct {
	Name             string
	Kind             Kind
	Timeout          time.Duration
	FailureThreshold int
	SuccessThreshold int
	Func             CheckFunc
}

type probe struct {
	Check

	healthy atomic.Bool
	lastErr atomic.Pointer[string]

	// Owned by the single goroutine running the probe.
	fails, oks int
}

func (p *probe) run(ctx context.Context, lg *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	err := p.Func(ctx)
	if err != nil {
		msg := err.Error()
		p.lastErr.Store(&msg)
		p.oks = 0
		p.fails++
		if p.fails >= p.FailureThreshold && p.healthy.Swap(false) {
			lg.Warn("Check became unhealthy",
				zap.String("check", p.Name),
				zap.Stringer("kind", p.Kind),
				zap.Error(err),
			)
		}
		return
	}

	p.lastErr.Store(nil)
	p.fails = 0
	p.oks++
	if p.oks >= p.SuccessThreshold && !p.healthy.Swap(true) {
		lg.Info("Check recovered",
			zap.String("check", p.Name),
			zap.Stringer("kind", p.Kind),
		)
	}
}

// Service owns the registered checks and the manual ready flag.
type Service struct {
	lg    *zap.Logger
	ready atomic.Bool

	mu     sync.RWMutex
	probes []*probe
	cancel context.CancelFunc
}

// New returns a Service that is not ready until SetReady(true).
func New(lg *zap.Logger) *Service {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Service{lg: lg}
}

// Register adds c. Checks start healthy.
func (s *Service) Register(c Check) {
	if c.Timeout <= 0 {
		c.Timeout = 2 * time.Second
	}
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 3
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = 1
	}
	p := &probe{Check: c}
	p.healthy.Store(true)

	s.mu.Lock()
	s.probes = append(s.probes, p)
	s.mu.Unlock()
}

// Start runs every check immediately and then once per interval until Stop
// or ctx cancellation.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	probes := append([]*probe(nil), s.probes...)
	s.mu.Unlock()

	for _, p := range probes {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				p.run(ctx, s.lg)
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
			}
		}()
	}
}

// Stop cancels the background checks. It is idempotent.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// SetReady sets the manual readiness flag.
func (s *Service) SetReady(ready bool) {
	if s.ready.Swap(ready) != ready {
		s.lg.Info("Readiness changed", zap.Bool("ready", ready))
	}
}

// Ready reports whether the service is marked ready and every readiness
// check passes.
func (s *Service) Ready() bool {
	return len(s.failures(Readiness)) == 0
}

// Report is the probe response body.
type Report struct {
	Status string
	Checks map[string]string
}

// Healthy reports whether the probe passed.
func (r Report) Healthy() bool {
	return len(r.Checks) == 0
}

func (r Report) encode() []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("status", func(e *jx.Encoder) { e.Str(r.Status) })
		if len(r.Checks) == 0 {
			return
		}
		names := make([]string, 0, len(r.Checks))
		for name := range r.Checks {
			names = append(names, name)
		}
		sort.Strings(names)
		e.Field("checks", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				for _, name := range names {
					e.Field(name, func(e *jx.Encoder) { e.Str(r.Checks[name]) })
				}
			})
		})
	})
	return e.Bytes()
}

// Report evaluates the probe of the given kind.
func (s *Service) Report(kind Kind) Report {
	failures := s.failures(kind)
	if len(failures) == 0 {
		return Report{Status: "ok"}
	}
	return Report{Status: "unhealthy", Checks: failures}
}

func (s *Service) failures(kind Kind) map[string]string {
	s.mu.RLock()
	probes := append([]*probe(nil), s.probes...)
	s.mu.RUnlock()

	failures := make(map[string]string)
	for _, p := range probes {
		if p.Kind != kind || p.healthy.Load() {
			continue
		}
		msg := "check is unhealthy"
		if last := p.lastErr.Load(); last != nil {
			msg = *last
		}
		failures[p.Name] = msg
	}
	if kind == Readiness && !s.ready.Load() {
		failures["_readiness"] = "service is not ready"
	}
	return failures
}

// Handler serves the probe of the given kind: 200 when healthy, 503 with the
// failing checks otherwise.
func (s *Service) Handler(kind Kind) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		rep := s.Report(kind)
		status := http.StatusOK
		if !rep.Healthy() {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(status)
		_, _ = w.Write(rep.encode())
	})
}
