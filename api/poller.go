package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/emberco/recall/pkg/gateway"
)

// DefaultPollInterval is how often the poller checks the memory service.
const DefaultPollInterval = 10 * time.Second

// PollState is the last observed memory service health.
type PollState struct {
	Reachable     bool      `json:"reachable"`
	TotalMemories int       `json:"total_memories"`
	CheckedAt     time.Time `json:"checked_at"`
}

// Poller periodically checks the memory service status so /ping can report
// service health without a blocking upstream call per request.
type Poller struct {
	service  gateway.Service
	interval time.Duration
	logger   *zap.Logger

	mu    sync.RWMutex
	state PollState
}

// NewPoller creates a status poller. A non-positive interval falls back to
// the default.
func NewPoller(service gateway.Service, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		service:  service,
		interval: interval,
		logger:   logger,
	}
}

// Run polls until the context is cancelled. An immediate first check runs
// before the ticker starts.
func (p *Poller) Run(ctx context.Context) {
	p.Check(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Check(ctx)
		}
	}
}

// Check runs one status probe and records the outcome.
func (p *Poller) Check(ctx context.Context) {
	resp, err := p.service.Status(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.state.CheckedAt = time.Now().UTC()
	if err != nil {
		if p.state.Reachable {
			p.logger.Warn("memory service became unreachable", zap.Error(err))
		}
		p.state.Reachable = false
		p.state.TotalMemories = 0
		return
	}

	if !p.state.Reachable {
		p.logger.Info("memory service reachable",
			zap.Int("total_memories", resp.TotalMemories),
		)
	}
	p.state.Reachable = true
	p.state.TotalMemories = resp.TotalMemories
}

// State returns the last observed health.
func (p *Poller) State() PollState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}
