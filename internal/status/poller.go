package status

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/matdash/matdash/internal/metrics"
)

// Snapshot is the latest known backend state, served to the page and
// pushed over the status socket.
type Snapshot struct {
	Indicator          Indicator `json:"indicator"`
	PendingSuggestions int       `json:"pending_suggestions"`
	CheckedAt          time.Time `json:"checked_at"`
}

// Poller probes the backend on two cadences: health on the short
// interval, pending suggestions on the long one. The latest snapshot is
// cached so page loads never wait on a probe.
type Poller struct {
	client  *Client
	metrics *metrics.Metrics
	logger  *zap.Logger

	statusInterval      time.Duration
	suggestionsInterval time.Duration

	mu          sync.Mutex
	current     Snapshot
	subscribers map[chan Snapshot]struct{}
}

// NewPoller creates a poller. metrics may be nil. The initial snapshot
// is offline until the first probe lands.
func NewPoller(client *Client, m *metrics.Metrics, statusInterval, suggestionsInterval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{
		client:              client,
		metrics:             m,
		logger:              logger,
		statusInterval:      statusInterval,
		suggestionsInterval: suggestionsInterval,
		current: Snapshot{
			Indicator: Describe(StateOffline, ""),
			CheckedAt: time.Now(),
		},
		subscribers: map[chan Snapshot]struct{}{},
	}
}

// Current returns the cached snapshot.
func (p *Poller) Current() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Subscribe registers for snapshot pushes. The returned cancel func
// must be called when the consumer goes away.
func (p *Poller) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 4)
	p.mu.Lock()
	p.subscribers[ch] = struct{}{}
	p.mu.Unlock()

	cancel := func() {
		p.mu.Lock()
		delete(p.subscribers, ch)
		p.mu.Unlock()
	}
	return ch, cancel
}

// Run probes until ctx is done. Both checks fire once immediately so
// the badge settles right after startup.
func (p *Poller) Run(ctx context.Context) {
	p.checkStatus(ctx)
	p.checkSuggestions(ctx)

	statusTicker := time.NewTicker(p.statusInterval)
	defer statusTicker.Stop()
	suggestionsTicker := time.NewTicker(p.suggestionsInterval)
	defer suggestionsTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-statusTicker.C:
			p.checkStatus(ctx)
		case <-suggestionsTicker.C:
			p.checkSuggestions(ctx)
		}
	}
}

func (p *Poller) checkStatus(ctx context.Context) {
	health, err := p.client.Fetch(ctx)
	state := Classify(health, err)
	if err != nil {
		p.logger.Debug("status probe failed", zap.Error(err))
	}

	details := ""
	if health != nil {
		details = health.Details
	}
	indicator := Describe(state, details)

	if p.metrics != nil {
		p.metrics.SetBackendStatus(gaugeValue(state))
	}

	p.mu.Lock()
	// Compare the whole indicator: a new tooltip at the same state is
	// still worth pushing to subscribers.
	changed := p.current.Indicator != indicator
	stateChanged := p.current.Indicator.State != state
	p.current.Indicator = indicator
	p.current.CheckedAt = time.Now()
	snapshot := p.current
	p.mu.Unlock()

	if stateChanged {
		p.logger.Info("backend status changed", zap.String("state", string(state)))
	}
	if changed {
		p.broadcast(snapshot)
	}
}

func (p *Poller) checkSuggestions(ctx context.Context) {
	count, err := p.client.PendingSuggestions(ctx)
	if err != nil {
		p.logger.Debug("suggestions probe failed", zap.Error(err))
		return
	}

	p.mu.Lock()
	changed := p.current.PendingSuggestions != count
	p.current.PendingSuggestions = count
	snapshot := p.current
	p.mu.Unlock()

	if changed {
		p.broadcast(snapshot)
	}
}

// broadcast pushes to every subscriber without blocking; a slow socket
// just misses an update and catches the next one.
func (p *Poller) broadcast(snapshot Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for ch := range p.subscribers {
		select {
		case ch <- snapshot:
		default:
		}
	}
}
